package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const RoleAdmin = "admin"

type Service struct {
	repo       EventRepo
	categories CategoryReader
	users      UserReader
	stats      StatsClient
	cache      Cache
	pub        Publisher
	clock      Clock

	ttlDetails time.Duration
}

func New(
	repo EventRepo,
	categories CategoryReader,
	users UserReader,
	stats StatsClient,
	cache Cache,
	pub Publisher,
	clock Clock,
	ttlDetails time.Duration,
) *Service {
	if ttlDetails == 0 {
		ttlDetails = 5 * time.Minute
	}
	return &Service{
		repo:       repo,
		categories: categories,
		users:      users,
		stats:      stats,
		cache:      cache,
		pub:        pub,
		clock:      clock,
		ttlDetails: ttlDetails,
	}
}

func isAdmin(role string) bool { return role == RoleAdmin }

func cacheKeyEventDetails(id uuid.UUID) string {
	return fmt.Sprintf("event:details:%s", id)
}
