package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const appName = "eventhub"

// Client talks to the external hit-counter service. Callers treat every
// method as best-effort.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type hitBody struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

type viewStat struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

func (c *Client) RecordHit(ctx context.Context, uri, ip string) error {
	body, err := json.Marshal(hitBody{
		App:       appName,
		URI:       uri,
		IP:        ip,
		Timestamp: c.now().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("stats hit: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Views returns the unique-visitor count for one uri; zero when the stats
// service has never seen it.
func (c *Client) Views(ctx context.Context, uri string) (int64, error) {
	q := url.Values{}
	q.Set("uris", uri)
	q.Set("unique", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("stats query: unexpected status %d", resp.StatusCode)
	}

	var out []viewStat
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	for _, s := range out {
		if s.URI == uri {
			return s.Hits, nil
		}
	}
	return 0, nil
}
