package validate

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/avoronov/eventhub/internal/domain"
)

var validate = validator.New()

// DecodeJSON decodes a strict JSON body and runs struct tag validation.
// Both failure modes come back as a validation error with field meta.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.ErrValidationMeta("invalid json body", map[string]string{
			"body": "malformed JSON or unknown fields",
		})
	}
	return Struct(dst)
}

func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		meta := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			meta[fe.Field()] = "failed on " + fe.Tag()
		}
		return domain.ErrValidationMeta("invalid request body", meta)
	}
	return domain.ErrValidation("invalid request body")
}

func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
