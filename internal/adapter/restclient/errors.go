package restclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rl1809/storefront/internal/core/domain"
)

// APIError is a non-2xx reply. It unwraps to the matching domain error kind.
type APIError struct {
	Status int
	Detail string
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{Status: status, Detail: parseDetail(body)}
}

// parseDetail reads {"detail": ...}. The detail is a string for most errors
// and a list of objects for request validation errors.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}
	return string(envelope.Detail)
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Detail)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusBadRequest, e.Status == http.StatusUnprocessableEntity:
		return domain.ErrValidation
	case e.Status == http.StatusUnauthorized, e.Status == http.StatusForbidden:
		return domain.ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return domain.ErrNotFound
	case e.Status == http.StatusConflict:
		return domain.ErrConflict
	case e.Status == http.StatusTooManyRequests, e.Status >= 500:
		return domain.ErrUnavailable
	}
	return nil
}

// isDuplicate matches the replies the API uses for an existing sales record.
func (e *APIError) isDuplicate() bool {
	if e.Status == http.StatusConflict {
		return true
	}
	return e.Status == http.StatusBadRequest && strings.Contains(strings.ToLower(e.Detail), "already exists")
}
