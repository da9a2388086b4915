package agent

import (
	"errors"
	"net/http"

	"github.com/keshon/server-ghost/pkg/retrylimit"
)

var (
	// ErrAuth means the provider rejected our credentials. Retrying is
	// pointless; the planner backs off for a while instead.
	ErrAuth = errors.New("provider authentication failed")

	// ErrEmptyResponse means the provider returned nothing usable after
	// all retry attempts.
	ErrEmptyResponse = errors.New("provider returned empty response")

	// ErrMalformed means model output could not be decoded even after the
	// repair sequence in plan.go.
	ErrMalformed = errors.New("malformed plan output")
)

// classifyProviderError maps transport errors to our sentinels where the
// status code makes the class unambiguous.
func classifyProviderError(err error) error {
	var he retrylimit.HTTPError
	if errors.As(err, &he) {
		if code := he.StatusCode(); code == http.StatusUnauthorized || code == http.StatusForbidden {
			return ErrAuth
		}
	}
	return err
}
