package model

import (
	"errors"
	"fmt"
)

var (
	ErrMissingTenant       = errors.New("missing tenant")
	ErrMissingCredentials  = errors.New("missing credentials")
	ErrTenantUnresolved    = errors.New("tenant identifier could not be resolved")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrTenantNotNormalized = errors.New("tenant id is not a normalized uuid")
)

// UpstreamError is a non-2xx answer from the upstream service. Body is kept
// verbatim so callers see the upstream's own validation detail.
type UpstreamError struct {
	Status      int
	ContentType string
	Body        []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded with status %d", e.Status)
}
