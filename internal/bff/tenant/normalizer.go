package tenant

import (
	"context"
	"log/slog"
	"strings"

	"schoolbff/internal/bff/model"
	"schoolbff/internal/bff/util"
)

// DomainLookup resolves a domain-like tenant slug to the owning tenant's id.
// An empty id with a nil error means the upstream knows no such tenant.
type DomainLookup interface {
	LookupTenantByDomain(ctx context.Context, creds model.Credentials, domain string) (string, error)
}

// Normalizer turns whatever tenant identifier the caller sent into the
// canonical tenant UUID. Nothing is cached between requests.
type Normalizer struct {
	lookup DomainLookup
	logger *slog.Logger
}

func NewNormalizer(lookup DomainLookup) *Normalizer {
	return &Normalizer{lookup: lookup, logger: util.GetLogger()}
}

// Normalize returns raw unchanged when it already is a canonical UUID and
// otherwise resolves it as a domain slug. Every failure to resolve, including
// upstream errors, is reported as model.ErrTenantUnresolved.
func (n *Normalizer) Normalize(ctx context.Context, raw string, creds model.Credentials) (string, error) {
	raw = strings.TrimSpace(raw)
	if model.IsCanonicalUUID(raw) {
		return raw, nil
	}
	if raw == "" {
		return "", model.ErrMissingTenant
	}

	id, err := n.lookup.LookupTenantByDomain(ctx, creds.WithTenant(raw), raw)
	if err != nil {
		n.logger.Warn("tenant lookup failed", "domain", raw, "error", err, "request_id", creds.RequestID)
		return "", model.ErrTenantUnresolved
	}
	if !model.IsCanonicalUUID(id) {
		n.logger.Info("tenant domain did not resolve", "domain", raw, "request_id", creds.RequestID)
		return "", model.ErrTenantUnresolved
	}
	return id, nil
}

// NormalizeCredentials returns creds with the tenant replaced by its UUID.
func (n *Normalizer) NormalizeCredentials(ctx context.Context, creds model.Credentials) (model.Credentials, error) {
	id, err := n.Normalize(ctx, creds.TenantID, creds)
	if err != nil {
		return creds, err
	}
	return creds.WithTenant(id), nil
}
