package authctx

import (
	"fmt"
	"net/http"
	"strings"

	"schoolbff/internal/bff/model"
)

// Resolution is the outcome of resolving one inbound request.
type Resolution struct {
	Context     model.AuthContext
	Credentials model.Credentials
	// Names of the sources that produced the values, for logging.
	TenantSource string
	TokenSource  string
}

// Resolver selects the AuthContext of a request and reads its credentials
// from the carriers registered for that context only.
type Resolver struct {
	carriers map[model.AuthContext]*CarrierSet
}

// NewResolver builds a Resolver over the embedded carrier table.
func NewResolver() (*Resolver, error) {
	sets, err := NewLoader().LoadCarrierSets()
	if err != nil {
		return nil, fmt.Errorf("failed to load carrier table: %w", err)
	}
	return NewResolverWithCarriers(sets), nil
}

func NewResolverWithCarriers(sets map[model.AuthContext]*CarrierSet) *Resolver {
	return &Resolver{carriers: sets}
}

// Resolve returns model.ErrMissingTenant when no tenant id is found and
// model.ErrMissingCredentials when the tenant is known but no token is.
func (r *Resolver) Resolve(req *http.Request) (*Resolution, error) {
	ac := model.ParseAuthContext(req.Header.Get(model.HeaderAuthContext))
	set, ok := r.carriers[ac]
	if !ok {
		return nil, fmt.Errorf("no carrier set for %s", ac)
	}

	res := &Resolution{Context: ac}

	tenantID, tenantSource := first(req, set.TenantSources)
	if tenantID == "" {
		return nil, model.ErrMissingTenant
	}
	token, tokenSource := first(req, set.TokenSources)
	token = stripBearer(token)
	if token == "" {
		return nil, model.ErrMissingCredentials
	}

	res.Credentials = model.Credentials{TenantID: tenantID, AccessToken: token}
	res.TenantSource = tenantSource
	res.TokenSource = tokenSource
	return res, nil
}

func stripBearer(token string) string {
	const prefix = "bearer "
	if len(token) >= len(prefix) && strings.EqualFold(token[:len(prefix)], prefix) {
		return strings.TrimSpace(token[len(prefix):])
	}
	return token
}
