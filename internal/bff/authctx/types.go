package authctx

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"schoolbff/internal/bff/model"
)

// Carrier is where a credential value travels on the inbound request.
type Carrier string

const (
	CarrierHeader Carrier = "header"
	CarrierCookie Carrier = "cookie"
)

// Source is one named place a credential value can be read from,
// written as "<carrier>.<key>", e.g. "cookie.tn_tenantId".
type Source struct {
	Name    string  `json:"name"`
	Spec    string  `json:"source"`
	Carrier Carrier `json:"-"`
	Key     string  `json:"-"`
}

// CarrierSet lists, in priority order, the sources consulted for one AuthContext.
type CarrierSet struct {
	Context       model.AuthContext `json:"context"`
	TenantSources []Source          `json:"tenant_sources"`
	TokenSources  []Source          `json:"token_sources"`
}

type carrierFile struct {
	Contexts []*CarrierSet `json:"contexts"`
}

// parse splits Spec into Carrier and Key.
func (s *Source) parse() error {
	parts := strings.SplitN(strings.TrimSpace(s.Spec), ".", 2)
	if len(parts) != 2 || parts[1] == "" {
		return fmt.Errorf("source %q: expected <carrier>.<key>, got %q", s.Name, s.Spec)
	}
	switch Carrier(parts[0]) {
	case CarrierHeader, CarrierCookie:
	default:
		return fmt.Errorf("source %q: unknown carrier %q", s.Name, parts[0])
	}
	s.Carrier = Carrier(parts[0])
	s.Key = parts[1]
	return nil
}

// Read returns the trimmed value carried by r, or "" when absent.
func (s Source) Read(r *http.Request) string {
	switch s.Carrier {
	case CarrierHeader:
		return strings.TrimSpace(r.Header.Get(s.Key))
	case CarrierCookie:
		ck, err := r.Cookie(s.Key)
		if err != nil {
			return ""
		}
		v := ck.Value
		if strings.Contains(v, "%") {
			if unescaped, err := url.QueryUnescape(v); err == nil {
				v = unescaped
			}
		}
		return strings.TrimSpace(v)
	}
	return ""
}

// first walks sources in order and returns the first non-empty value.
func first(r *http.Request, sources []Source) (value, name string) {
	for _, s := range sources {
		if v := s.Read(r); v != "" {
			return v, s.Name
		}
	}
	return "", ""
}
