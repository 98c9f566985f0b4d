package model

// Credentials is the per-request identity forwarded upstream. Never persisted.
type Credentials struct {
	TenantID    string
	AccessToken string
	RequestID   string
}

// WithTenant returns a copy carrying the given tenant id.
func (c Credentials) WithTenant(tenantID string) Credentials {
	c.TenantID = tenantID
	return c
}
