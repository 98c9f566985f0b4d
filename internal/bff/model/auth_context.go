package model

import "strings"

// AuthContext identifies which authentication scheme produced a request.
type AuthContext string

const (
	AuthContextDefault    AuthContext = "DEFAULT"
	AuthContextTenant     AuthContext = "TENANT"
	AuthContextSuperAdmin AuthContext = "SUPER_ADMIN"
)

// HeaderAuthContext is the discriminator header selecting the AuthContext.
const HeaderAuthContext = "x-auth-context"

// ParseAuthContext maps a discriminator value onto an AuthContext.
// Absent or unknown values fall back to DEFAULT.
func ParseAuthContext(raw string) AuthContext {
	switch AuthContext(strings.ToUpper(strings.TrimSpace(raw))) {
	case AuthContextSuperAdmin:
		return AuthContextSuperAdmin
	case AuthContextTenant:
		return AuthContextTenant
	default:
		return AuthContextDefault
	}
}

func (a AuthContext) String() string { return string(a) }
