package domain

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// Session is the explicit per-request shopper context. BearerToken is
// forwarded to the owning service unchanged.
//
// Verified is set only when the token signature was checked locally. The ID
// and role of an unverified session carry no weight here: ID is derived
// from the token itself and local caches are not consulted for it.
type Session struct {
	ID          string
	UserID      int64
	Role        string
	BearerToken string
	Verified    bool
}

// IsOperator reports whether the session may use the management surface.
func (s Session) IsOperator() bool {
	return s.Verified && (s.Role == RoleAdmin || s.Role == RoleEmployee)
}

// Cacheable reports whether state keyed by the session ID may be served
// from a local cache.
func (s Session) Cacheable() bool {
	return s.Verified && s.ID != ""
}
