package domain

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID    int64
	Email string
	Roles []string
}

func PrincipalOf(u *User) *Principal {
	return &Principal{ID: u.ID, Email: u.Email, Roles: u.RoleNames()}
}
