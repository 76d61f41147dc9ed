package auth

// Identity is the resolved caller of a connection or request. It is either
// an authenticated user or the anonymous marker; every authorization gate
// checks the tag explicitly.
type Identity struct {
	UserID        int
	FullName      string
	authenticated bool
}

// Authenticated builds an identity for a known user.
func Authenticated(userID int, fullName string) Identity {
	return Identity{UserID: userID, FullName: fullName, authenticated: true}
}

// Anonymous is the identity bound when no valid token was presented.
func Anonymous() Identity {
	return Identity{}
}

// IsAuthenticated reports whether the identity belongs to a real user.
func (i Identity) IsAuthenticated() bool {
	return i.authenticated
}
