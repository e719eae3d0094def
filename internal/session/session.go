// Package session models the authenticated identity as an explicit value
// passed into every operation that needs it, instead of ambient global
// state.
package session

import "context"

// Session identifies the acting user for one operation. The zero value is
// an anonymous guest.
type Session struct {
	UID         string
	DisplayName string
	Anonymous   bool
}

// Guest returns the anonymous session used when no user is signed in.
func Guest() Session {
	return Session{UID: "guest", DisplayName: "Guest", Anonymous: true}
}

// AuthorName is the display name stamped onto authored content. Anonymous
// sessions always author as "Guest"; signed-in users fall back to their
// profile name when the auth record carries no display name.
func (s Session) AuthorName(profileName string) string {
	if s.Anonymous {
		return "Guest"
	}
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return profileName
}

// Trusted reports whether content authored under this session is marked
// trusted. Anonymous sessions are never trusted.
func (s Session) Trusted() bool {
	return !s.Anonymous && s.UID != ""
}

// AuthService is the hosted authentication backend, consumed at its
// interface boundary only. All operations are asynchronous at the transport
// level and surface success or failure through the returned error.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignInAnonymously(ctx context.Context) (Session, error)
	SignUp(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context) error
	CurrentUser(ctx context.Context) (Session, bool)
}
