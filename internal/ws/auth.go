package ws

import (
	"context"
	"net/http"
	"strings"

	"realty-chat-service/internal/auth"
)

// IdentityResolver turns a raw bearer token into an identity. Implemented
// by auth.Validator.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) auth.Identity
}

// Authenticator resolves the identity of an incoming websocket connection
// before any session logic runs. A missing or invalid token binds the
// anonymous identity instead of rejecting the handshake; whether an
// anonymous connection is useful is each session handler's decision, which
// lets the server report errors over the established socket instead of
// failing the handshake silently.
type Authenticator struct {
	resolver IdentityResolver
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(resolver IdentityResolver) *Authenticator {
	return &Authenticator{resolver: resolver}
}

// Identify extracts the token from the upgrade request and resolves it.
func (a *Authenticator) Identify(r *http.Request) auth.Identity {
	return a.resolver.Resolve(r.Context(), TokenFromRequest(r))
}

// TokenFromRequest pulls the bearer token from the ?token= query parameter.
// Some proxies and clients append a path separator to the connection URL,
// corrupting the token value, so a single trailing slash is stripped before
// validation.
func TokenFromRequest(r *http.Request) string {
	token := r.URL.Query().Get("token")
	return strings.TrimSuffix(token, "/")
}
