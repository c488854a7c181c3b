package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/talentgate/account-service/internal/core/domain"
	"github.com/talentgate/account-service/internal/core/ports"
)

// Access is the requirement a route places on its caller.
type Access struct {
	authenticated bool
	role          domain.Role
}

var (
	// Public routes need no token.
	Public = Access{}
	// Authenticated routes need any valid token.
	Authenticated = Access{authenticated: true}
)

// Role requires a valid token whose role equals r.
func Role(r domain.Role) Access {
	return Access{authenticated: true, role: r}
}

func (a Access) String() string {
	switch {
	case !a.authenticated:
		return "public"
	case a.role == "":
		return "authenticated"
	default:
		return "role:" + string(a.role)
	}
}

// Chain returns the middleware enforcing a, outermost first.
func (a Access) Chain(verifier ports.TokenVerifier) []echo.MiddlewareFunc {
	if !a.authenticated {
		return nil
	}
	chain := []echo.MiddlewareFunc{Authenticate(verifier)}
	if a.role != "" {
		chain = append(chain, Authorize(a.role))
	}
	return chain
}
