package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talentgate/account-service/internal/core/domain"
)

// Authorize admits only identities whose role equals role exactly. Roles carry
// no hierarchy: an admin is refused on an employer route.
func Authorize(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return unauthenticated()
			}
			if identity.Role != role {
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error())
			}
			return next(c)
		}
	}
}
