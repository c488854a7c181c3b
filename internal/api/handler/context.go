package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/talentgate/account-service/internal/api/middleware"
	"github.com/talentgate/account-service/internal/core/domain"
)

// identity returns the caller resolved by the Authenticate middleware. A route
// registered without it fails closed.
func identity(c echo.Context) (domain.Identity, error) {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, &domain.Error{Kind: domain.ErrUnauthenticated, Msg: "unauthenticated"}
	}
	return who, nil
}
