package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DashboardHandler serves the role landing pages.
type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Dashboard greets any authenticated caller.
//
// @Summary      User dashboard
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorBody
// @Router       /dashboard [get]
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Welcome %s, Role: %s", who.Name, who.Role),
	})
}

// Admin is reachable by admins only.
//
// @Summary      Admin dashboard
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorBody
// @Router       /admin [get]
func (h *DashboardHandler) Admin(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "Admin dashboard"})
}

// Employer is reachable by employers only.
//
// @Summary      Employer dashboard
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorBody
// @Router       /employer [get]
func (h *DashboardHandler) Employer(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "Employer dashboard"})
}
