package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talentgate/account-service/internal/api/metrics"
	"github.com/talentgate/account-service/internal/core/domain"
	"github.com/talentgate/account-service/internal/core/ports"
)

// ReviewHandler serves the admin side of the profile approval workflow.
type ReviewHandler struct {
	service ports.ProfileService
}

func NewReviewHandler(service ports.ProfileService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// ListPending returns every pending profile update request, oldest first.
//
// @Summary      List pending profile update requests
// @Tags         review
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listRequestsResponse
// @Failure      401  {object}  errorBody
// @Failure      403  {object}  errorBody
// @Router       /profile-requests [get]
func (h *ReviewHandler) ListPending(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}

	reqs, err := h.service.ListPending(c.Request().Context(), who)
	if err != nil {
		return err
	}
	if reqs == nil {
		reqs = []*domain.ProfileUpdateRequest{}
	}
	return c.JSON(http.StatusOK, listRequestsResponse{Requests: reqs})
}

// Approve applies a pending request's changes to its user.
//
// @Summary      Approve a profile update request
// @Tags         review
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  resolveResponse
// @Failure      401  {object}  errorBody
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /profile-requests/{id}/approve [post]
func (h *ReviewHandler) Approve(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}

	req, err := h.service.Approve(c.Request().Context(), who, c.Param("id"))
	if err != nil {
		return err
	}

	metrics.ProfileRequestsResolvedTotal.WithLabelValues(string(domain.RequestApproved)).Inc()
	return c.JSON(http.StatusOK, resolveResponse{Message: "Profile update approved.", Request: req})
}

// Decline closes a pending request without touching its user.
//
// @Summary      Decline a profile update request
// @Tags         review
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  resolveResponse
// @Failure      401  {object}  errorBody
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /profile-requests/{id}/decline [post]
func (h *ReviewHandler) Decline(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}

	req, err := h.service.Decline(c.Request().Context(), who, c.Param("id"))
	if err != nil {
		return err
	}

	metrics.ProfileRequestsResolvedTotal.WithLabelValues(string(domain.RequestDeclined)).Inc()
	return c.JSON(http.StatusOK, resolveResponse{Message: "Profile update declined.", Request: req})
}
