package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/talentgate/account-service/internal/api/metrics"
	"github.com/talentgate/account-service/internal/core/domain"
	"github.com/talentgate/account-service/internal/core/ports"
)

// errLoginFailed is rendered for any login failure that is not the caller's fault.
var errLoginFailed = echo.NewHTTPError(http.StatusInternalServerError, "Login failed")

type AuthHandler struct {
	authService ports.AuthService
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// Register creates a new, inactive user account. Admin accounts cannot be self-registered.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorBody
// @Failure      403   {object}  errorBody
// @Failure      409   {object}  errorBody
// @Failure      500   {object}  errorBody
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	// Admin self-registration is refused whatever else the payload holds.
	if domain.Role(strings.TrimSpace(req.Role)) == domain.RoleAdmin {
		metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		return domain.ErrAdminSelfRegistration
	}
	req.Role = strings.TrimSpace(req.Role)
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		State:    req.State,
	})
	if err != nil {
		result := "rejected"
		if !isClientError(err) {
			result = "error"
		}
		metrics.RegistrationsTotal.WithLabelValues(result).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		User:    *user,
	})
}

// Login authenticates a user and returns a session token valid for one hour.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Failure      429   {object}  errorBody
// @Failure      500   {object}  errorBody
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	switch {
	case err == nil:
		metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
		return c.JSON(http.StatusOK, loginResponse{Token: res.Token, User: res.User})
	case errors.Is(err, domain.ErrUnauthenticated):
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return domain.ErrInvalidCredentials
	case errors.Is(err, domain.ErrRateLimited):
		metrics.LoginAttemptsTotal.WithLabelValues("throttled").Inc()
		return err
	default:
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		h.log.Error().Err(err).Msg("login failed")
		return errLoginFailed
	}
}

// isClientError reports whether err is attributable to the request rather than the server.
func isClientError(err error) bool {
	for _, kind := range []error{
		domain.ErrValidation,
		domain.ErrUnauthenticated,
		domain.ErrForbidden,
		domain.ErrConflict,
		domain.ErrNotFound,
		domain.ErrRateLimited,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
