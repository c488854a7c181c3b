package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/talentgate/account-service/internal/core/domain"
)

func runAuthorize(t *testing.T, required domain.Role, identity *domain.Identity) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if identity != nil {
		SetIdentity(c, *identity)
	}

	called := false
	handler := Authorize(required)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestAuthorize_Allows(t *testing.T) {
	rec, called := runAuthorize(t, domain.RoleAdmin, &domain.Identity{UserID: "a1", Role: domain.RoleAdmin})
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthorize_Forbids(t *testing.T) {
	rec, called := runAuthorize(t, domain.RoleAdmin, &domain.Identity{UserID: "u1", Role: domain.RoleStandard})
	if called {
		t.Fatalf("should not reach next handler")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthorize_NoHierarchy(t *testing.T) {
	rec, called := runAuthorize(t, domain.RoleEmployer, &domain.Identity{UserID: "a1", Role: domain.RoleAdmin})
	if called {
		t.Fatalf("admin must not pass an employer-only check")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthorize_WithoutIdentity(t *testing.T) {
	rec, called := runAuthorize(t, domain.RoleAdmin, nil)
	if called {
		t.Fatalf("should not reach next handler")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAccessChain(t *testing.T) {
	verifier := stubVerifier{}
	if n := len(Public.Chain(verifier)); n != 0 {
		t.Fatalf("public: expected no middleware, got %d", n)
	}
	if n := len(Authenticated.Chain(verifier)); n != 1 {
		t.Fatalf("authenticated: expected 1 middleware, got %d", n)
	}
	if n := len(Role(domain.RoleAdmin).Chain(verifier)); n != 2 {
		t.Fatalf("role: expected 2 middleware, got %d", n)
	}
	if got := Role(domain.RoleEmployer).String(); got != "role:employer" {
		t.Fatalf("unexpected access string %q", got)
	}
}

type stubVerifier struct{}

func (stubVerifier) Verify(string) (domain.Identity, error) {
	return domain.Identity{}, domain.ErrInvalidToken
}
