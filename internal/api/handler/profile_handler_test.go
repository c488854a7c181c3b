package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/talentgate/account-service/internal/api/middleware"
	"github.com/talentgate/account-service/internal/core/domain"
	"github.com/talentgate/account-service/internal/core/ports"
)

type stubProfileService struct {
	getFn     func(ctx context.Context, who domain.Identity) (*ports.Profile, error)
	submitFn  func(ctx context.Context, who domain.Identity, changes domain.ProfileChanges, picture *ports.PictureUpload) (*domain.ProfileUpdateRequest, error)
	deleteFn  func(ctx context.Context, who domain.Identity) (*domain.PublicUser, error)
	uploadFn  func(ctx context.Context, who domain.Identity, upload ports.PictureUpload) (string, error)
	listFn    func(ctx context.Context, who domain.Identity) ([]*domain.ProfileUpdateRequest, error)
	approveFn func(ctx context.Context, who domain.Identity, id string) (*domain.ProfileUpdateRequest, error)
	declineFn func(ctx context.Context, who domain.Identity, id string) (*domain.ProfileUpdateRequest, error)
}

func (s *stubProfileService) GetProfile(ctx context.Context, who domain.Identity) (*ports.Profile, error) {
	return s.getFn(ctx, who)
}

func (s *stubProfileService) SubmitUpdate(ctx context.Context, who domain.Identity, changes domain.ProfileChanges, picture *ports.PictureUpload) (*domain.ProfileUpdateRequest, error) {
	return s.submitFn(ctx, who, changes, picture)
}

func (s *stubProfileService) DeletePicture(ctx context.Context, who domain.Identity) (*domain.PublicUser, error) {
	return s.deleteFn(ctx, who)
}

func (s *stubProfileService) UploadPicture(ctx context.Context, who domain.Identity, upload ports.PictureUpload) (string, error) {
	return s.uploadFn(ctx, who, upload)
}

func (s *stubProfileService) ListPending(ctx context.Context, who domain.Identity) ([]*domain.ProfileUpdateRequest, error) {
	return s.listFn(ctx, who)
}

func (s *stubProfileService) Approve(ctx context.Context, who domain.Identity, id string) (*domain.ProfileUpdateRequest, error) {
	return s.approveFn(ctx, who, id)
}

func (s *stubProfileService) Decline(ctx context.Context, who domain.Identity, id string) (*domain.ProfileUpdateRequest, error) {
	return s.declineFn(ctx, who, id)
}

var alice = domain.Identity{UserID: "u1", Role: domain.RoleStandard, Name: "Alice"}

func withIdentity(c echo.Context, who domain.Identity) echo.Context {
	middleware.SetIdentity(c, who)
	return c
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestProfileHandler_GetProfile(t *testing.T) {
	e := newEcho()
	handler := NewProfileHandler(&stubProfileService{
		getFn: func(ctx context.Context, who domain.Identity) (*ports.Profile, error) {
			if who.UserID != "u1" {
				t.Fatalf("unexpected identity: %+v", who)
			}
			return &ports.Profile{
				PublicUser:      domain.PublicUser{ID: "u1", Name: "Alice"},
				PendingApproval: true,
				PendingChanges:  domain.ProfileChanges{"name": "Alicia"},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()
	c := withIdentity(e.NewContext(req, rec), alice)

	if err := handler.GetProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "u1" || resp["pendingApproval"] != true {
		t.Fatalf("unexpected profile: %+v", resp)
	}
}

func TestProfileHandler_RequiresIdentity(t *testing.T) {
	e := newEcho()
	handler := NewProfileHandler(&stubProfileService{})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := handler.GetProfile(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestProfileHandler_SubmitUpdate_JSON(t *testing.T) {
	e := newEcho()
	handler := NewProfileHandler(&stubProfileService{
		submitFn: func(ctx context.Context, who domain.Identity, changes domain.ProfileChanges, picture *ports.PictureUpload) (*domain.ProfileUpdateRequest, error) {
			if picture != nil {
				t.Fatalf("unexpected picture")
			}
			if len(changes) != 2 || changes["name"] != "Alicia" || changes["state"] != "Oyo" {
				t.Fatalf("unexpected changes: %v", changes)
			}
			return &domain.ProfileUpdateRequest{ID: "r1", UserID: who.UserID, Changes: changes, Status: domain.RequestPending}, nil
		},
	})

	c, rec := jsonContext(e, http.MethodPut, "/profile", `{"name":"Alicia","state":"Oyo"}`)
	withIdentity(c, alice)

	if err := handler.SubmitUpdate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
}

func TestProfileHandler_SubmitUpdate_NonStringValue(t *testing.T) {
	e := newEcho()
	handler := NewProfileHandler(&stubProfileService{
		submitFn: func(ctx context.Context, who domain.Identity, changes domain.ProfileChanges, picture *ports.PictureUpload) (*domain.ProfileUpdateRequest, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	})

	c, _ := jsonContext(e, http.MethodPut, "/profile", `{"name":42}`)
	withIdentity(c, alice)

	if err := handler.SubmitUpdate(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProfileHandler_SubmitUpdate_MultipartWithPicture(t *testing.T) {
	e := newEcho()
	handler := NewProfileHandler(&stubProfileService{
		submitFn: func(ctx context.Context, who domain.Identity, changes domain.ProfileChanges, picture *ports.PictureUpload) (*domain.ProfileUpdateRequest, error) {
			if changes["name"] != "Alicia" {
				t.Fatalf("unexpected changes: %v", changes)
			}
			if picture == nil || picture.Filename != "me.png" || picture.ContentType != "image/png" {
				t.Fatalf("unexpected picture: %+v", picture)
			}
			data, err := io.ReadAll(picture.Body)
			if err != nil || string(data) != "png-bytes" {
				t.Fatalf("unexpected picture body %q: %v", data, err)
			}
			return &domain.ProfileUpdateRequest{ID: "r1", Status: domain.RequestPending}, nil
		},
	})

	body, contentType := multipartBody(t, map[string]string{"name": "Alicia"}, "profilePic", "me.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPut, "/profile", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := withIdentity(e.NewContext(req, rec), alice)

	if err := handler.SubmitUpdate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
}

func TestProfileHandler_SubmitUpdate_PropagatesConflict(t *testing.T) {
	e := newEcho()
	handler := NewProfileHandler(&stubProfileService{
		submitFn: func(ctx context.Context, who domain.Identity, changes domain.ProfileChanges, picture *ports.PictureUpload) (*domain.ProfileUpdateRequest, error) {
			return nil, domain.ErrPendingRequestExists
		},
	})

	c, _ := jsonContext(e, http.MethodPut, "/profile", `{"name":"Alicia"}`)
	withIdentity(c, alice)

	if err := handler.SubmitUpdate(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestProfileHandler_DeletePicture(t *testing.T) {
	e := newEcho()
	handler := NewProfileHandler(&stubProfileService{
		deleteFn: func(ctx context.Context, who domain.Identity) (*domain.PublicUser, error) {
			return &domain.PublicUser{ID: who.UserID}, nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/profile/picture", nil)
	rec := httptest.NewRecorder()
	c := withIdentity(e.NewContext(req, rec), alice)

	if err := handler.DeletePicture(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProfileHandler_UploadPicture(t *testing.T) {
	e := newEcho()
	handler := NewProfileHandler(&stubProfileService{
		uploadFn: func(ctx context.Context, who domain.Identity, upload ports.PictureUpload) (string, error) {
			if upload.Size != int64(len("jpeg-bytes")) || upload.ContentType != "image/jpeg" {
				t.Fatalf("unexpected upload: %+v", upload)
			}
			return "https://cdn.test/profile_pics/x.jpg", nil
		},
	})

	body, contentType := multipartBody(t, nil, "file", "me.jpg", "image/jpeg", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/upload/profile-pic", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := withIdentity(e.NewContext(req, rec), alice)

	if err := handler.UploadPicture(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp uploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.URL != "https://cdn.test/profile_pics/x.jpg" {
		t.Fatalf("unexpected url %q", resp.URL)
	}
}

func TestProfileHandler_UploadPicture_NoFile(t *testing.T) {
	e := newEcho()
	handler := NewProfileHandler(&stubProfileService{})

	body, contentType := multipartBody(t, map[string]string{"other": "x"}, "", "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/upload/profile-pic", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	c := withIdentity(e.NewContext(req, httptest.NewRecorder()), alice)

	if err := handler.UploadPicture(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
