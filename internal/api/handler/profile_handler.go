package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/talentgate/account-service/internal/api/metrics"
	"github.com/talentgate/account-service/internal/core/domain"
	"github.com/talentgate/account-service/internal/core/ports"
)

const (
	pictureFormField = "profilePic"
	uploadFormField  = "file"
)

// ProfileHandler serves the caller's own profile and the submission side of
// the profile approval workflow.
type ProfileHandler struct {
	service ports.ProfileService
}

func NewProfileHandler(service ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetProfile returns the caller's profile and whether an update awaits approval.
//
// @Summary      Get own profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /profile [get]
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}

	profile, err := h.service.GetProfile(c.Request().Context(), who)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// SubmitUpdate files a profile update for admin approval. The body is either a
// JSON object of field → value, or a multipart form whose text fields are the
// changes and whose optional profilePic file becomes the requested picture.
//
// @Summary      Submit a profile update for approval
// @Tags         profile
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        body        body      map[string]string  false  "Requested changes (name, state, profilePicture)"
// @Param        profilePic  formData  file               false  "New profile picture"
// @Success      202  {object}  submitUpdateResponse
// @Failure      400  {object}  errorBody
// @Failure      401  {object}  errorBody
// @Failure      403  {object}  errorBody
// @Failure      409  {object}  errorBody
// @Router       /profile [put]
func (h *ProfileHandler) SubmitUpdate(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}

	var (
		changes domain.ProfileChanges
		picture *ports.PictureUpload
	)
	if isMultipart(c) {
		var file multipart.File
		changes, picture, file, err = multipartChanges(c)
		if file != nil {
			defer file.Close()
		}
	} else {
		changes, err = jsonChanges(c)
	}
	if err != nil {
		return err
	}

	req, err := h.service.SubmitUpdate(c.Request().Context(), who, changes, picture)
	if err != nil {
		return err
	}

	metrics.ProfileRequestsSubmittedTotal.Inc()
	if picture != nil {
		metrics.PictureUploadsTotal.Inc()
	}
	return c.JSON(http.StatusAccepted, submitUpdateResponse{
		Message: "Profile update submitted for admin approval.",
		Request: req,
	})
}

// DeletePicture removes the caller's profile picture immediately.
//
// @Summary      Delete own profile picture
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  deletePictureResponse
// @Failure      401  {object}  errorBody
// @Failure      403  {object}  errorBody
// @Router       /profile/picture [delete]
func (h *ProfileHandler) DeletePicture(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}

	user, err := h.service.DeletePicture(c.Request().Context(), who)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deletePictureResponse{Message: "Profile picture deleted.", User: user})
}

// UploadPicture stores an image and returns its reference URL without
// touching the caller's profile.
//
// @Summary      Upload a profile picture
// @Tags         profile
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "JPEG or PNG image"
// @Success      201   {object}  uploadResponse
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Router       /upload/profile-pic [post]
func (h *ProfileHandler) UploadPicture(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile(uploadFormField)
	if err != nil {
		return domain.NewValidationError("No file uploaded")
	}
	upload, file, err := openUpload(fh)
	if err != nil {
		return err
	}
	defer file.Close()

	url, err := h.service.UploadPicture(c.Request().Context(), who, upload)
	if err != nil {
		return err
	}

	metrics.PictureUploadsTotal.Inc()
	return c.JSON(http.StatusCreated, uploadResponse{URL: url})
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

func jsonChanges(c echo.Context) (domain.ProfileChanges, error) {
	var body map[string]any
	if err := c.Bind(&body); err != nil {
		return nil, domain.NewValidationError("invalid payload")
	}

	changes := make(domain.ProfileChanges, len(body))
	for field, raw := range body {
		value, ok := raw.(string)
		if !ok {
			return nil, domain.NewValidationError(fmt.Sprintf("%s must be a string", field))
		}
		changes[field] = value
	}
	return changes, nil
}

// multipartChanges reads text fields as changes and the optional picture.
// The returned file, when non-nil, must be closed by the caller.
func multipartChanges(c echo.Context) (domain.ProfileChanges, *ports.PictureUpload, multipart.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, nil, domain.NewValidationError("invalid multipart form")
	}

	changes := make(domain.ProfileChanges, len(form.Value))
	for field, values := range form.Value {
		if len(values) != 1 {
			return nil, nil, nil, domain.NewValidationError(fmt.Sprintf("%s must have exactly one value", field))
		}
		changes[field] = values[0]
	}

	files := form.File[pictureFormField]
	if len(files) == 0 {
		return changes, nil, nil, nil
	}
	upload, file, err := openUpload(files[0])
	if err != nil {
		return nil, nil, nil, err
	}
	return changes, &upload, file, nil
}

func openUpload(fh *multipart.FileHeader) (ports.PictureUpload, multipart.File, error) {
	file, err := fh.Open()
	if err != nil {
		return ports.PictureUpload{}, nil, domain.NewValidationError("unreadable file")
	}
	return ports.PictureUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        file,
	}, file, nil
}
