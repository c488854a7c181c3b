package handler

import (
	"reflect"
	"strings"

	"github.com/talentgate/account-service/internal/core/domain"
	"github.com/talentgate/account-service/internal/core/ports"
)

// --- Request / Response types ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=128"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"omitempty,oneof=employer standard"`
	State    string `json:"state"    validate:"max=64"`
}

type registerResponse struct {
	Message string            `json:"message"`
	User    domain.PublicUser `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type submitUpdateResponse struct {
	Message string                       `json:"message"`
	Request *domain.ProfileUpdateRequest `json:"request"`
}

type deletePictureResponse struct {
	Message string             `json:"message"`
	User    *domain.PublicUser `json:"user"`
}

type uploadResponse struct {
	URL string `json:"url"`
}

type resolveResponse struct {
	Message string                       `json:"message"`
	Request *domain.ProfileUpdateRequest `json:"request"`
}

type listRequestsResponse struct {
	Requests []*domain.ProfileUpdateRequest `json:"requests"`
}

// profileResponse documents ports.Profile for swag.
type profileResponse = ports.Profile

// jsonFieldName reports validation failures under the JSON field name.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	default:
		return name
	}
}

// errorBody is the error envelope rendered by the central error handler.
type errorBody struct {
	Error string `json:"error"`
}
