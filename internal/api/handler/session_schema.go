package handler

import (
	"encoding/json"

	"github.com/campusdesk/portal-agent/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// loginErrorResponse is returned when the school API rejects a sign-in.
type loginErrorResponse struct {
	Error  string          `json:"error"`
	Status int             `json:"status,omitempty"`
	Data   json.RawMessage `json:"data,omitempty" swaggertype:"object"`
}

// --- Request / Response types ---

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=254"`
	Password   string `json:"password"   validate:"required"`
	Remember   bool   `json:"remember"`
	OwnerKey   string `json:"owner_key"  validate:"omitempty,max=128"`
}

type loginResponse struct {
	User     *domain.User `json:"user"`
	Redirect string       `json:"redirect"`
}

type logoutRequest struct {
	SkipRemote bool `json:"skip_remote"`
}

type campusRequest struct {
	CampusID string `json:"campus_id" validate:"max=128"`
}

type campusResponse struct {
	CampusID string `json:"campus_id"`
}

type sessionResponse struct {
	Authenticated bool                 `json:"authenticated"`
	Loading       bool                 `json:"loading"`
	User          *domain.User         `json:"user"`
	ModuleAccess  *domain.ModuleAccess `json:"module_access"`
	CampusID      string               `json:"campus_id,omitempty"`
	Redirect      string               `json:"redirect,omitempty"`
}

type moduleAccessResponse struct {
	Module   string `json:"module"`
	Subroute string `json:"subroute,omitempty"`
	Allowed  bool   `json:"allowed"`
}

type signalRequest struct {
	Kind    string `json:"kind"    validate:"required,oneof=focus visibility unauthorized"`
	Visible bool   `json:"visible"`
	URL     string `json:"url"     validate:"required_if=Kind unauthorized"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}
