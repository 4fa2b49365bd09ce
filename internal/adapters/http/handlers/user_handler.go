package handlers

import (
	"encoding/json"
	"net/http"

	httpdto "github.com/planfold/planfold/internal/adapters/http/dto"
	"github.com/planfold/planfold/internal/domain/user"
	"github.com/planfold/planfold/internal/ports"
)

// UserHandler handles HTTP requests for the authenticated user's profile.
type UserHandler struct {
	svc ports.UserService
}

// NewUserHandler creates a new UserHandler with the given service port.
func NewUserHandler(svc ports.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// profileUpdateRequest is the PATCH body for the profile endpoint. A JSON
// null photoURL removes the photo; an absent field leaves it untouched.
type profileUpdateRequest struct {
	DisplayName *string `json:"displayName,omitempty"`

	// Decoded by hand below so null and absent can be told apart.
	PhotoURL     *string `json:"photoURL,omitempty"`
	photoURLSent bool
}

// UnmarshalJSON distinguishes an absent photoURL from an explicit null.
func (r *profileUpdateRequest) UnmarshalJSON(data []byte) error {
	type alias profileUpdateRequest
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = profileUpdateRequest(a)
	_, r.photoURLSent = raw["photoURL"]
	return nil
}

// GetMe handles GET /api/v1/me.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	u, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// UpdateMe handles PATCH /api/v1/me.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	var req profileUpdateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	changes := user.ProfileUpdate{
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
	}
	if req.photoURLSent && req.PhotoURL == nil {
		changes.RemovePhotoURL = true
	}

	updated, err := h.svc.UpdateProfile(r.Context(), userID, changes)
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}
