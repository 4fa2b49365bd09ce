package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	httpdto "github.com/planfold/planfold/internal/adapters/http/dto"
	"github.com/planfold/planfold/internal/app/dto"
	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/project"
	"github.com/planfold/planfold/internal/ports"
)

// ProjectHandler handles HTTP requests for project operations, including
// the map-canvas position endpoints and the live project stream.
type ProjectHandler struct {
	svc ports.ProjectService
}

// NewProjectHandler creates a new ProjectHandler with the given service port.
func NewProjectHandler(svc ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// ListProjects handles GET /api/v1/projects. It returns the authenticated
// user's projects together with their map positions.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	result, err := h.svc.GetUserProjects(r.Context(), userID)
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// CreateProject handles POST /api/v1/projects. The owner is always the
// authenticated user, regardless of what the body claims.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.CreateProjectRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	req.OwnerID = userID

	created, err := h.svc.CreateProject(r.Context(), req)
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// GetProject handles GET /api/v1/projects/{id}.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "id")
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	p, err := h.svc.GetProject(r.Context(), id)
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// UpdateProject handles PATCH /api/v1/projects/{id}.
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "id")
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.UpdateProjectRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	updated, err := h.svc.UpdateProject(r.Context(), id, req)
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteProject handles DELETE /api/v1/projects/{id}.
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "id")
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	if err := h.svc.DeleteProject(r.Context(), id); err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdatePosition handles PUT /api/v1/projects/{id}/position.
func (h *ProjectHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "id")
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	var pos project.Position
	if !decodeJSONBody(w, r, &pos) {
		return
	}

	if err := h.svc.UpdateProjectPosition(r.Context(), id, pos); err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdatePositions handles PUT /api/v1/projects/positions with a batch body
// keyed by project id.
func (h *ProjectHandler) UpdatePositions(w http.ResponseWriter, r *http.Request) {
	var positions map[string]project.Position
	if !decodeJSONBody(w, r, &positions) {
		return
	}
	if len(positions) == 0 {
		httpdto.WriteErrorResponse(w, r, &domain.ValidationError{
			Field:   "body",
			Message: "must contain at least one position",
		})
		return
	}

	if err := h.svc.UpdateMultipleProjectPositions(r.Context(), positions); err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// WatchProjects handles GET /api/v1/projects/watch as a server-sent event
// stream. The current project set is sent immediately and again after every
// change, until the client disconnects.
func (h *ProjectHandler) WatchProjects(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httpdto.WriteErrorResponse(w, r, fmt.Errorf("streaming unsupported"))
		return
	}

	// Unbuffered would block the repository's notification path while a
	// slow client drains; one slot of slack decouples the two.
	updates := make(chan dto.UserProjectsResponse, 1)
	unsubscribe, err := h.svc.SubscribeToUserProjects(r.Context(), userID, func(result dto.UserProjectsResponse) {
		select {
		case updates <- result:
		default:
		}
	})
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for {
		select {
		case <-r.Context().Done():
			return
		case result := <-updates:
			data, err := json.Marshal(result)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
