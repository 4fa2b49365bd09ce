package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/planfold/planfold/internal/adapters/http/handlers"
	"github.com/planfold/planfold/internal/app/dto"
	"github.com/planfold/planfold/internal/domain"
)

func todoRouter(h *handlers.TodoHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/projects/{projectId}/todos", h.ListProjectTodos)
	r.Post("/todos", h.CreateTodo)
	r.Get("/todos/{id}", h.GetTodo)
	r.Patch("/todos/{id}", h.UpdateTodo)
	r.Delete("/todos/{id}", h.DeleteTodo)
	return r
}

func TestTodoHandler_ListProjectTodos(t *testing.T) {
	t.Parallel()

	svc := &fakeTodoService{
		t: t,
		getProjectTodosFn: func(_ context.Context, projectID string) ([]dto.TodoResponse, error) {
			if projectID != "p1" {
				t.Errorf("projectID = %q, want %q", projectID, "p1")
			}
			return []dto.TodoResponse{
				{ID: "t1", Title: "Water plants", ProjectID: projectID},
				{ID: "t2", Title: "Buy soil", ProjectID: projectID, Completed: true},
			}, nil
		},
	}
	router := todoRouter(handlers.NewTodoHandler(svc))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/projects/p1/todos", "user-1", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got []dto.TodoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(todos) = %d, want 2", len(got))
	}
	if !got[1].Completed {
		t.Error("second todo should be completed")
	}
}

func TestTodoHandler_CreateTodo(t *testing.T) {
	t.Parallel()

	svc := &fakeTodoService{
		t: t,
		createTodoFn: func(_ context.Context, req dto.CreateTodoRequest) (*dto.TodoResponse, error) {
			if req.Title != "Water plants" || req.ProjectID != "p1" {
				t.Errorf("unexpected request: %+v", req)
			}
			return &dto.TodoResponse{ID: "t1", Title: req.Title, ProjectID: req.ProjectID}, nil
		},
	}
	router := todoRouter(handlers.NewTodoHandler(svc))

	body := `{"title":"Water plants","projectId":"p1"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/todos", "user-1", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
}

func TestTodoHandler_CreateTodo_ValidationError(t *testing.T) {
	t.Parallel()

	svc := &fakeTodoService{
		t: t,
		createTodoFn: func(context.Context, dto.CreateTodoRequest) (*dto.TodoResponse, error) {
			return nil, &domain.ValidationError{Field: "title", Message: "is required"}
		},
	}
	router := todoRouter(handlers.NewTodoHandler(svc))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/todos", "user-1", `{"projectId":"p1"}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestTodoHandler_UpdateTodo_CompletedMustBeBool(t *testing.T) {
	t.Parallel()

	svc := &fakeTodoService{t: t}
	router := todoRouter(handlers.NewTodoHandler(svc))

	// A string where a boolean belongs fails at the decoding boundary,
	// before the service is reached.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPatch, "/todos/t1", "user-1", `{"completed":"yes"}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestTodoHandler_UpdateTodo(t *testing.T) {
	t.Parallel()

	svc := &fakeTodoService{
		t: t,
		updateTodoFn: func(_ context.Context, id string, req dto.UpdateTodoRequest) (*dto.TodoResponse, error) {
			if id != "t1" {
				t.Errorf("id = %q, want %q", id, "t1")
			}
			if req.Completed == nil || !*req.Completed {
				t.Errorf("Completed = %v, want true", req.Completed)
			}
			return &dto.TodoResponse{ID: id, Completed: true}, nil
		},
	}
	router := todoRouter(handlers.NewTodoHandler(svc))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPatch, "/todos/t1", "user-1", `{"completed":true}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestTodoHandler_DeleteTodo_NotFound(t *testing.T) {
	t.Parallel()

	svc := &fakeTodoService{
		t: t,
		deleteTodoFn: func(_ context.Context, id string) error {
			return &domain.NotFoundError{Resource: "todo", ID: id}
		},
	}
	router := todoRouter(handlers.NewTodoHandler(svc))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodDelete, "/todos/missing", "user-1", ""))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
