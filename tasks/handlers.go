package tasks

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/taskman-go/auth"
	"github.com/user/taskman-go/web"
)

// Handlers serves the task pages. All routes sit behind the auth guard, so a
// principal is always present; the page surface never exposes storage
// errors, it logs them and degrades to an empty list or a redirect.
type Handlers struct {
	service  *Service
	renderer *web.Renderer
	logger   *zap.Logger
}

// NewHandlers creates the task page handlers.
func NewHandlers(service *Service, renderer *web.Renderer, logger *zap.Logger) *Handlers {
	return &Handlers{service: service, renderer: renderer, logger: logger}
}

// RegisterRoutes mounts the task routes on the given router. The caller is
// expected to have applied the auth guard already.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleList())
	r.Get("/create", h.ShowCreate())
	r.Post("/create", h.HandleCreate())
	r.Post("/update/{id}", h.HandleUpdateStatus())
	r.Post("/delete/{id}", h.HandleDelete())
	r.Get("/edit/{id}", h.ShowEdit())
	r.Post("/edit/{id}", h.HandleEdit())
}

// HandleList renders the owner's task list. On a storage failure the page
// still renders, just empty.
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.RedirectToLogin(w, r)
			return
		}

		list, err := h.service.List(r.Context(), principal.UserID)
		if err != nil {
			h.logger.Error("failed to list tasks", zap.Error(err))
			list = nil
		}

		h.renderer.Render(w, http.StatusOK, "tasks", web.Page{
			Title: "My Tasks",
			User:  principal,
			Tasks: list,
		})
	}
}

// ShowCreate renders the new-task form.
func (h *Handlers) ShowCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.RedirectToLogin(w, r)
			return
		}
		h.renderer.Render(w, http.StatusOK, "create-task", web.Page{Title: "Create Task", User: principal})
	}
}

// HandleCreate stores a new task and returns to the list. Failures are
// logged; the redirect happens either way.
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.RedirectToLogin(w, r)
			return
		}

		if err := r.ParseForm(); err == nil {
			_, err := h.service.Create(r.Context(), principal.UserID,
				r.PostFormValue("title"),
				r.PostFormValue("description"),
				r.PostFormValue("priority"),
			)
			if err != nil {
				h.logger.Error("failed to create task", zap.Error(err))
			}
		}

		http.Redirect(w, r, "/tasks", http.StatusFound)
	}
}

// HandleUpdateStatus sets a task's status and returns to the list.
func (h *Handlers) HandleUpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.RedirectToLogin(w, r)
			return
		}

		if err := r.ParseForm(); err == nil {
			taskID := chi.URLParam(r, "id")
			if err := h.service.UpdateStatus(r.Context(), principal.UserID, taskID, r.PostFormValue("status")); err != nil {
				h.logger.Error("failed to update task status", zap.Error(err))
			}
		}

		http.Redirect(w, r, "/tasks", http.StatusFound)
	}
}

// HandleDelete removes a task and returns to the list.
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.RedirectToLogin(w, r)
			return
		}

		if err := h.service.Delete(r.Context(), principal.UserID, chi.URLParam(r, "id")); err != nil {
			h.logger.Error("failed to delete task", zap.Error(err))
		}

		http.Redirect(w, r, "/tasks", http.StatusFound)
	}
}

// ShowEdit renders the edit form for an owned task. A missing or foreign
// task id routes back to the list rather than signaling an error.
func (h *Handlers) ShowEdit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.RedirectToLogin(w, r)
			return
		}

		task, err := h.service.GetByID(r.Context(), principal.UserID, chi.URLParam(r, "id"))
		if err != nil {
			http.Redirect(w, r, "/tasks", http.StatusFound)
			return
		}

		h.renderer.Render(w, http.StatusOK, "edit-task", web.Page{
			Title: "Edit Task",
			User:  principal,
			Task:  task,
		})
	}
}

// HandleEdit overwrites all editable fields of a task and returns to the
// list.
func (h *Handlers) HandleEdit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.RedirectToLogin(w, r)
			return
		}

		if err := r.ParseForm(); err == nil {
			taskID := chi.URLParam(r, "id")
			err := h.service.UpdateFull(r.Context(), principal.UserID, taskID,
				r.PostFormValue("title"),
				r.PostFormValue("description"),
				r.PostFormValue("priority"),
				r.PostFormValue("status"),
			)
			if err != nil {
				h.logger.Error("failed to update task", zap.Error(err))
			}
		}

		http.Redirect(w, r, "/tasks", http.StatusFound)
	}
}
