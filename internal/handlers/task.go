package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pomotrack/apiserver/internal/services"
)

// TaskHandler provides HTTP handlers for the caller's task list. Every
// mutation answers with the full list.
type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// TaskRouter registers task routes, including the GET aliases, behind
// requireSession.
func TaskRouter(r chi.Router, taskService *services.TaskService, requireSession func(http.Handler) http.Handler) {
	handler := NewTaskHandler(taskService)

	r.Group(func(r chi.Router) {
		r.Use(requireSession)

		r.Get("/getTasks", handler.ListTasks)
		r.Post("/addTask", handler.AddTask)
		r.With(LegacyQuery).Get("/addTask", handler.AddTask)
		r.Patch("/updateTask/{id}", handler.UpdateTask)
		r.With(LegacyQuery).Get("/updateTask", handler.UpdateTask)
		r.Delete("/deleteTask/{id}", handler.DeleteTask)
		r.Get("/deleteTask", handler.DeleteTask)
		r.Delete("/deleteAll", handler.DeleteAll)
		r.Get("/deleteAll", handler.DeleteAll)
	})
}

type addTaskRequest struct {
	Name string   `json:"name"`
	Num  looseInt `json:"num"`
}

type updateTaskRequest struct {
	Finish looseInt `json:"finish"`
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, r, "task_list", err)
		return
	}

	tasks, err := h.taskService.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "task_list", err)
		return
	}
	writeSuccess(w, http.StatusOK, tasks)
}

func (h *TaskHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, r, "task_add", err)
		return
	}

	var req addTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, "task_add", err)
		return
	}
	// Missing or non-numeric counts fall back to the default target.
	target := 0
	if req.Num.Valid {
		target = req.Num.Value
	}

	tasks, err := h.taskService.Add(r.Context(), userID, req.Name, target)
	if err != nil {
		writeServiceError(w, r, "task_add", err)
		return
	}
	writeSuccess(w, http.StatusCreated, tasks)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, r, "task_update", err)
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, "task_update", err)
		return
	}
	if !req.Finish.Valid {
		err := fmt.Errorf("%w: finish must be a non-negative integer", services.ErrInvalidInput)
		writeServiceError(w, r, "task_update", err)
		return
	}

	tasks, err := h.taskService.UpdateFinish(r.Context(), userID, taskIDParam(r), req.Finish.Value)
	if err != nil {
		writeServiceError(w, r, "task_update", err)
		return
	}
	writeSuccess(w, http.StatusOK, tasks)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, r, "task_delete", err)
		return
	}

	tasks, err := h.taskService.Remove(r.Context(), userID, taskIDParam(r))
	if err != nil {
		writeServiceError(w, r, "task_delete", err)
		return
	}
	writeSuccess(w, http.StatusOK, tasks)
}

func (h *TaskHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, r, "task_delete_all", err)
		return
	}

	tasks, err := h.taskService.RemoveAll(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "task_delete_all", err)
		return
	}
	writeSuccess(w, http.StatusOK, tasks)
}

// taskIDParam reads the id path segment, falling back to ?id= for the GET
// aliases.
func taskIDParam(r *http.Request) string {
	if id := chi.URLParam(r, "id"); id != "" {
		return id
	}
	return r.URL.Query().Get("id")
}
