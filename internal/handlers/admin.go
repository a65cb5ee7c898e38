package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tasuku-app/tasuku/internal/database"
	"github.com/tasuku-app/tasuku/internal/middleware"
	"github.com/tasuku-app/tasuku/internal/models"
	"github.com/tasuku-app/tasuku/internal/queue"
	"github.com/tasuku-app/tasuku/internal/render"
)

// AdminHandler serves the operator's aggregate view. Access is restricted to
// the configured admin user; anyone else gets a 403 and the operator is
// alerted through the notification queue.
type AdminHandler struct {
	taskRepo    database.TaskRepositoryInterface
	jobs        queue.JobQueue
	adminUserID string
	logger      *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(taskRepo database.TaskRepositoryInterface, jobs queue.JobQueue, adminUserID string, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		taskRepo:    taskRepo,
		jobs:        jobs,
		adminUserID: adminUserID,
		logger:      logger,
	}
}

// RegisterRoutes registers admin routes on the given router.
func (h *AdminHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/tasks", h.ListAllTasks).Methods("GET")
}

// ListAllTasks returns every user's active tasks, grouped by user.
func (h *AdminHandler) ListAllTasks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r)
	if userID == "" {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}
	if h.adminUserID == "" || userID != h.adminUserID {
		h.alertIntrusion(userID, r.URL.Path)
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Admin access required")
		return
	}

	tasks, err := h.taskRepo.ListActiveAllUsers(r.Context())
	if err != nil {
		h.logger.Error("admin_list_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}

	grouped := make(map[string][]*models.Task)
	for _, t := range tasks {
		grouped[t.UserID] = append(grouped[t.UserID], t)
	}
	for uid, list := range grouped {
		grouped[uid] = render.Sort(list)
	}

	respondJSON(w, http.StatusOK, map[string]any{"users": grouped})
}

// alertIntrusion notifies the operator that a non-admin hit an admin path.
func (h *AdminHandler) alertIntrusion(userID, path string) {
	h.logger.Warn("admin_access_denied",
		zap.String("user_id", userID),
		zap.String("path", path),
	)

	job := queue.NewJob(queue.JobTypeAdminAlert, userID)
	job.Path = path
	job.Message = fmt.Sprintf("非管理者が管理画面にアクセスしました: %s", userID)

	ctx, cancel := queueContext()
	defer cancel()
	if err := h.jobs.Enqueue(ctx, job); err != nil {
		h.logger.Warn("admin_alert_enqueue_failed", zap.Error(err))
	}
}
