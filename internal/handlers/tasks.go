package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tasuku-app/tasuku/internal/command"
	"github.com/tasuku-app/tasuku/internal/database"
	"github.com/tasuku-app/tasuku/internal/middleware"
	"github.com/tasuku-app/tasuku/internal/models"
	"github.com/tasuku-app/tasuku/internal/queue"
	"github.com/tasuku-app/tasuku/internal/reconcile"
	"github.com/tasuku-app/tasuku/internal/render"
	"github.com/tasuku-app/tasuku/internal/services/ai"
	"github.com/tasuku-app/tasuku/internal/validation"
)

// TaskHandler handles dashboard task requests
type TaskHandler struct {
	taskRepo   database.TaskRepositoryInterface
	classifier ai.Classifier
	jobs       queue.JobQueue
	logger     *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskRepo database.TaskRepositoryInterface, classifier ai.Classifier, jobs queue.JobQueue, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskRepo:   taskRepo,
		classifier: classifier,
		jobs:       jobs,
		logger:     logger,
	}
}

// RegisterRoutes registers task routes on the given router.
// The router should already have the /tasks prefix.
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.QuickAdd).Methods("POST")
	r.HandleFunc("/{id}/title", h.UpdateTitle).Methods("PATCH")
	r.HandleFunc("/{id}/priority", h.UpdatePriority).Methods("PATCH")
	r.HandleFunc("/{id}/status", h.UpdateStatus).Methods("PATCH")
	r.HandleFunc("/{id}/order", h.UpdateOrder).Methods("PATCH")
	r.HandleFunc("/{id}/drop", h.Drop).Methods("POST")
	r.HandleFunc("/{id}", h.Delete).Methods("DELETE")
}

// QuickAddRequest represents a quick-add request
type QuickAddRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

// UpdateTitleRequest represents a title update request
type UpdateTitleRequest struct {
	Title string `json:"title" validate:"required,min=1,max=500"`
}

// UpdatePriorityRequest represents a priority update request
type UpdatePriorityRequest struct {
	Priority string `json:"priority" validate:"required,task_priority"`
}

// UpdateStatusRequest represents a status update request
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,task_status"`
}

// UpdateOrderRequest represents a sort order update request
type UpdateOrderRequest struct {
	SortOrder int `json:"sort_order" validate:"min=0"`
}

// DropRequest represents a drag-and-drop gesture. Target is a status zone
// token, a priority column id, or another task's id.
type DropRequest struct {
	Target string `json:"target"`
}

// DropResponse reports the resolved effect of a drop gesture.
type DropResponse struct {
	Effect string         `json:"effect"`
	Tasks  []*models.Task `json:"tasks"`
}

// ListTasks returns the authenticated user's active tasks in display order.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r)
	if userID == "" {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	tasks, err := h.taskRepo.ListActive(r.Context(), userID)
	if err != nil {
		h.storeFailure(userID, "list_tasks", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"tasks": render.Sort(tasks)})
}

// QuickAdd registers tasks from free text. When the classifier fails or is
// disabled, the raw text becomes a single manual-entry task instead of being
// dropped.
func (h *TaskHandler) QuickAdd(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r)
	if userID == "" {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req QuickAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Text = validation.SanitizeText(req.Text)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Text is required and must be at most 2000 characters")
		return
	}

	tasks := h.proposalsOrFallback(r, userID, req.Text)
	if err := h.taskRepo.CreateBatch(r.Context(), tasks); err != nil {
		h.storeFailure(userID, "quick_add", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to store tasks")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"tasks": tasks})
}

// proposalsOrFallback classifies the text, falling back to a single IDEA task
// with the raw text as title.
func (h *TaskHandler) proposalsOrFallback(r *http.Request, userID, text string) []*models.Task {
	proposals, err := h.classifier.Classify(r.Context(), text)
	if err == nil && len(proposals) > 0 {
		return command.ProposalTasks(userID, proposals)
	}
	if err != nil && !errors.Is(err, ai.ErrClassifierDisabled) {
		h.logger.Warn("quick_add_classification_failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
	return []*models.Task{{
		ID:       uuid.New(),
		UserID:   userID,
		Title:    text,
		Category: models.ManualEntryCategory,
		Priority: models.PriorityIdea,
		Status:   models.StatusUnprocessed,
	}}
}

// UpdateTitle renames a task.
func (h *TaskHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.requireTask(w, r)
	if !ok {
		return
	}

	var req UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Title = validation.SanitizeText(req.Title)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required and must be at most 500 characters")
		return
	}

	if err := h.taskRepo.UpdateTitle(r.Context(), userID, taskID, req.Title); err != nil {
		h.respondStoreError(w, userID, "update_title", err)
		return
	}

	h.respondTask(w, r, userID, taskID)
}

// UpdatePriority moves a task to another priority. The store resets status
// to unprocessed as part of the same update.
func (h *TaskHandler) UpdatePriority(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.requireTask(w, r)
	if !ok {
		return
	}

	var req UpdatePriorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Priority must be one of S, A, B, C, DEV, IDEA")
		return
	}

	if err := h.taskRepo.UpdatePriority(r.Context(), userID, taskID, models.Priority(req.Priority)); err != nil {
		h.respondStoreError(w, userID, "update_priority", err)
		return
	}

	h.respondTask(w, r, userID, taskID)
}

// UpdateStatus changes a task's workflow status.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.requireTask(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid status value")
		return
	}

	if err := h.taskRepo.UpdateStatus(r.Context(), userID, taskID, models.Status(req.Status)); err != nil {
		h.respondStoreError(w, userID, "update_status", err)
		return
	}

	h.respondTask(w, r, userID, taskID)
}

// UpdateOrder sets a task's manual sort position.
func (h *TaskHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.requireTask(w, r)
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Sort order must be non-negative")
		return
	}

	if err := h.taskRepo.UpdateSortOrder(r.Context(), userID, taskID, req.SortOrder); err != nil {
		h.respondStoreError(w, userID, "update_order", err)
		return
	}

	h.respondTask(w, r, userID, taskID)
}

// Drop resolves a drag-and-drop gesture and applies its effect.
func (h *TaskHandler) Drop(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.requireTask(w, r)
	if !ok {
		return
	}

	var req DropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	ctx := r.Context()
	dragged, err := h.taskRepo.GetByID(ctx, userID, taskID)
	if err != nil {
		h.respondStoreError(w, userID, "drop_lookup", err)
		return
	}

	active, err := h.taskRepo.ListActive(ctx, userID)
	if err != nil {
		h.storeFailure(userID, "drop_list", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}
	active = render.Sort(active)

	effect := reconcile.ResolveDrop(dragged, req.Target, active)
	if err := h.applyEffect(r, userID, taskID, effect); err != nil {
		h.respondStoreError(w, userID, "drop_apply", err)
		return
	}

	updated, err := h.taskRepo.ListActive(ctx, userID)
	if err != nil {
		h.storeFailure(userID, "drop_refetch", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}

	respondJSON(w, http.StatusOK, DropResponse{
		Effect: effect.Kind.String(),
		Tasks:  render.Sort(updated),
	})
}

// applyEffect runs the store writes for a resolved drop effect. AdoptTarget
// writes priority first so the status reset is then overridden by the
// adopted status.
func (h *TaskHandler) applyEffect(r *http.Request, userID string, taskID uuid.UUID, effect reconcile.Effect) error {
	ctx := r.Context()

	switch effect.Kind {
	case reconcile.EffectNone:
		return nil

	case reconcile.EffectSetStatus:
		return h.taskRepo.UpdateStatus(ctx, userID, taskID, effect.Status)

	case reconcile.EffectSetPriority:
		return h.taskRepo.UpdatePriority(ctx, userID, taskID, effect.Priority)

	case reconcile.EffectAdoptTarget:
		if err := h.taskRepo.UpdatePriority(ctx, userID, taskID, effect.Priority); err != nil {
			return err
		}
		if err := h.taskRepo.UpdateStatus(ctx, userID, taskID, effect.Status); err != nil {
			return err
		}
		return h.persistOrder(ctx, userID, effect.Order)

	case reconcile.EffectReorder:
		return h.persistOrder(ctx, userID, effect.Order)
	}

	return fmt.Errorf("unknown drop effect: %d", effect.Kind)
}

func (h *TaskHandler) persistOrder(ctx context.Context, userID string, order []uuid.UUID) error {
	for i, id := range order {
		if err := h.taskRepo.UpdateSortOrder(ctx, userID, id, i); err != nil {
			return err
		}
	}
	return nil
}

// Delete permanently removes a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.requireTask(w, r)
	if !ok {
		return
	}

	if err := h.taskRepo.HardDelete(r.Context(), userID, taskID); err != nil {
		h.respondStoreError(w, userID, "delete_task", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"deleted": taskID})
}

// requireTask resolves the authenticated user and the {id} path variable.
func (h *TaskHandler) requireTask(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	userID := middleware.UserIDFromContext(r)
	if userID == "" {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return "", uuid.Nil, false
	}

	taskID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return "", uuid.Nil, false
	}

	return userID, taskID, true
}

func (h *TaskHandler) respondTask(w http.ResponseWriter, r *http.Request, userID string, taskID uuid.UUID) {
	task, err := h.taskRepo.GetByID(r.Context(), userID, taskID)
	if err != nil {
		h.respondStoreError(w, userID, "fetch_task", err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) respondStoreError(w http.ResponseWriter, userID, operation string, err error) {
	if errors.Is(err, database.ErrTaskNotFound) {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}
	h.storeFailure(userID, operation, err)
	respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update task")
}

// storeFailure logs the error and fires an operator alert job. The alert is
// fire-and-forget.
func (h *TaskHandler) storeFailure(userID, operation string, err error) {
	h.logger.Error("store_operation_failed",
		zap.String("user_id", userID),
		zap.String("operation", operation),
		zap.Error(err),
	)

	job := queue.NewJob(queue.JobTypeAdminAlert, userID)
	job.Message = fmt.Sprintf("store failure in %s: %s", operation, sanitizeErrorMessage(err.Error()))

	ctx, cancel := queueContext()
	defer cancel()
	if qerr := h.jobs.Enqueue(ctx, job); qerr != nil {
		h.logger.Warn("admin_alert_enqueue_failed", zap.Error(qerr))
	}
}
