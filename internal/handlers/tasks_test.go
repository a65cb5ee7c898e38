package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tasuku-app/tasuku/internal/database"
	"github.com/tasuku-app/tasuku/internal/middleware"
	"github.com/tasuku-app/tasuku/internal/models"
	"github.com/tasuku-app/tasuku/internal/queue"
	"github.com/tasuku-app/tasuku/internal/services/ai"
)

// fakeTaskRepo is an in-memory TaskRepositoryInterface for handler tests.
type fakeTaskRepo struct {
	tasks []*models.Task
}

func (f *fakeTaskRepo) Create(_ context.Context, task *models.Task) error {
	task.CreatedAt = time.Now()
	f.tasks = append(f.tasks, task)
	return nil
}

func (f *fakeTaskRepo) CreateBatch(ctx context.Context, tasks []*models.Task) error {
	for _, task := range tasks {
		if err := f.Create(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeTaskRepo) GetByID(_ context.Context, userID string, id uuid.UUID) (*models.Task, error) {
	for _, t := range f.tasks {
		if t.UserID == userID && t.ID == id {
			return t, nil
		}
	}
	return nil, database.ErrTaskNotFound
}

func (f *fakeTaskRepo) ListActive(_ context.Context, userID string) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range f.tasks {
		if t.UserID == userID && t.Status.Active() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) ListByUser(_ context.Context, userID string, status *models.Status) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range f.tasks {
		if t.UserID != userID {
			continue
		}
		if status != nil && t.Status != *status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTaskRepo) ListActiveAllUsers(_ context.Context) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range f.tasks {
		if t.Status.Active() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) UpdateTitle(ctx context.Context, userID string, id uuid.UUID, title string) error {
	t, err := f.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	t.Title = title
	return nil
}

func (f *fakeTaskRepo) UpdatePriority(ctx context.Context, userID string, id uuid.UUID, priority models.Priority) error {
	t, err := f.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	t.Priority = priority
	t.Status = models.StatusUnprocessed
	return nil
}

func (f *fakeTaskRepo) UpdateStatus(ctx context.Context, userID string, id uuid.UUID, status models.Status) error {
	t, err := f.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	t.Status = status
	return nil
}

func (f *fakeTaskRepo) UpdateSortOrder(ctx context.Context, userID string, id uuid.UUID, sortOrder int) error {
	t, err := f.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	order := sortOrder
	t.SortOrder = &order
	return nil
}

func (f *fakeTaskRepo) HardDelete(_ context.Context, userID string, id uuid.UUID) error {
	for i, t := range f.tasks {
		if t.UserID == userID && t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return database.ErrTaskNotFound
}

// stubClassifier returns canned proposals or an error.
type stubClassifier struct {
	proposals []ai.TaskProposal
	err       error
}

func (s *stubClassifier) Classify(context.Context, string) ([]ai.TaskProposal, error) {
	return s.proposals, s.err
}

func newTaskRouter(repo *fakeTaskRepo, classifier ai.Classifier) *mux.Router {
	h := NewTaskHandler(repo, classifier, queue.Noop{}, zap.NewNop())
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/tasks").Subrouter())
	return r
}

func authedRequest(method, url string, body any, userID string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, url, &buf)
	return r.WithContext(middleware.WithUserID(r.Context(), userID))
}

func TestQuickAddClassified(t *testing.T) {
	repo := &fakeTaskRepo{}
	classifier := &stubClassifier{proposals: []ai.TaskProposal{
		{Title: "牛乳を買う", Category: "買い物", Priority: "B"},
	}}
	router := newTaskRouter(repo, classifier)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("POST", "/tasks", map[string]string{"text": "牛乳を買う"}, "U1"))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if len(repo.tasks) != 1 {
		t.Fatalf("stored %d tasks, want 1", len(repo.tasks))
	}
	if repo.tasks[0].Priority != models.PriorityB || repo.tasks[0].Status != models.StatusUnprocessed {
		t.Errorf("task = %+v", repo.tasks[0])
	}
}

func TestQuickAddFallbackWhenClassifierFails(t *testing.T) {
	repo := &fakeTaskRepo{}
	classifier := &stubClassifier{err: fmt.Errorf("api down")}
	router := newTaskRouter(repo, classifier)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("POST", "/tasks", map[string]string{"text": "何かのメモ"}, "U1"))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if len(repo.tasks) != 1 {
		t.Fatalf("stored %d tasks, want 1", len(repo.tasks))
	}

	task := repo.tasks[0]
	if task.Title != "何かのメモ" {
		t.Errorf("fallback title = %q, want the raw text", task.Title)
	}
	if task.Priority != models.PriorityIdea {
		t.Errorf("fallback priority = %q, want IDEA", task.Priority)
	}
	if task.Category != models.ManualEntryCategory {
		t.Errorf("fallback category = %q, want %q", task.Category, models.ManualEntryCategory)
	}
}

func TestQuickAddFallbackWhenClassifierDisabled(t *testing.T) {
	repo := &fakeTaskRepo{}
	router := newTaskRouter(repo, ai.Disabled{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("POST", "/tasks", map[string]string{"text": "メモ"}, "U1"))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if len(repo.tasks) != 1 || repo.tasks[0].Priority != models.PriorityIdea {
		t.Errorf("tasks = %+v", repo.tasks)
	}
}

func TestQuickAddRejectsEmptyText(t *testing.T) {
	router := newTaskRouter(&fakeTaskRepo{}, ai.Disabled{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("POST", "/tasks", map[string]string{"text": "   "}, "U1"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListTasksRequiresAuth(t *testing.T) {
	router := newTaskRouter(&fakeTaskRepo{}, ai.Disabled{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/tasks", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestUpdatePriorityResetsStatus(t *testing.T) {
	repo := &fakeTaskRepo{}
	task := &models.Task{ID: uuid.New(), UserID: "U1", Title: "t", Priority: models.PriorityB, Status: models.StatusInProgress}
	repo.tasks = append(repo.tasks, task)
	router := newTaskRouter(repo, ai.Disabled{})

	w := httptest.NewRecorder()
	url := fmt.Sprintf("/tasks/%s/priority", task.ID)
	router.ServeHTTP(w, authedRequest("PATCH", url, map[string]string{"priority": "S"}, "U1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if task.Priority != models.PriorityS || task.Status != models.StatusUnprocessed {
		t.Errorf("task = (%q, %q), want (S, unprocessed)", task.Priority, task.Status)
	}
}

func TestUpdatePriorityRejectsInvalidValue(t *testing.T) {
	repo := &fakeTaskRepo{}
	task := &models.Task{ID: uuid.New(), UserID: "U1", Title: "t", Priority: models.PriorityB, Status: models.StatusUnprocessed}
	repo.tasks = append(repo.tasks, task)
	router := newTaskRouter(repo, ai.Disabled{})

	w := httptest.NewRecorder()
	url := fmt.Sprintf("/tasks/%s/priority", task.ID)
	router.ServeHTTP(w, authedRequest("PATCH", url, map[string]string{"priority": "Z"}, "U1"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpdateTitleNotFound(t *testing.T) {
	router := newTaskRouter(&fakeTaskRepo{}, ai.Disabled{})

	w := httptest.NewRecorder()
	url := fmt.Sprintf("/tasks/%s/title", uuid.New())
	router.ServeHTTP(w, authedRequest("PATCH", url, map[string]string{"title": "new"}, "U1"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDropOntoStatusZone(t *testing.T) {
	repo := &fakeTaskRepo{}
	task := &models.Task{ID: uuid.New(), UserID: "U1", Title: "t", Priority: models.PriorityA, Status: models.StatusUnprocessed}
	repo.tasks = append(repo.tasks, task)
	router := newTaskRouter(repo, ai.Disabled{})

	w := httptest.NewRecorder()
	url := fmt.Sprintf("/tasks/%s/drop", task.ID)
	router.ServeHTTP(w, authedRequest("POST", url, map[string]string{"target": "done"}, "U1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if task.Status != models.StatusDone {
		t.Errorf("status = %q, want done", task.Status)
	}

	var resp struct {
		Data struct {
			Effect string `json:"effect"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Effect != "set_status" {
		t.Errorf("effect = %q, want set_status", resp.Data.Effect)
	}
}

func TestDropOntoTaskAdoptsColumn(t *testing.T) {
	repo := &fakeTaskRepo{}
	dragged := &models.Task{ID: uuid.New(), UserID: "U1", Title: "dragged", Priority: models.PriorityC, Status: models.StatusUnprocessed}
	target := &models.Task{ID: uuid.New(), UserID: "U1", Title: "target", Priority: models.PriorityS, Status: models.StatusInProgress}
	repo.tasks = append(repo.tasks, dragged, target)
	router := newTaskRouter(repo, ai.Disabled{})

	w := httptest.NewRecorder()
	url := fmt.Sprintf("/tasks/%s/drop", dragged.ID)
	router.ServeHTTP(w, authedRequest("POST", url, map[string]string{"target": target.ID.String()}, "U1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if dragged.Priority != models.PriorityS || dragged.Status != models.StatusInProgress {
		t.Errorf("dragged = (%q, %q), want adopted (S, in_progress)", dragged.Priority, dragged.Status)
	}
	if dragged.SortOrder == nil || target.SortOrder == nil {
		t.Fatal("sort order not persisted")
	}
	if *dragged.SortOrder >= *target.SortOrder {
		t.Errorf("dragged order %d not before target order %d", *dragged.SortOrder, *target.SortOrder)
	}
}

func TestDeleteTask(t *testing.T) {
	repo := &fakeTaskRepo{}
	task := &models.Task{ID: uuid.New(), UserID: "U1", Title: "t", Priority: models.PriorityA, Status: models.StatusUnprocessed}
	repo.tasks = append(repo.tasks, task)
	router := newTaskRouter(repo, ai.Disabled{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("DELETE", "/tasks/"+task.ID.String(), nil, "U1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(repo.tasks) != 0 {
		t.Errorf("task not deleted")
	}
}

func TestDeleteOtherUsersTask(t *testing.T) {
	repo := &fakeTaskRepo{}
	task := &models.Task{ID: uuid.New(), UserID: "U1", Title: "t", Priority: models.PriorityA, Status: models.StatusUnprocessed}
	repo.tasks = append(repo.tasks, task)
	router := newTaskRouter(repo, ai.Disabled{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("DELETE", "/tasks/"+task.ID.String(), nil, "U2"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for foreign task", w.Code)
	}
	if len(repo.tasks) != 1 {
		t.Error("foreign task was deleted")
	}
}
