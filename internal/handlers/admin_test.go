package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tasuku-app/tasuku/internal/models"
	"github.com/tasuku-app/tasuku/internal/queue"
)

// recordingQueue captures enqueued jobs.
type recordingQueue struct {
	mu   sync.Mutex
	jobs []*queue.Job
}

func (r *recordingQueue) Enqueue(_ context.Context, job *queue.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
	return nil
}

func (r *recordingQueue) Consume(context.Context, int) (<-chan *queue.Message, <-chan error, error) {
	msgChan := make(chan *queue.Message)
	errChan := make(chan error)
	close(msgChan)
	close(errChan)
	return msgChan, errChan, nil
}

func (r *recordingQueue) Close() error { return nil }

func newAdminRouter(repo *fakeTaskRepo, jobs queue.JobQueue) *mux.Router {
	h := NewAdminHandler(repo, jobs, "Uadmin", zap.NewNop())
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/admin").Subrouter())
	return r
}

func TestAdminListAllTasks(t *testing.T) {
	repo := &fakeTaskRepo{tasks: []*models.Task{
		{ID: uuid.New(), UserID: "U1", Title: "a", Priority: models.PriorityA, Status: models.StatusUnprocessed},
		{ID: uuid.New(), UserID: "U2", Title: "b", Priority: models.PriorityS, Status: models.StatusUnprocessed},
		{ID: uuid.New(), UserID: "U2", Title: "done", Priority: models.PriorityS, Status: models.StatusDone},
	}}
	router := newAdminRouter(repo, queue.Noop{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("GET", "/admin/tasks", nil, "Uadmin"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestAdminForbiddenForOthers(t *testing.T) {
	jobs := &recordingQueue{}
	router := newAdminRouter(&fakeTaskRepo{}, jobs)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("GET", "/admin/tasks", nil, "Uother"))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	// The intrusion fires an operator alert job.
	if len(jobs.jobs) != 1 || jobs.jobs[0].Type != queue.JobTypeAdminAlert {
		t.Errorf("jobs = %+v", jobs.jobs)
	}
}
