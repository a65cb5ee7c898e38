package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tasuku-app/tasuku/internal/models"
)

// fakeSettingsRepo is an in-memory SettingsRepositoryInterface.
type fakeSettingsRepo struct {
	saved map[string]*models.UserSettings
}

func (f *fakeSettingsRepo) Get(_ context.Context, userID string) (*models.UserSettings, error) {
	if s, ok := f.saved[userID]; ok {
		return s, nil
	}
	return models.DefaultSettings(userID), nil
}

func (f *fakeSettingsRepo) Upsert(_ context.Context, settings *models.UserSettings) error {
	if f.saved == nil {
		f.saved = make(map[string]*models.UserSettings)
	}
	f.saved[settings.UserID] = settings
	return nil
}

func newSettingsRouter(repo *fakeSettingsRepo) *mux.Router {
	h := NewSettingsHandler(repo, zap.NewNop())
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/settings").Subrouter())
	return r
}

func TestGetSettingsDefaults(t *testing.T) {
	router := newSettingsRouter(&fakeSettingsRepo{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("GET", "/settings", nil, "U1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, models.DefaultColumnLabel1) || !strings.Contains(body, models.DefaultColumnLabel2) {
		t.Errorf("body = %s, want default labels", body)
	}
}

func TestPutSettings(t *testing.T) {
	repo := &fakeSettingsRepo{}
	router := newSettingsRouter(repo)

	payload := map[string]string{"column_label1": "実験", "column_label2": "ネタ帳"}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("PUT", "/settings", payload, "U1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	saved := repo.saved["U1"]
	if saved == nil || saved.ColumnLabel1 != "実験" || saved.ColumnLabel2 != "ネタ帳" {
		t.Errorf("saved = %+v", saved)
	}
}

func TestPutSettingsRejectsEmptyLabel(t *testing.T) {
	router := newSettingsRouter(&fakeSettingsRepo{})

	payload := map[string]string{"column_label1": "", "column_label2": "ok"}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("PUT", "/settings", payload, "U1"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
