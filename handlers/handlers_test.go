package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/kvit-dev/caleoban/models"
	"github.com/kvit-dev/caleoban/planner"
	"github.com/kvit-dev/caleoban/taskstore"
)

// handlerNow is Tuesday 2025-03-11 12:00 local time.
var handlerNow = time.Date(2025, 3, 11, 12, 0, 0, 0, time.Local)

type recordingJournal struct {
	changes []models.StatusChange
}

func (j *recordingJournal) Record(_ context.Context, c models.StatusChange) error {
	j.changes = append(j.changes, c)
	return nil
}

func (j *recordingJournal) ListForTask(_ context.Context, userID, taskID string) ([]models.StatusChange, error) {
	out := []models.StatusChange{}
	for _, c := range j.changes {
		if c.UserID == userID && c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}

type testEnv struct {
	store   *taskstore.MemoryStore
	journal *recordingJournal
	handler *TaskHandler
	router  *mux.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := taskstore.NewMemoryStore()
	journal := &recordingJournal{}
	gate := planner.NewGate(store, journal, nil)
	gate.Now = func() time.Time { return handlerNow }

	h := NewTaskHandler(store, gate, journal)
	h.Now = func() time.Time { return handlerNow }

	auth := &Auth{Disabled: true}
	r := mux.NewRouter()
	r.Use(RequestIDMiddleware)
	r.HandleFunc("/tasks/stream", auth.AuthMiddleware(h.StreamTasksHandler)).Methods("GET")
	r.HandleFunc("/tasks", auth.AuthMiddleware(h.CreateTaskHandler)).Methods("POST")
	r.HandleFunc("/tasks", auth.AuthMiddleware(h.ListTasksHandler)).Methods("GET")
	r.HandleFunc("/tasks", auth.AuthMiddleware(h.DeleteAllTasksHandler)).Methods("DELETE")
	r.HandleFunc("/tasks/{id}", auth.AuthMiddleware(h.GetTaskHandler)).Methods("GET")
	r.HandleFunc("/tasks/{id}", auth.AuthMiddleware(h.UpdateTaskHandler)).Methods("PATCH")
	r.HandleFunc("/tasks/{id}", auth.AuthMiddleware(h.DeleteTaskHandler)).Methods("DELETE")
	r.HandleFunc("/tasks/{id}/status", auth.AuthMiddleware(h.ChangeStatusHandler)).Methods("POST")
	r.HandleFunc("/tasks/{id}/drop", auth.AuthMiddleware(h.DropTaskHandler)).Methods("POST")
	r.HandleFunc("/tasks/{id}/history", auth.AuthMiddleware(h.TaskHistoryHandler)).Methods("GET")
	r.HandleFunc("/board/drop-target", auth.AuthMiddleware(h.DropTargetHandler)).Methods("POST")
	r.HandleFunc("/calendar/month", auth.AuthMiddleware(h.MonthGridHandler)).Methods("GET")
	r.HandleFunc("/calendar/week", auth.AuthMiddleware(h.WeekGridHandler)).Methods("GET")
	r.HandleFunc("/calendar/day/{date}/board", auth.AuthMiddleware(h.DayBoardHandler)).Methods("GET")
	r.HandleFunc("/stats", auth.AuthMiddleware(h.StatsHandler)).Methods("GET")

	return &testEnv{store: store, journal: journal, handler: h, router: r}
}

func (e *testEnv) do(t *testing.T, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// seed stores a task directly and returns its id.
func (e *testEnv) seed(t *testing.T, task models.Task) string {
	t.Helper()
	if task.UserID == "" {
		task.UserID = "u1"
	}
	id, err := e.store.Create(context.Background(), task)
	require.NoError(t, err)
	return id
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

type stubVerifier struct {
	uid string
	err error
}

func (s stubVerifier) VerifyUserToken(_ context.Context, token string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if token != "good-token" {
		return "", errors.New("bad token")
	}
	return s.uid, nil
}

// flakyStore fails every Update once failFrom updates have been attempted.
type flakyStore struct {
	*taskstore.MemoryStore
	failFrom int
	updates  int
}

func (s *flakyStore) Update(ctx context.Context, id string, patch models.TaskPatch) error {
	s.updates++
	if s.updates >= s.failFrom {
		return errors.New("firestore unavailable")
	}
	return s.MemoryStore.Update(ctx, id, patch)
}

// useStore swaps the store behind both the handler and its gate.
func (e *testEnv) useStore(s TaskStore) {
	e.handler.Store = s
	e.handler.Gate.Store = s
}

// brokenFeedStore hands each subscriber's error callback to the test.
type brokenFeedStore struct {
	*taskstore.MemoryStore
	onErr chan func(error)
}

func (s *brokenFeedStore) Subscribe(ctx context.Context, userID string, fn func([]models.Task), onErr func(error)) (func(), error) {
	stop, err := s.MemoryStore.Subscribe(ctx, userID, fn, nil)
	s.onErr <- onErr
	return stop, err
}
