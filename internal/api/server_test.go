package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/shamba-labs/mazao/internal/assistant"
	"github.com/shamba-labs/mazao/internal/auth"
	"github.com/shamba-labs/mazao/internal/store"
)

type fakeUsers struct {
	users map[string]*store.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*store.User{}}
}

func (f *fakeUsers) CreateUser(ctx context.Context, username, email, passwordHash string) (*store.User, error) {
	u := &store.User{ID: uuid.New(), Username: username, Email: email, PasswordHash: passwordHash}
	f.users[username] = u
	return u, nil
}

func (f *fakeUsers) UserByUsername(ctx context.Context, username string) (*store.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) UserExists(ctx context.Context, username, email string) (bool, bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, false, nil
		}
		if u.Email == email {
			return false, true, nil
		}
	}
	return false, false, nil
}

type fakeInventory struct {
	items map[uuid.UUID]store.InventoryItem
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{items: map[uuid.UUID]store.InventoryItem{}}
}

func (f *fakeInventory) ListInventory(ctx context.Context) ([]store.InventoryItem, error) {
	items := []store.InventoryItem{}
	for _, it := range f.items {
		items = append(items, it)
	}
	return items, nil
}

func (f *fakeInventory) CreateInventoryItem(ctx context.Context, it store.InventoryItem) (*store.InventoryItem, error) {
	it.ID = uuid.New()
	f.items[it.ID] = it
	return &it, nil
}

func (f *fakeInventory) UpdateInventoryItem(ctx context.Context, id uuid.UUID, it store.InventoryItem) (*store.InventoryItem, error) {
	if _, ok := f.items[id]; !ok {
		return nil, store.ErrNotFound
	}
	it.ID = id
	f.items[id] = it
	return &it, nil
}

func (f *fakeInventory) DeleteInventoryItem(ctx context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

type fakeTasks struct {
	tasks map[uuid.UUID]store.Task
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{tasks: map[uuid.UUID]store.Task{}}
}

func (f *fakeTasks) ListTasks(ctx context.Context) ([]store.Task, error) {
	tasks := []store.Task{}
	for _, t := range f.tasks {
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (f *fakeTasks) CreateTask(ctx context.Context, t store.Task) (*store.Task, error) {
	t.ID = uuid.New()
	f.tasks[t.ID] = t
	return &t, nil
}

func (f *fakeTasks) UpdateTask(ctx context.Context, id uuid.UUID, t store.Task) (*store.Task, error) {
	if _, ok := f.tasks[id]; !ok {
		return nil, store.ErrNotFound
	}
	t.ID = id
	f.tasks[id] = t
	return &t, nil
}

func (f *fakeTasks) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

type fakeAssistant struct {
	chatResult *assistant.ChatResult
	chatErr    error
	history    *assistant.History
	historyErr error
	gotUserID  string
	gotMessage string
}

func (f *fakeAssistant) Chat(ctx context.Context, userID, message string) (*assistant.ChatResult, error) {
	f.gotUserID = userID
	f.gotMessage = message
	return f.chatResult, f.chatErr
}

func (f *fakeAssistant) History(ctx context.Context, userID string) (*assistant.History, error) {
	f.gotUserID = userID
	return f.history, f.historyErr
}

type testServer struct {
	*Server
	users     *fakeUsers
	inventory *fakeInventory
	tasks     *fakeTasks
	assistant *fakeAssistant
	tokens    *auth.Tokens
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		users:     newFakeUsers(),
		inventory: newFakeInventory(),
		tasks:     newFakeTasks(),
		assistant: &fakeAssistant{},
		tokens:    auth.NewTokens("test-secret"),
	}
	ts.Server = NewServer(8080, Deps{
		Users:     ts.users,
		Inventory: ts.inventory,
		Tasks:     ts.tasks,
		Assistant: ts.assistant,
		Tokens:    ts.tokens,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "GET", "/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "GET", "/nonexistent", "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestSignup_ValidationFailure(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/users/signup", `{"username":"ab","email":"bad","password":"123"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "Validation failed" {
		t.Errorf("expected validation message, got %v", body["message"])
	}
	if errs, ok := body["errors"].([]any); !ok || len(errs) != 3 {
		t.Errorf("expected 3 validation errors, got %v", body["errors"])
	}
}

func TestSignup_Success(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/users/signup", `{"username":"wanjiku","email":"Wanjiku@Example.com","password":"maize123"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["success"] != true {
		t.Error("expected success true")
	}
	if body["accessToken"] == "" || body["accessToken"] == nil {
		t.Error("expected an access token")
	}
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user object, got %v", body["user"])
	}
	if user["email"] != "wanjiku@example.com" {
		t.Errorf("expected lowercased email, got %v", user["email"])
	}

	// Token must be valid for the protected routes.
	raw, _ := body["accessToken"].(string)
	if _, err := ts.tokens.Verify(raw); err != nil {
		t.Errorf("issued token failed verification: %v", err)
	}
}

func TestSignup_Conflict(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, "POST", "/api/users/signup", `{"username":"wanjiku","email":"w@example.com","password":"maize123"}`, "")

	w := ts.do(t, "POST", "/api/users/signup", `{"username":"wanjiku","email":"other@example.com","password":"maize123"}`, "")
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["message"] != "Username is not available" {
		t.Errorf("expected username conflict message, got %v", body["message"])
	}
}

func TestSignin_Success(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, "POST", "/api/users/signup", `{"username":"wanjiku","email":"w@example.com","password":"maize123"}`, "")

	w := ts.do(t, "POST", "/api/users/signin", `{"username":"wanjiku","password":"maize123"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["message"] != "Login successful" {
		t.Errorf("unexpected message %v", body["message"])
	}
}

func TestSignin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, "POST", "/api/users/signup", `{"username":"wanjiku","email":"w@example.com","password":"maize123"}`, "")

	w := ts.do(t, "POST", "/api/users/signin", `{"username":"wanjiku","password":"wrong-pass"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestSignin_UnknownUser(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/users/signin", `{"username":"nobody","password":"whatever"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["message"] != "Invalid credentials" {
		t.Errorf("expected invalid credentials message, got %v", body["message"])
	}
}

func TestTasks_CreateValidation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/tasks/", `{"description":"no name or due date"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["message"] != "Validation Error" {
		t.Errorf("expected validation error, got %v", body["message"])
	}
}

func TestTasks_UpdateMissing(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "PUT", "/api/tasks/"+uuid.New().String(), `{"name":"x","dueDate":"2026-09-01"}`, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestTasks_InvalidID(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "PUT", "/api/tasks/not-a-uuid", `{"name":"x","dueDate":"2026-09-01"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["message"] != "Invalid task ID format" {
		t.Errorf("expected invalid id message, got %v", body["message"])
	}
}

func TestInventory_CreateAndDelete(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/inventory/", `{"name":"DAP fertilizer","quantity":50,"unit":"kg","expirationDate":"2027-01-01T00:00:00Z"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	id, _ := body["_id"].(string)
	if id == "" {
		t.Fatal("expected created item to carry an id")
	}

	w = ts.do(t, "DELETE", "/api/inventory/"+id, "", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
}

func TestInventory_CreateMissingFields(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/inventory/", `{"quantity":10}`, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestRequireAuth_MissingToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/assistant/chat", `{"message":"hi"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "User authentication required" {
		t.Errorf("expected auth error, got %v", body["error"])
	}
}

func TestRequireAuth_BadToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/assistant/chat", `{"message":"hi"}`, "garbage-token")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_PassesVerifiedUserID(t *testing.T) {
	ts := newTestServer(t)
	userID := uuid.New()
	ts.assistant.chatResult = &assistant.ChatResult{Text: "ok", MessageID: uuid.New()}

	token, err := ts.tokens.Issue(userID, "wanjiku", "w@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	w := ts.do(t, "POST", "/api/assistant/chat", `{"message":"hi"}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ts.assistant.gotUserID != userID.String() {
		t.Errorf("expected verified user id %s, got %q", userID, ts.assistant.gotUserID)
	}
}

var errBoom = errors.New("boom")
