package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/shamba-labs/mazao/internal/assistant"
	"github.com/shamba-labs/mazao/internal/auth"
	"github.com/shamba-labs/mazao/internal/store"
)

type UserStore interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*store.User, error)
	UserByUsername(ctx context.Context, username string) (*store.User, error)
	UserExists(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
}

type InventoryStore interface {
	ListInventory(ctx context.Context) ([]store.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, it store.InventoryItem) (*store.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, id uuid.UUID, it store.InventoryItem) (*store.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id uuid.UUID) error
}

type TaskStore interface {
	ListTasks(ctx context.Context) ([]store.Task, error)
	CreateTask(ctx context.Context, t store.Task) (*store.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, t store.Task) (*store.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

type AssistantService interface {
	Chat(ctx context.Context, userID, message string) (*assistant.ChatResult, error)
	History(ctx context.Context, userID string) (*assistant.History, error)
}

type TokenService interface {
	Issue(userID uuid.UUID, username, email string) (string, error)
	Verify(raw string) (auth.Claims, error)
}

type Deps struct {
	Users     UserStore
	Inventory InventoryStore
	Tasks     TaskStore
	Assistant AssistantService
	Tokens    TokenService
	Dev       bool
	Logger    *slog.Logger
}

type Server struct {
	router *chi.Mux
	port   int
	deps   Deps
}

func NewServer(port int, deps Deps) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		deps:   deps,
	}

	router.Get("/health", s.health)

	router.Route("/api/users", func(r chi.Router) {
		r.Post("/signup", s.signup)
		r.Post("/signin", s.signin)
	})

	router.Route("/api/inventory", func(r chi.Router) {
		r.Get("/", s.listInventory)
		r.Post("/", s.createInventoryItem)
		r.Put("/{id}", s.updateInventoryItem)
		r.Delete("/{id}", s.deleteInventoryItem)
	})

	router.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", s.listTasks)
		r.Post("/", s.createTask)
		r.Put("/{id}", s.updateTask)
		r.Delete("/{id}", s.deleteTask)
	})

	router.Route("/api/assistant", func(r chi.Router) {
		r.Use(RequireAuth(deps.Tokens))
		r.Post("/chat", s.chat)
		r.Get("/conversation", s.conversation)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.deps.Logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
