// Package httpapi exposes the catalog over HTTP for the web front end:
// CRUD for books, members and transactions, dashboard statistics, and a
// shared-credential login that gates the mutating routes with a bearer
// token.
package httpapi

import (
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/diwanlib/circulate/internal/config"
	"github.com/diwanlib/circulate/internal/store"
)

// Server is the HTTP surface over a Store.
type Server struct {
	app      *fiber.App
	store    store.Store
	cfg      config.ServerConfig
	validate *validator.Validate
	now      func() time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithNow injects the time source. Default is the system clock.
func WithNow(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a Server and registers its routes.
func New(st store.Store, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		store:    st,
		cfg:      cfg,
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		JSONEncoder:           jsoniter.Marshal,
		JSONDecoder:           jsoniter.Unmarshal,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := s.app.Group("/api")
	api.Post("/login", s.login)

	api.Use(s.requireToken)
	api.Get("/books", s.listBooks)
	api.Post("/books", s.createBook)
	api.Delete("/books/:id", s.deleteBook)
	api.Get("/members", s.listMembers)
	api.Post("/members", s.createMember)
	api.Get("/transactions", s.listTransactions)
	api.Post("/transactions", s.createTransaction)
	api.Delete("/transactions", s.clearTransactions)
	api.Get("/stats", s.stats)
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until the listener fails or Shutdown is called.
func (s *Server) Listen(addr string) error {
	slog.Info("http listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// errorHandler renders every error as a JSON body so the front end never
// has to parse HTML error pages.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if e, ok := err.(*fiber.Error); ok {
		fe = e
		code = e.Code
	}
	msg := err.Error()
	if fe == nil && code == fiber.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "error", err)
		msg = "internal error"
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
