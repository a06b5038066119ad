package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"statcalc/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// App represents the UI application
type App struct {
	router     *chi.Mux
	calculator *app.CalculatorService
	templates  *template.Template
	config     Config
}

// Config holds UI application configuration
type Config struct {
	Port          string
	StrictParsing bool
	UploadDir     string
	MaxUpload     int64
}

// NewApp creates a new UI application
func NewApp(config Config, calculator *app.CalculatorService) (*App, error) {
	if calculator == nil {
		return nil, fmt.Errorf("calculator is required")
	}
	if config.Port == "" {
		config.Port = "8081"
	}
	if config.MaxUpload <= 0 {
		config.MaxUpload = 16 << 20
	}

	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:     chi.NewRouter(),
		calculator: calculator,
		templates:  templates,
		config:     config,
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Timeout(30 * time.Second))
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Post("/calculate", a.handleCalculate)
	a.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start() error {
	addr := ":" + a.config.Port
	log.Printf("[UI] Starting statcalc UI server on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

// renderTemplate executes into the response, failing with 500 on template errors
func (a *App) renderTemplate(w http.ResponseWriter, status int, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		log.Printf("[UI] Template error for %s: %v", templateName, err)
	}
}
