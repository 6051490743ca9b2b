package routes

import (
	"net/http"

	"github.com/zatekoja/wardtracker/internal/api/handlers"
	"github.com/zatekoja/wardtracker/internal/api/middleware"
	"github.com/zatekoja/wardtracker/internal/infrastructure/observability"
)

// route binds a ServeMux pattern ("METHOD /path/{param}") to a handler
type route struct {
	method  string
	path    string
	handler http.HandlerFunc
}

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	patientHandler   *handlers.PatientHandler
	noteHandler      *handlers.NoteHandler
	specialtyHandler *handlers.SpecialtyHandler
	healthHandler    *handlers.HealthHandler

	basePath       string
	allowedOrigins []string
	metrics        *observability.Metrics
}

// Options configures the router's outer surface
type Options struct {
	BasePath       string
	AllowedOrigins []string
	Metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	patientHandler *handlers.PatientHandler,
	noteHandler *handlers.NoteHandler,
	specialtyHandler *handlers.SpecialtyHandler,
	healthHandler *handlers.HealthHandler,
	opts Options,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		patientHandler:   patientHandler,
		noteHandler:      noteHandler,
		specialtyHandler: specialtyHandler,
		healthHandler:    healthHandler,
		basePath:         opts.BasePath,
		allowedOrigins:   opts.AllowedOrigins,
		metrics:          opts.Metrics,
	}
}

func (r *Router) routes() []route {
	table := []route{
		{http.MethodGet, "/patients", r.patientHandler.ListPatients},
		{http.MethodPost, "/patients", r.patientHandler.CreatePatient},
		{http.MethodPut, "/patients/{mrn}", r.patientHandler.UpdatePatient},
		{http.MethodGet, "/patients/{mrn}/notes", r.patientHandler.ListPatientNotes},
		{http.MethodPost, "/patients/{mrn}/discharge", r.patientHandler.DischargePatient},
		{http.MethodPost, "/notes", r.noteHandler.CreateNote},
		{http.MethodGet, "/specialties", r.specialtyHandler.ListSpecialties},
	}
	if r.healthHandler != nil {
		table = append(table, route{http.MethodGet, "/health", r.healthHandler.Health})
	}
	return table
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	for _, rt := range r.routes() {
		r.mux.HandleFunc(rt.method+" "+r.basePath+rt.path, rt.handler)
	}

	// Anything unmatched, including a known path with the wrong method.
	r.mux.HandleFunc("/", handlers.NotFound)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(handler)
	handler = middleware.Observability(r.metrics)(handler)
	handler = middleware.Compression(handler)
	handler = middleware.CORS(r.allowedOrigins)(handler)

	return handler
}
