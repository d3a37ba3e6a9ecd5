package inspect

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/eventmanager/pkg/tracker"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultTracerName = "eventmanager"

// Option configures the handler.
type Option func(*handler)

// WithLogger sets the logger. Default: slog.Default() with component=inspect.
func WithLogger(logger *slog.Logger) Option {
	return func(h *handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithGatherer enables GET /metrics backed by g.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(h *handler) {
		h.gatherer = g
	}
}

// WithTracerName sets the tracer name (default: "eventmanager").
func WithTracerName(name string) Option {
	return func(h *handler) {
		h.tracerName = name
	}
}

// Listener is the JSON form of a tracker.Registration.
type Listener struct {
	ID     uint64 `json:"id"`
	Target string `json:"target"`
	Event  string `json:"event"`
	Name   string `json:"name,omitempty"`
}

type errorBody struct {
	Error    string `json:"error"`
	Residual *int   `json:"residual,omitempty"`
}

type handler struct {
	tracker    *tracker.Tracker
	logger     *slog.Logger
	gatherer   prometheus.Gatherer
	tracerName string
	tracer     trace.Tracer
}

// NewHandler returns the inspect routes for t.
func NewHandler(t *tracker.Tracker, opts ...Option) http.Handler {
	h := &handler{
		tracker:    t,
		logger:     slog.Default().With("component", "inspect"),
		tracerName: defaultTracerName,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.tracer = otel.Tracer(h.tracerName)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(tracing(h.tracer))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Route("/listeners", func(r chi.Router) {
		r.Get("/", h.list)
		r.Delete("/", h.removeAll)
		r.Get("/named/{name}", h.listNamed)
		r.Delete("/named/{name}", h.removeNamed)
	})
	if h.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, toListeners(h.tracker.All()))
}

func (h *handler) listNamed(w http.ResponseWriter, r *http.Request) {
	records, err := h.tracker.Named(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toListeners(records))
}

func (h *handler) removeNamed(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.tracker.RemoveNamed(name); err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("removed listeners by name", "name", name)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) removeAll(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.RemoveAll(); err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("removed all listeners")
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Error: err.Error()}

	var re *tracker.RegistrationError
	switch {
	case tracker.IsValidation(err):
		status = http.StatusBadRequest
	case errors.As(err, &re):
		residual := h.tracker.Len()
		body.Residual = &residual
		h.logger.Error("tracker operation failed", "op", re.Op, "error", err, "residual", residual)
	default:
		h.logger.Error("tracker operation failed", "error", err)
	}
	h.writeJSON(w, status, body)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func toListeners(records []tracker.Registration) []Listener {
	out := make([]Listener, 0, len(records))
	for _, r := range records {
		out = append(out, Listener{
			ID:     r.ID,
			Target: fmt.Sprint(r.Target),
			Event:  r.EventType,
			Name:   r.Name,
		})
	}
	return out
}
