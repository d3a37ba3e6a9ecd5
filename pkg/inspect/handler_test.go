package inspect

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/eventmanager/pkg/dom"
	"github.com/vango-dev/eventmanager/pkg/metrics"
	"github.com/vango-dev/eventmanager/pkg/tracker"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func setup(t *testing.T, opts ...Option) (*tracker.Tracker, http.Handler) {
	t.Helper()
	tr := tracker.New(tracker.WithLogger(discard))
	return tr, NewHandler(tr, append([]Option{WithLogger(discard)}, opts...)...)
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeListeners(t *testing.T, rec *httptest.ResponseRecorder) []Listener {
	t.Helper()
	var out []Listener
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHandler_ListAndNamed(t *testing.T) {
	tr, h := setup(t)
	btn := dom.NewElement("button", "save")
	_ = tr.AddNamed(btn, dom.Click, tracker.NewCallback(func(tracker.Event) {}), "save")
	_ = tr.Add(btn, dom.MouseEnter, tracker.NewCallback(func(tracker.Event) {}))

	rec := do(t, h, http.MethodGet, "/listeners")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /listeners status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q", ct)
	}
	all := decodeListeners(t, rec)
	if len(all) != 2 || all[0].Target != "button#save" || all[0].Event != dom.Click || all[0].Name != "save" {
		t.Fatalf("listeners = %+v", all)
	}

	named := decodeListeners(t, do(t, h, http.MethodGet, "/listeners/named/save"))
	if len(named) != 1 || named[0].ID != all[0].ID {
		t.Fatalf("named = %+v", named)
	}

	rec = do(t, h, http.MethodGet, "/listeners/named/missing")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("GET missing = %d %q, want 200 []", rec.Code, rec.Body.String())
	}
}

func TestHandler_RemoveNamed(t *testing.T) {
	tr, h := setup(t)
	btn := dom.NewElement("button", "save")
	_ = tr.AddNamed(btn, dom.Click, tracker.NewCallback(func(tracker.Event) {}), "save")
	_ = tr.Add(btn, dom.MouseEnter, tracker.NewCallback(func(tracker.Event) {}))

	if rec := do(t, h, http.MethodDelete, "/listeners/named/save"); rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE named status = %d", rec.Code)
	}
	if tr.Len() != 1 || btn.ListenerCount(dom.Click) != 0 {
		t.Fatalf("records=%d click listeners=%d", tr.Len(), btn.ListenerCount(dom.Click))
	}

	// Missing names are a no-op.
	if rec := do(t, h, http.MethodDelete, "/listeners/named/save"); rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE missing status = %d", rec.Code)
	}
}

func TestHandler_RemoveAll(t *testing.T) {
	tr, h := setup(t)
	a, b := dom.NewElement("div", "a"), dom.NewElement("div", "b")
	_ = tr.Add(a, dom.Click, tracker.NewCallback(func(tracker.Event) {}))
	_ = tr.Add(b, dom.Click, tracker.NewCallback(func(tracker.Event) {}))

	if rec := do(t, h, http.MethodDelete, "/listeners"); rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE /listeners status = %d", rec.Code)
	}
	if tr.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", tr.Len())
	}
}

func TestHandler_RemoveAll_PartialFailure(t *testing.T) {
	tr, h := setup(t)
	a, gone := dom.NewElement("div", "a"), dom.NewElement("div", "gone")
	_ = tr.Add(a, dom.Click, tracker.NewCallback(func(tracker.Event) {}))
	_ = tr.Add(gone, dom.Click, tracker.NewCallback(func(tracker.Event) {}))
	gone.Destroy()

	rec := do(t, h, http.MethodDelete, "/listeners")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Residual == nil || *body.Residual != 1 {
		t.Fatalf("residual = %v, want 1", body.Residual)
	}
	if !strings.Contains(body.Error, "element destroyed") {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestHandler_WriteError_Validation(t *testing.T) {
	tr := tracker.New(tracker.WithLogger(discard))
	h := &handler{tracker: tr, logger: discard}
	_, err := tr.Named("")

	rec := httptest.NewRecorder()
	h.writeError(rec, err)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandler_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	tr := tracker.New(tracker.WithLogger(discard), tracker.WithObserver(metrics.New(metrics.WithRegistry(reg))))
	h := NewHandler(tr, WithLogger(discard), WithGatherer(reg), WithTracerName("test"))
	_ = tr.Add(dom.NewElement("a", "x"), dom.Click, tracker.NewCallback(func(tracker.Event) {}))

	rec := do(t, h, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "eventmanager_tracked_listeners 1") {
		t.Fatalf("metrics body missing gauge:\n%s", rec.Body.String())
	}
}

func TestHandler_MetricsDisabledWithoutGatherer(t *testing.T) {
	_, h := setup(t)
	if rec := do(t, h, http.MethodGet, "/metrics"); rec.Code != http.StatusNotFound {
		t.Fatalf("GET /metrics status = %d, want 404", rec.Code)
	}
}

func TestHandler_Healthz(t *testing.T) {
	_, h := setup(t)
	rec := do(t, h, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("GET /healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestTracing_PassesThroughStatus(t *testing.T) {
	mw := tracing(noop.NewTracerProvider().Tracer("test"))
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", rec.Code)
	}
}

// recordingSpan captures the calls the tracing middleware makes.
type recordingSpan struct {
	trace.Span
	name  string
	code  codes.Code
	attrs map[attribute.Key]attribute.Value
	ended bool
}

func (s *recordingSpan) SetName(name string) { s.name = name }

func (s *recordingSpan) SetStatus(code codes.Code, _ string) { s.code = code }

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordingSpan) End(...trace.SpanEndOption) { s.ended = true }

type recordingTracer struct {
	trace.Tracer
	spans []*recordingSpan
}

func newRecordingTracer() *recordingTracer {
	return &recordingTracer{Tracer: noop.NewTracerProvider().Tracer("test")}
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	ctx, base := r.Tracer.Start(ctx, name, opts...)
	span := &recordingSpan{
		Span:  base,
		name:  name,
		attrs: make(map[attribute.Key]attribute.Value),
	}
	cfg := trace.NewSpanStartConfig(opts...)
	for _, a := range cfg.Attributes() {
		span.attrs[a.Key] = a.Value
	}
	r.spans = append(r.spans, span)
	return trace.ContextWithSpan(ctx, span), span
}

func TestTracing_RecordsRouteAndStatus(t *testing.T) {
	rt := newRecordingTracer()
	r := chi.NewRouter()
	r.Use(tracing(rt))
	r.Get("/listeners/named/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	})
	r.Delete("/listeners", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	do(t, r, http.MethodGet, "/listeners/named/save")
	do(t, r, http.MethodDelete, "/listeners")

	if len(rt.spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(rt.spans))
	}

	ok := rt.spans[0]
	if ok.name != "inspect GET /listeners/named/{name}" {
		t.Fatalf("span name = %q", ok.name)
	}
	if got := ok.attrs["http.route"].AsString(); got != "/listeners/named/{name}" {
		t.Fatalf("http.route = %q", got)
	}
	if got := ok.attrs["http.target"].AsString(); got != "/listeners/named/save" {
		t.Fatalf("http.target = %q", got)
	}
	if got := ok.attrs["http.status_code"].AsInt64(); got != http.StatusOK {
		t.Fatalf("http.status_code = %d, want 200", got)
	}
	if ok.code != codes.Unset || !ok.ended {
		t.Fatalf("span status = %v ended = %v, want Unset and ended", ok.code, ok.ended)
	}

	failed := rt.spans[1]
	if failed.name != "inspect DELETE /listeners" {
		t.Fatalf("span name = %q", failed.name)
	}
	if failed.code != codes.Error {
		t.Fatalf("span status = %v, want Error", failed.code)
	}
	if got := failed.attrs["http.status_code"].AsInt64(); got != http.StatusInternalServerError {
		t.Fatalf("http.status_code = %d, want 500", got)
	}
}
