// Package inspect serves a tracker over HTTP for debugging listener leaks.
//
// Routes (relative to where the handler is mounted):
//
//	GET    /listeners              all tracked registrations
//	DELETE /listeners              remove every tracked listener
//	GET    /listeners/named/{name} registrations with a name
//	DELETE /listeners/named/{name} remove registrations with a name
//	GET    /healthz                liveness
//	GET    /metrics                Prometheus exposition (WithGatherer)
//
// Each request is traced with the global OpenTelemetry tracer provider.
//
//	r := chi.NewRouter()
//	r.Mount("/debug", inspect.NewHandler(t, inspect.WithGatherer(prometheus.DefaultGatherer)))
package inspect
