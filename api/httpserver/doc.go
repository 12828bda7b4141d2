// Package httpserver provides the shared HTTP server shell for ledger
// deployments: health endpoints, drain-aware readiness for load
// balancers, request pacing, an optional Prometheus listener, and
// graceful shutdown.
//
// Components plug in through RouteRegistrar; the shell contributes
// /livez, /readyz, /drain and /undrain plus standard middleware, so
// every binary built on it behaves identically in operation.
package httpserver
