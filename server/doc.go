// Package server provides the HTTP server: a Gin engine served over h2c
// with a standard middleware stack (recovery, request-ID, CORS, request
// logging) and default health/metrics endpoints. The server implements
// component.Component so it participates in ordered startup/shutdown.
package server
