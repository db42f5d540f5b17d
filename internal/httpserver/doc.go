package httpserver

// Package httpserver serves the health probe and Prometheus metrics endpoint.
// Hosted platforms ping /healthz to keep the process alive.
