// Package router wraps http.ServeMux with OpenAPI request validation, CORS,
// per-request timeouts, and an access log. Probe and scrape routes are logged
// at debug level so polling does not flood the log.
package router
