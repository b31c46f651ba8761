package info

import (
	"net/http"
)

// GetStatus returns a static health document for lightweight diagnostics.
func (ih *InfoHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ih.respondProbe(w, r, http.StatusOK, "HEALTHY", nil)
}

// GetHealthz runs the liveness checks.
func (ih *InfoHandler) GetHealthz(w http.ResponseWriter, r *http.Request) {
	checks, err := ih.runChecks(r.Context(), ih.livenessChecks)
	if err != nil {
		ih.HandleServiceUnavailableError(w, r, err, "liveness probe failed")
		return
	}
	ih.respondProbe(w, r, http.StatusOK, "ok", checks)
}

// GetReadyz runs the readiness checks. A failure answers 503 with a problem
// document whose checks member lists every outcome.
func (ih *InfoHandler) GetReadyz(w http.ResponseWriter, r *http.Request) {
	checks, err := ih.runChecks(r.Context(), ih.readinessChecks)
	if err != nil {
		ih.HandleServiceUnavailableError(w, r, err, "readiness probe failed")
		return
	}
	ih.respondProbe(w, r, http.StatusOK, "ready", checks)
}

// GetVersion returns the payload of the configured InfoProvider.
func (ih *InfoHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	payload := ih.infoProvider()
	if payload == nil {
		payload = map[string]string{}
	}
	ih.RespondWithJSON(w, r, http.StatusOK, payload)
}

// GetOpenAPIJSON writes the OpenAPI document.
func (ih *InfoHandler) GetOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := ih.documentProvider()
	if err != nil {
		ih.HandleInternalServerError(w, r, err, "failed to load openapi document")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(doc); err != nil {
		ih.Logger().Error("failed to write openapi document", "error", err)
	}
}

// Register mounts the endpoints on mux below prefix.
func (ih *InfoHandler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/status", ih.GetStatus)
	mux.HandleFunc("GET "+prefix+"/healthz", ih.GetHealthz)
	mux.HandleFunc("GET "+prefix+"/readyz", ih.GetReadyz)
	mux.HandleFunc("GET "+prefix+"/version", ih.GetVersion)
	mux.HandleFunc("GET "+prefix+"/openapi.json", ih.GetOpenAPIJSON)
}
