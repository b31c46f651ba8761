package router_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/drblury/pingcheck/router"
)

const probeDocument = `{
	"openapi": "3.0.3",
	"info": {"title": "pingcheck", "version": "1"},
	"paths": {"/probe": {"get": {"responses": {"200": {"description": "report"}}}}}
}`

func ExampleNew() {
	doc, err := openapi3.NewLoader().LoadFromData([]byte(probeDocument))
	if err != nil {
		fmt.Println(err)
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /probe", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true,"driver":"postgres"}`)
	})

	cfg := router.DefaultConfig()
	cfg.Timeout = 2 * time.Second
	cfg.CORS.Origins = []string{"https://status.example.com"}

	handler := router.New(mux,
		router.WithConfig(cfg),
		router.WithLogger(nil),
		router.WithSwagger(doc),
	)

	for _, path := range []string{"/probe", "/debug/vars"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Origin", "https://status.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		fmt.Println(path, rec.Code, rec.Header().Get("Content-Type"))
		if rec.Code == http.StatusOK {
			fmt.Println(rec.Header().Get("Access-Control-Allow-Origin"), strings.TrimSpace(rec.Body.String()))
		}
	}

	// Output:
	// /probe 200 application/json
	// https://status.example.com {"ok":true,"driver":"postgres"}
	// /debug/vars 404 application/problem+json
}
