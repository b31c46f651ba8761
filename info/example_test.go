package info_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/drblury/pingcheck/info"
	"github.com/drblury/pingcheck/probe"
)

func ExampleInfoHandler_readiness() {
	handler := info.NewInfoHandler(
		info.WithInfoProvider(func() any {
			return map[string]string{"version": "1.2.3"}
		}),
		info.WithReadinessChecks(
			info.NamedCheck("database", probe.NewPingProbe("database", func(ctx context.Context) error {
				return nil
			})),
		),
	)

	readyRec := httptest.NewRecorder()
	handler.GetReadyz(readyRec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	fmt.Println(readyRec.Code)
	fmt.Println(strings.TrimSpace(readyRec.Body.String()))

	versionRec := httptest.NewRecorder()
	handler.GetVersion(versionRec, httptest.NewRequest(http.MethodGet, "/version", nil))
	fmt.Println(strings.TrimSpace(versionRec.Body.String()))

	// Output:
	// 200
	// {"status":"ready","checks":{"database":"ok"}}
	// {"version":"1.2.3"}
}
