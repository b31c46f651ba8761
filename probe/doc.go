// Package probe converts ping functions and HTTP dependencies into
// readiness checks. The database liveness probe itself lives in
// connectivity; wrap (*connectivity.Prober).Check with NewPingProbe to
// mount it. See ExampleNewPingProbe and ExampleNewHTTPProbe_withOptions.
package probe
