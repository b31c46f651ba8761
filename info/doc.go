// Package info serves the operational endpoints of the probe daemon: a
// static status document, liveness and readiness checks, build metadata,
// and the OpenAPI document describing the HTTP surface.
//
// Readiness checks are named so a failing dependency can be identified from
// the response alone. See ExampleInfoHandler_readiness.
package info
