// Package pingcheck answers one operational question: can this process reach
// its database right now? It connects, pings once, releases the connection,
// and reports the outcome without ever hanging past its timeout.
//
// # Packages
//
//   - connectivity: the probe itself. Drivers for MongoDB and PostgreSQL are
//     selected from the connection URI scheme; failures are classified into
//     a small set of kinds with the driver's error code attached.
//   - probe: adapters turning ping functions and HTTP endpoints into
//     readiness checks.
//   - responder, info, router: the HTTP surface of the dbprobed daemon,
//     including RFC 9457 problem documents that carry the failure kind.
//   - metrics: Prometheus counters fed by every probe run.
//   - buildconfig: the declarative frontend build configuration shipped
//     next to the service, with import alias resolution and Sass
//     deprecation suppression.
//   - config, logging, jsonutil: environment configuration, slog setup,
//     and the shared sonic codec.
//
// # Quick Start
//
//	prober := connectivity.New(os.Getenv("DATABASE_URL"),
//	    connectivity.WithTimeout(10*time.Second),
//	    connectivity.WithLogger(logger),
//	)
//	report := prober.Run(ctx)
//	_ = connectivity.WriteReport(os.Stdout, report, connectivity.FormatText)
//
// The same prober backs the daemon's readiness check through Prober.Check.
package pingcheck
