// Package connectivity runs a single database liveness probe: open a
// connection, ping the server, release the connection, and report.
//
// A Prober makes exactly one attempt per Run. There are no retries and no
// polling. Connect and ping share one deadline (the probe timeout), so an
// unreachable server produces a timeout report instead of a hang. The
// acquired Session is always closed, on success and on failure, using a
// separate bounded context so an expired run deadline cannot skip release.
//
// Failures never escape as panics or bare driver errors. They are
// normalised into a *ProbeError carrying a Kind, the driver's error Code
// when one exists, and a non-empty Message.
//
// The driver is chosen from the URI scheme (see ConnectorFor). MongoDB is
// probed with the admin "ping" command; PostgreSQL with the pgx ping.
// See ExampleProber_Run for a runnable wiring with a stub connector.
package connectivity
