package connectivity

import (
	"context"
	mathrand "math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Response is the liveness payload returned by the server, e.g. {"ok": 1}.
type Response map[string]any

// Connector opens a Session against the server addressed by uri. The
// timeout bounds server selection and connection establishment.
type Connector interface {
	Driver() string
	Connect(ctx context.Context, uri string, timeout time.Duration) (Session, error)
}

// Session is a connection handle scoped to a single probe run.
type Session interface {
	Ping(ctx context.Context) (Response, error)
	Close(ctx context.Context) error
}

// classifyingConnector is implemented by connectors that understand their
// driver's error types.
type classifyingConnector interface {
	Classify(err error) *ProbeError
}

// ConnectorFor picks a Connector from the URI scheme. Keyword/value DSNs
// ("host=... user=...") are treated as PostgreSQL.
func ConnectorFor(uri string) (Connector, error) {
	trimmed := strings.TrimSpace(uri)
	if trimmed == "" {
		return nil, configurationError("connection URI is empty")
	}

	scheme, _, found := strings.Cut(trimmed, "://")
	if !found {
		if strings.Contains(trimmed, "host=") || strings.Contains(trimmed, "dbname=") {
			return PostgresConnector{}, nil
		}
		return nil, configurationError("connection URI %q has no scheme", Redact(trimmed))
	}

	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		return MongoConnector{}, nil
	case "postgres", "postgresql":
		return PostgresConnector{}, nil
	default:
		return nil, configurationError("unsupported connection URI scheme %q", scheme)
	}
}

var (
	keywordPassword = regexp.MustCompile(`(?i)(password\s*=\s*)('[^']*'|\S+)`)
	queryPassword   = regexp.MustCompile(`(?i)([?&](?:ssl)?password=)[^&#]*`)
)

// Redact hides the passwords of a connection URI so it can be logged: the
// userinfo password and the password and sslpassword query parameters.
func Redact(uri string) string {
	head, rest, found := strings.Cut(uri, "://")
	if !found {
		return keywordPassword.ReplaceAllString(uri, "${1}xxxxx")
	}

	end := strings.IndexAny(rest, "/?#")
	if end < 0 {
		end = len(rest)
	}
	authority, tail := rest[:end], queryPassword.ReplaceAllString(rest[end:], "${1}xxxxx")

	at := strings.LastIndex(authority, "@")
	if at < 0 {
		return head + "://" + authority + tail
	}

	userinfo := authority[:at]
	if user, _, hasPassword := strings.Cut(userinfo, ":"); hasPassword {
		userinfo = user + ":xxxxx"
	}
	return head + "://" + userinfo + "@" + authority[at+1:] + tail
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

func newRunID(now time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}
