package responder

import (
	mathrand "math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestIDHeader carries a caller supplied correlation id. When present it
// becomes the problem document's traceId.
const RequestIDHeader = "X-Request-Id"

const maxRequestIDLen = 128

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

func traceIDFor(req *http.Request) string {
	if req != nil {
		if id := strings.TrimSpace(req.Header.Get(RequestIDHeader)); id != "" && len(id) <= maxRequestIDLen {
			return id
		}
	}
	return newTraceID()
}

func newTraceID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
