package responder

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/drblury/pingcheck/jsonutil"
)

// MaxRequestBody bounds the JSON bodies ReadRequestBody accepts.
const MaxRequestBody = 1 << 20

// ReadRequestBody decodes a JSON request body into v. An absent body leaves v
// untouched and succeeds when optional is set. Malformed content is answered
// with HTTP 400 and false is returned.
func (r *Responder) ReadRequestBody(w http.ResponseWriter, req *http.Request, v any, optional bool) bool {
	err := decodeRequestBody(w, req, v)
	if err == nil || (optional && errors.Is(err, errEmptyBody)) {
		return true
	}
	r.HandleBadRequestError(w, req, err, "failed to parse request body")
	return false
}

var errEmptyBody = errors.New("request body is required")

func decodeRequestBody(w http.ResponseWriter, req *http.Request, v any) error {
	if req == nil || req.Body == nil || req.Body == http.NoBody {
		return errEmptyBody
	}
	body := io.Reader(req.Body)
	if w != nil {
		body = http.MaxBytesReader(w, req.Body, MaxRequestBody)
	}
	if err := jsonutil.Decode(body, v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func requestInstance(req *http.Request) string {
	if req == nil || req.URL == nil {
		return ""
	}
	return req.URL.RequestURI()
}

func requestContext(req *http.Request) context.Context {
	if req == nil {
		return context.Background()
	}
	return req.Context()
}
