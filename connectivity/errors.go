package connectivity

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind groups probe failures into a small, driver independent taxonomy.
type Kind string

const (
	KindConfiguration  Kind = "configuration"
	KindTimeout        Kind = "timeout"
	KindNetwork        Kind = "network"
	KindServer         Kind = "server"
	KindAuthentication Kind = "authentication"
	KindCanceled       Kind = "canceled"
	KindUnknown        Kind = "unknown"
)

// ProbeError is the structured failure reported by a probe run.
type ProbeError struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *ProbeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s error (code %s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// ErrorKind exposes the kind to HTTP problem renderers.
func (e *ProbeError) ErrorKind() string {
	return string(e.Kind)
}

// ErrorCode exposes the driver code to HTTP problem renderers.
func (e *ProbeError) ErrorCode() string {
	return e.Code
}

// Classifier maps a driver specific error into a ProbeError. It returns nil
// for errors it does not recognise.
type Classifier func(err error) *ProbeError

func newProbeError(kind Kind, code string, err error) *ProbeError {
	var msg string
	if err != nil {
		msg = strings.TrimSpace(err.Error())
	}
	if msg == "" {
		msg = fmt.Sprintf("%s failure without diagnostic message", kind)
	}
	return &ProbeError{Kind: kind, Code: code, Message: msg, Err: err}
}

func configurationError(format string, args ...any) *ProbeError {
	return newProbeError(KindConfiguration, "", fmt.Errorf(format, args...))
}

// Classify normalises err. Driver classifiers run first, then context and
// network errors are recognised. Anything else is KindUnknown.
func Classify(err error, classifiers ...Classifier) *ProbeError {
	if err == nil {
		return nil
	}

	var probeErr *ProbeError
	if errors.As(err, &probeErr) {
		return probeErr
	}

	for _, classify := range classifiers {
		if classify == nil {
			continue
		}
		if classified := classify(err); classified != nil {
			return classified
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return newProbeError(KindTimeout, "", err)
	case errors.Is(err, context.Canceled):
		return newProbeError(KindCanceled, "", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return newProbeError(KindTimeout, "", err)
		}
		return newProbeError(KindNetwork, "", err)
	}

	return newProbeError(KindUnknown, "", err)
}
