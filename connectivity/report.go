package connectivity

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/drblury/pingcheck/jsonutil"
)

// Output formats accepted by WriteReport.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Report is the outcome of a single probe run.
type Report struct {
	RunID      string        `json:"runId"`
	Driver     string        `json:"driver,omitempty"`
	Target     string        `json:"target"`
	OK         bool          `json:"ok"`
	Response   Response      `json:"response,omitempty"`
	Error      *ProbeError   `json:"error,omitempty"`
	CloseError string        `json:"closeError,omitempty"`
	Latency    time.Duration `json:"-"`
	LatencyMS  float64       `json:"latencyMs"`
	CheckedAt  time.Time     `json:"checkedAt"`
}

// WriteReport renders r for humans (FormatText) or machines (FormatJSON).
func WriteReport(w io.Writer, r Report, format string) error {
	switch format {
	case "", FormatText:
		return writeText(w, r)
	case FormatJSON:
		return jsonutil.Encode(w, r)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

func writeText(w io.Writer, r Report) error {
	driver := r.Driver
	if driver == "" {
		driver = "database"
	}

	if r.OK {
		payload, err := jsonutil.Marshal(r.Response)
		if err != nil {
			return fmt.Errorf("encode ping response: %w", err)
		}
		_, err = fmt.Fprintf(w, "Pinged %s deployment at %s in %s. Response: %s\n",
			driver, r.Target, r.Latency.Round(time.Millisecond), payload)
		return err
	}

	kind, code, msg := KindUnknown, "", "probe failed"
	if r.Error != nil {
		kind, code, msg = r.Error.Kind, r.Error.Code, r.Error.Message
	}
	if code == "" {
		code = "-"
	}
	_, err := fmt.Fprintf(w, "Failed to ping %s deployment at %s: kind=%s code=%s message=%q\n",
		driver, r.Target, kind, code, msg)
	return err
}

func logReport(logger *slog.Logger, r Report) {
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{
		"runId", r.RunID,
		"driver", r.Driver,
		"target", r.Target,
		"latency", r.Latency,
	}

	if r.OK {
		attrs = append(attrs, "response", map[string]any(r.Response))
		logger.Info("database ping succeeded", attrs...)
		return
	}

	if r.Error != nil {
		attrs = append(attrs, slog.Group("error",
			"kind", string(r.Error.Kind),
			"code", r.Error.Code,
			"message", r.Error.Message,
		))
	}
	logger.Error("database ping failed", attrs...)
}
