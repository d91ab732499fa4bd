package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyVersion    = "version"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyTitle      = "title"
	KeySource     = "source"
	KeyDest       = "destination"
	KeyMode       = "mode"
	KeyRepo       = "repository"
	KeyRef        = "ref"
	KeyNodes      = "nodes"
	KeyFiles      = "files"
	KeySchedule   = "schedule"
	KeyStatus     = "status"
	KeyMethod     = "method"
	KeyRequestID  = "request_id"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Version(v string) slog.Attr       { return slog.String(KeyVersion, v) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Title(t string) slog.Attr         { return slog.String(KeyTitle, t) }
func Source(s string) slog.Attr        { return slog.String(KeySource, s) }
func Destination(d string) slog.Attr   { return slog.String(KeyDest, d) }
func Mode(m string) slog.Attr          { return slog.String(KeyMode, m) }
func Repository(r string) slog.Attr    { return slog.String(KeyRepo, r) }
func Ref(r string) slog.Attr           { return slog.String(KeyRef, r) }
func Nodes(n int) slog.Attr            { return slog.Int(KeyNodes, n) }
func Files(n int) slog.Attr            { return slog.Int(KeyFiles, n) }
func Schedule(s string) slog.Attr      { return slog.String(KeySchedule, s) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func RequestID(id string) slog.Attr    { return slog.String(KeyRequestID, id) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
