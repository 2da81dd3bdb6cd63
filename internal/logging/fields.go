package logging

import "log/slog"

// Common field names for consistent logging across listeners.
const (
	FieldService  = "service"
	FieldListener = "listener"
	FieldIP       = "ip"
	FieldMethod   = "method"
	FieldPath     = "path"
	FieldStatus   = "status"
	FieldDuration = "duration_ms"
	FieldError    = "error"
	FieldLogFile  = "log_file"
	FieldChatID   = "chat_id"
	FieldOutcome  = "outcome"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// Listener returns a slog attribute for the listener name.
func Listener(name string) slog.Attr {
	return slog.String(FieldListener, name)
}

// IP returns a slog attribute for the IP address.
func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// LogFile returns a slog attribute for the partition file path.
func LogFile(path string) slog.Attr {
	return slog.String(FieldLogFile, path)
}

// ChatID returns a slog attribute for a Telegram chat identity.
func ChatID(id string) slog.Attr {
	return slog.String(FieldChatID, id)
}

// Outcome returns a slog attribute for a sync cycle outcome.
func Outcome(outcome string) slog.Attr {
	return slog.String(FieldOutcome, outcome)
}
