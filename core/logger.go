package core

// Logger is any leveled logger that can report errors to an external tracker.
// Implementations accept trailing args in the form:
// error, map[string]interface{} or a logged-in user value.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
