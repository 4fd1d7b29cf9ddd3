package core

// Logger is any leveled logger the app can report through.
// An arg implementing enough of a user identity (see services/logger) may be
// used by implementations to attach the acting user to the report.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
