package obs

import "github.com/yanun0323/logs"

// Logger is the leveled logging surface used across the client.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type defaultLogger struct{}

// DefaultLogger forwards to the process-wide logs package.
func DefaultLogger() Logger {
	return defaultLogger{}
}

func (defaultLogger) Debugf(format string, args ...any) { logs.Debugf(format, args...) }
func (defaultLogger) Infof(format string, args ...any)  { logs.Infof(format, args...) }
func (defaultLogger) Warnf(format string, args ...any)  { logs.Warnf(format, args...) }
func (defaultLogger) Errorf(format string, args ...any) { logs.Errorf(format, args...) }

type discard struct{}

// Discard drops every record.
func Discard() Logger {
	return discard{}
}

func (discard) Debugf(string, ...any) {}
func (discard) Infof(string, ...any)  {}
func (discard) Warnf(string, ...any)  {}
func (discard) Errorf(string, ...any) {}
