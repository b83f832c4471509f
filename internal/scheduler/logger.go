package scheduler

import "github.com/charmbracelet/log"

// gocronLogger adapts the charm logger to gocron.Logger.
type gocronLogger struct {
	*log.Logger
}

func newLogger() gocronLogger {
	return gocronLogger{Logger: log.Default().WithPrefix("scheduler")}
}

func (l gocronLogger) Debug(msg string, args ...any) { l.Logger.Debug(msg, args...) }
func (l gocronLogger) Info(msg string, args ...any)  { l.Logger.Info(msg, args...) }
func (l gocronLogger) Warn(msg string, args ...any)  { l.Logger.Warn(msg, args...) }
func (l gocronLogger) Error(msg string, args ...any) { l.Logger.Error(msg, args...) }
