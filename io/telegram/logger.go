package telegram

import (
	"fmt"

	"github.com/igorsal/gh-telegram/internal/interfaces"
)

// restyLogger routes resty's own messages through the service logger
type restyLogger struct {
	logger interfaces.Logger
}

func newRestyLogger(logger interfaces.Logger) *restyLogger {
	return &restyLogger{logger: logger.With("component", "resty")}
}

func (l *restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...), nil)
}

func (l *restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l *restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
