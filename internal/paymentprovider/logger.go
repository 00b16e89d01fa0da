package paymentprovider

import (
	"fmt"
	"log/slog"
)

// leveledLogger направляет журнал stripe-go в slog.
type leveledLogger struct {
	log *slog.Logger
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

// Infof пишет на уровне Debug: stripe-go сообщает так о каждом запросе.
func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}
