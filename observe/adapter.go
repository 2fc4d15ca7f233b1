package observe

import (
	"context"
	"fmt"

	"github.com/jonwraymond/circuitkit/breaker"
)

// BreakerLogger adapts a structured Logger to the breaker package's
// printf-style side-channel logger. Classifier panics, policy failures
// and other internal diagnostics end up in the structured stream.
func BreakerLogger(l Logger) breaker.Logger {
	return &printfAdapter{logger: l}
}

type printfAdapter struct {
	logger Logger
}

func (a *printfAdapter) Debugf(format string, args ...any) {
	a.logger.Debug(context.Background(), fmt.Sprintf(format, args...))
}

func (a *printfAdapter) Infof(format string, args ...any) {
	a.logger.Info(context.Background(), fmt.Sprintf(format, args...))
}

func (a *printfAdapter) Warnf(format string, args ...any) {
	a.logger.Warn(context.Background(), fmt.Sprintf(format, args...))
}

func (a *printfAdapter) Errorf(format string, args ...any) {
	a.logger.Error(context.Background(), fmt.Sprintf(format, args...))
}
