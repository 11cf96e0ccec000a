package s3client

import (
	"fmt"
	"log/slog"

	"github.com/aws/smithy-go/logging"
)

// sdkLogger forwards SDK client logs (retries) to slog.
type sdkLogger struct {
	log *slog.Logger
}

func newSDKLogger(log *slog.Logger) logging.Logger {
	return sdkLogger{log: log}
}

// Logf implements logging.Logger.
func (l sdkLogger) Logf(classification logging.Classification, format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	if classification == logging.Warn {
		l.log.Warn(msg, slog.String("source", "aws-sdk"))
		return
	}
	l.log.Debug(msg, slog.String("source", "aws-sdk"))
}
