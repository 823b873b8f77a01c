package logging

import "go.uber.org/zap"

// Logger is the package-wide logger used by SDK components that were not
// handed an explicit logger. It defaults to a no-op logger so the SDK stays
// silent unless the host application opts in.
var Logger = zap.NewNop()

// SetLogger replaces the package-wide logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Logger = l
}

// NewDevelopmentLogger builds a human-readable logger for examples and tests.
func NewDevelopmentLogger() *zap.Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
