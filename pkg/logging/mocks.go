package logging

// NoopLogger discards everything. Handy for tests that do not assert on logs.
type NoopLogger struct{}

var _ Logger = (*NoopLogger)(nil)

func (NoopLogger) Debug(msg string, tags ...any) {}
func (NoopLogger) Info(msg string, tags ...any)  {}
func (NoopLogger) Warn(msg string, tags ...any)  {}
func (NoopLogger) Error(msg string, tags ...any) {}
func (NoopLogger) Fatal(msg string, tags ...any) {}

func (NoopLogger) Debugf(template string, args ...interface{}) {}
func (NoopLogger) Infof(template string, args ...interface{})  {}
func (NoopLogger) Warnf(template string, args ...interface{})  {}
func (NoopLogger) Errorf(template string, args ...interface{}) {}
func (NoopLogger) Fatalf(template string, args ...interface{}) {}

func (n NoopLogger) With(tags ...any) Logger { return n }
