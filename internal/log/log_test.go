package log

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel(LevelInfo)

	cases := []struct {
		in       string
		expected zapcore.Level
	}{
		{LevelDebug, zapcore.DebugLevel},
		{LevelInfo, zapcore.InfoLevel},
		{LevelWarn, zapcore.WarnLevel},
		{LevelError, zapcore.ErrorLevel},
		{LevelFatal, zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
	}

	for _, c := range cases {
		SetLevel(c.in)
		assert.Equal(t, c.expected, zapLevel.Level(), "SetLevel(%q)", c.in)
	}
}

// recordingLogger captures formatted messages per level.
type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) record(lvl, format string, args ...any) {
	r.lines = append(r.lines, lvl+" "+fmt.Sprintf(format, args...))
}

func (r *recordingLogger) Debugf(format string, args ...any) { r.record("DEBUG", format, args...) }
func (r *recordingLogger) Infof(format string, args ...any)  { r.record("INFO", format, args...) }
func (r *recordingLogger) Warnf(format string, args ...any)  { r.record("WARN", format, args...) }
func (r *recordingLogger) Errorf(format string, args ...any) { r.record("ERROR", format, args...) }
func (r *recordingLogger) Fatalf(format string, args ...any) { r.record("FATAL", format, args...) }

func TestHelpersForwardToDefault(t *testing.T) {
	rec := &recordingLogger{}
	old := Default
	Default = rec
	defer func() { Default = old }()

	Debugf("d %d", 1)
	Infof("i %s", "x")
	Warnf("w")
	Errorf("e %v", "boom")

	assert.Equal(t, []string{"DEBUG d 1", "INFO i x", "WARN w", "ERROR e boom"}, rec.lines)
}
