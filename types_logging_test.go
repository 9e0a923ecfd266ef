package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type logCall struct {
	level   string
	message string
	args    []any
}

type captureLogger struct {
	calls []logCall
}

func (l *captureLogger) record(level, message string, args ...any) {
	l.calls = append(l.calls, logCall{level: level, message: message, args: args})
}

func (l *captureLogger) Debug(message string, args ...any) { l.record("debug", message, args...) }
func (l *captureLogger) Info(message string, args ...any)  { l.record("info", message, args...) }
func (l *captureLogger) Warn(message string, args ...any)  { l.record("warn", message, args...) }
func (l *captureLogger) Error(message string, args ...any) { l.record("error", message, args...) }

func TestDefLoggerLine(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		args []any
		want string
	}{
		{name: "message only", msg: "hello", want: "hello\n"},
		{name: "pairs", msg: "login", args: []any{"email", "jane@example.com", "ok", true}, want: "login email=jane@example.com ok=true\n"},
		{name: "dangling key", msg: "odd", args: []any{"key"}, want: "odd key\n"},
		{name: "trailing newline trimmed", msg: "done\n", want: "done\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, line(tt.msg, tt.args...))
		})
	}
}

func TestRecordActivityLogsSinkErrors(t *testing.T) {
	logger := &captureLogger{}
	sink := ActivitySinkFunc(func(context.Context, ActivityEvent) error {
		return errors.New("sink down")
	})

	recordActivity(context.Background(), sink, logger, ActivityEvent{EventType: ActivityEventLoginSuccess})

	if assert.Len(t, logger.calls, 1) {
		assert.Equal(t, "warn", logger.calls[0].level)
		assert.Equal(t, "failed to record activity", logger.calls[0].message)
		assert.Contains(t, logger.calls[0].args, ActivityEventLoginSuccess)
	}
}

func TestRecordActivityStampsTime(t *testing.T) {
	var got ActivityEvent
	sink := ActivitySinkFunc(func(_ context.Context, evt ActivityEvent) error {
		got = evt
		return nil
	})

	recordActivity(context.Background(), sink, &captureLogger{}, ActivityEvent{EventType: ActivityEventUserRegistered})

	assert.False(t, got.OccurredAt.IsZero())
	assert.Equal(t, ActivityEventUserRegistered, got.EventType)
}

func TestNilActivitySinkFuncIsNoop(t *testing.T) {
	var fn ActivitySinkFunc
	assert.NoError(t, fn.Record(context.Background(), ActivityEvent{}))
	assert.IsType(t, noopActivitySink{}, normalizeActivitySink(nil))
}
