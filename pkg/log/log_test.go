package log

import (
	"context"
	"testing"

	contextPkg "MoodLingo/pkg/context"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTestLogger(t *testing.T) *test.Hook {
	t.Helper()
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	prev := logger
	logger = l
	t.Cleanup(func() { logger = prev })
	return hook
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, parseLevel(""))
	assert.Equal(t, logrus.WarnLevel, parseLevel("warn"))
	assert.Equal(t, logrus.DebugLevel, parseLevel("loud"))
}

func TestErrorWithTraceIDReusesRequestID(t *testing.T) {
	hook := useTestLogger(t)

	traceID := ErrorWithTraceID(Fields{"request_id": "01HZX"}, "translate failed")

	assert.Equal(t, "01HZX", traceID)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "01HZX", hook.LastEntry().Data["trace_id"])
}

func TestErrorWithTraceIDGeneratesID(t *testing.T) {
	hook := useTestLogger(t)

	traceID := ErrorWithTraceID(nil, "camera gone")

	assert.Len(t, traceID, 36)
	assert.Equal(t, traceID, hook.LastEntry().Data["trace_id"])
}

func TestWithRequestID(t *testing.T) {
	useTestLogger(t)

	entry := WithRequestID(contextPkg.WithRequestID(context.Background(), "req-1"))
	assert.Equal(t, "req-1", entry.Data["request_id"])

	entry = WithRequestID(context.Background())
	assert.Equal(t, "unknown", entry.Data["request_id"])
}
