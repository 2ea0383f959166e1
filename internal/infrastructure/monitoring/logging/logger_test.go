package logging_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
)

func newObserved(level zapcore.Level) (logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return logging.NewLoggerFromCore(core), logs
}

func TestFieldConstructors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, logging.Field{Key: "k", Value: "v"}, logging.String("k", "v"))
	assert.Equal(t, logging.Field{Key: "n", Value: 7}, logging.Int("n", 7))
	assert.Equal(t, logging.Field{Key: "n64", Value: int64(9)}, logging.Int64("n64", 9))
	assert.Equal(t, logging.Field{Key: "f", Value: 0.85}, logging.Float64("f", 0.85))
	assert.Equal(t, logging.Field{Key: "b", Value: true}, logging.Bool("b", true))
	assert.Equal(t, logging.Field{Key: "d", Value: time.Second}, logging.Duration("d", time.Second))

	assert.Equal(t, logging.Field{Key: "error", Value: "<nil>"}, logging.Err(nil))
	assert.Equal(t, logging.Field{Key: "error", Value: "boom"}, logging.Err(errors.New("boom")))
}

func TestLevels_RespectConfiguredMinimum(t *testing.T) {
	t.Parallel()

	log, logs := newObserved(zapcore.InfoLevel)

	log.Debug("hidden")
	log.Info("shown")
	log.Warn("also shown")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "shown", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestWith_AttachesFieldsToEveryEntry(t *testing.T) {
	t.Parallel()

	log, logs := newObserved(zapcore.DebugLevel)

	child := log.With(logging.String("component", "matcher"))
	child.Info("scored", logging.Float64("score", 0.92))

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "matcher", ctx["component"])
	assert.Equal(t, 0.92, ctx["score"])
}

func TestWith_DoesNotMutateParent(t *testing.T) {
	t.Parallel()

	log, logs := newObserved(zapcore.DebugLevel)
	_ = log.With(logging.String("child", "only"))

	log.Info("parent entry")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].ContextMap(), "child")
}

func TestNamed_AppendsLoggerName(t *testing.T) {
	t.Parallel()

	log, logs := newObserved(zapcore.DebugLevel)
	log.Named("http").Named("match").Info("hit")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "http.match", entries[0].LoggerName)
}

func TestNewLogger_DefaultsAndInvalidPath(t *testing.T) {
	t.Parallel()

	log, err := logging.NewLogger(logging.Config{})
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.NoError(t, func() error { log.Info("ok"); return nil }())

	_, err = logging.NewLogger(logging.Config{OutputPaths: []string{"scheme://nonsense"}})
	assert.Error(t, err)
}

func TestNopLogger_IsInert(t *testing.T) {
	t.Parallel()

	nop := logging.NewNopLogger()
	assert.NotPanics(t, func() {
		nop.Debug("a")
		nop.Info("b", logging.Int("x", 1))
		nop.Warn("c")
		nop.Error("d", logging.Err(errors.New("e")))
		_ = nop.With(logging.String("k", "v")).Named("n").Sync()
	})
}

func TestDefault_SetAndGet(t *testing.T) {
	// Not parallel: mutates the package-level default.
	orig := logging.Default()
	defer logging.SetDefault(orig)

	log, logs := newObserved(zapcore.InfoLevel)
	logging.SetDefault(log)
	logging.Default().Info("via default")

	require.Len(t, logs.All(), 1)

	// nil is ignored rather than clobbering the default.
	logging.SetDefault(nil)
	assert.NotNil(t, logging.Default())
}
