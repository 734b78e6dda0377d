package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewNamesTheGlobalLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	New("scheduler").Infow("scan finished", "expired", 2)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "scheduler", entries[0].LoggerName)
		assert.Equal(t, "scan finished", entries[0].Message)
		assert.Equal(t, int64(2), entries[0].ContextMap()["expired"])
	}
}
