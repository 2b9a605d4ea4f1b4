package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaman122/auto-report/internal/store"
	"github.com/aquaman122/auto-report/pkg/logger"
)

func TestPublishWorker_StopTwice(t *testing.T) {
	cfg := &Config{
		RedisAddr:   "localhost:6379",
		Concurrency: 1,
		Queues:      map[string]int{"default": 1},
	}
	w, err := NewPublishWorker(cfg, store.NewMemoryStore(), nil, nil, nil, nil, 0, logger.NewTestLogger())
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	assert.NotPanics(t, func() { _ = w.Stop() })
}
