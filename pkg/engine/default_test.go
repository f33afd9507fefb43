package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvtuan/mmo-engine/pkg/config"
)

func TestDefault_SingleInstanceUnderConcurrency(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	const n = 16
	engines := make([]*Engine, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			engines[i] = Default()
		}(i)
	}
	wg.Wait()

	require.NotNil(t, engines[0])
	for i := 1; i < n; i++ {
		assert.Same(t, engines[0], engines[i])
	}
}

func TestSetDefaultOptions_AppliedOnFirstBuild(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	cfg := config.Default()
	cfg.Database.Path = "custom.db"
	SetDefaultOptions(WithConfig(cfg))

	e := Default()
	assert.Equal(t, "custom.db", e.cfg.Database.Path)
}

func TestResetDefault_BuildsFresh(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	first := Default()
	ResetDefault()
	second := Default()

	assert.NotSame(t, first, second)
}
