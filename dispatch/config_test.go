package dispatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultChunkBytes, cfg.ChunkBytes)
	assert.Equal(t, DefaultRecvTimeout, cfg.RecvTimeout)
	assert.Equal(t, "tcp", cfg.Network)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordstats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workers:
  - 10.0.0.5:7701
  - 10.0.0.6:7701
chunk_bytes: 8192
recv_timeout: 5s
remotes:
  - id: pi1
    addr: 10.0.0.5:22
    user: pi
    password: raspberry
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.5:7701", "10.0.0.6:7701"}, cfg.Workers)
	assert.Equal(t, 8192, cfg.ChunkBytes)
	assert.Equal(t, Duration(5*time.Second), cfg.RecvTimeout)
	// unset keys keep their defaults
	assert.Equal(t, "tcp", cfg.Network)

	host, ok := cfg.remote("pi1")
	require.True(t, ok)
	assert.Equal(t, "10.0.0.5:22", host.Addr)
	_, ok = cfg.remote("pi2")
	assert.False(t, ok)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		cfg := DefaultConfig()
		cfg.Workers = []string{"127.0.0.1:7701"}
		return cfg
	}

	assert.NoError(t, base().Validate())

	small := base()
	small.ChunkBytes = MinChunkBytes - 1
	assert.ErrorContains(t, small.Validate(), "at least 11 bytes")

	lonely := base()
	lonely.Workers = nil
	assert.ErrorContains(t, lonely.Validate(), "at least one worker")

	weird := base()
	weird.Network = "carrier-pigeon"
	assert.ErrorContains(t, weird.Validate(), "unsupported network")
}
