package dispatch

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MaxFiles is the most files one run may process.
	MaxFiles = 10
	// MinChunkBytes is the smallest usable chunk capacity; it must exceed
	// the longest expected word plus the boundary reserve.
	MinChunkBytes = 11
	// DefaultChunkBytes is used when no capacity is given.
	DefaultChunkBytes = 2500
	// DefaultRecvTimeout bounds the wait for one worker reply. Zero
	// disables the bound.
	DefaultRecvTimeout = Duration(30 * time.Second)
)

// Duration wraps time.Duration so YAML configs can use strings like "5s"
// or "1m30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) String() string { return time.Duration(d).String() }

// RemoteHost describes an SSH host that input files may be staged from.
type RemoteHost struct {
	ID       string `yaml:"id"`
	Addr     string `yaml:"addr"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Config carries everything the coordinator needs to reach its worker pool
// and split work. Workers only ever see ChunkBytes, via the startup
// broadcast.
type Config struct {
	Workers     []string     `yaml:"workers"`
	Network     string       `yaml:"network"` // "tcp" or "unix"
	ChunkBytes  int          `yaml:"chunk_bytes"`
	RecvTimeout Duration     `yaml:"recv_timeout"`
	StagingDir  string       `yaml:"staging_dir"`
	Remotes     []RemoteHost `yaml:"remotes"`
}

func DefaultConfig() *Config {
	return &Config{
		Network:     "tcp",
		ChunkBytes:  DefaultChunkBytes,
		RecvTimeout: DefaultRecvTimeout,
		StagingDir:  os.TempDir(),
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations before any file is opened or worker
// dialed.
func (c *Config) Validate() error {
	if c.ChunkBytes < MinChunkBytes {
		return fmt.Errorf("chunk size must be at least %d bytes, got %d", MinChunkBytes, c.ChunkBytes)
	}
	if len(c.Workers) < 1 {
		return fmt.Errorf("need at least one worker (coordinator plus workers is a minimum of two processes)")
	}
	if c.Network != "tcp" && c.Network != "unix" {
		return fmt.Errorf("unsupported network %q", c.Network)
	}
	return nil
}

func (c *Config) remote(id string) (RemoteHost, bool) {
	for _, r := range c.Remotes {
		if r.ID == id {
			return r, true
		}
	}
	return RemoteHost{}, false
}
