package dispatch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/sync/errgroup"
)

// SplitRemotePath recognizes inputs of the form "remoteID:/abs/path" and
// splits them into the remote host ID and the path on that host.
func SplitRemotePath(p string) (id, path string, ok bool) {
	i := strings.Index(p, ":")
	if i <= 0 || !strings.HasPrefix(p[i+1:], "/") {
		return "", "", false
	}
	return p[:i], p[i+1:], true
}

// Stager copies input files from configured SSH hosts into a local staging
// directory so the coordinator can chunk them like any local file. One
// SSH+SFTP client pair is kept per remote host for the lifetime of the run.
type Stager struct {
	cfg *Config
	log *zap.Logger
	dir string

	mu   sync.Mutex
	ssh  map[string]*ssh.Client
	sftp map[string]*sftp.Client
}

func NewStager(cfg *Config, log *zap.Logger) (*Stager, error) {
	dir := filepath.Join(cfg.StagingDir, "wordstats-staging")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Stager{
		cfg:  cfg,
		log:  log,
		dir:  dir,
		ssh:  make(map[string]*ssh.Client),
		sftp: make(map[string]*sftp.Client),
	}, nil
}

func (s *Stager) client(id string) (*sftp.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.sftp[id]; ok {
		return c, nil
	}

	host, ok := s.cfg.remote(id)
	if !ok {
		return nil, fmt.Errorf("remote host %q not configured", id)
	}

	sshCfg := &ssh.ClientConfig{
		User: host.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(host.Password),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // TODO: load known_hosts instead
	}
	sshClient, err := ssh.Dial("tcp", host.Addr, sshCfg)
	if err != nil {
		return nil, fmt.Errorf("dial %s (%s): %w", id, host.Addr, err)
	}
	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("sftp session on %s: %w", id, err)
	}

	s.ssh[id] = sshClient
	s.sftp[id] = sftpClient
	return sftpClient, nil
}

// Fetch copies one remote input to the staging directory and returns the
// local path.
func (s *Stager) Fetch(remotePath string) (string, error) {
	id, path, ok := SplitRemotePath(remotePath)
	if !ok {
		return "", fmt.Errorf("not a remote path: %q", remotePath)
	}

	client, err := s.client(id)
	if err != nil {
		return "", err
	}

	src, err := client.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s on %s: %w", path, id, err)
	}
	defer src.Close()

	local := filepath.Join(s.dir, uuid.NewString()+"-"+filepath.Base(path))
	dst, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(local)
		return "", fmt.Errorf("copy %s from %s: %w", path, id, err)
	}
	if err := dst.Close(); err != nil {
		return "", err
	}

	s.log.Info("staged remote input",
		zap.String("remote", remotePath),
		zap.String("local", local))
	return local, nil
}

// FetchAll stages several remote inputs concurrently, preserving order.
func (s *Stager) FetchAll(remotePaths []string) ([]string, error) {
	local := make([]string, len(remotePaths))
	var g errgroup.Group
	for i, p := range remotePaths {
		i, p := i, p
		g.Go(func() error {
			staged, err := s.Fetch(p)
			if err != nil {
				return err
			}
			local[i] = staged
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return local, nil
}

// Close tears down the per-host clients. Staged copies are left behind for
// inspection.
func (s *Stager) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.sftp {
		c.Close()
	}
	for _, c := range s.ssh {
		c.Close()
	}
	s.sftp = make(map[string]*sftp.Client)
	s.ssh = make(map[string]*ssh.Client)
}
