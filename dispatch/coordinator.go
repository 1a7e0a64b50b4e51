package dispatch

import (
	"fmt"
	"net/rpc"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdcosta/wordstats/textproc"
)

// FileTotals is the aggregated result for one input file.
type FileTotals struct {
	Path   string
	Counts textproc.Counts
}

// fileJob tracks one file while the coordinator works through it. The
// reader (and the handle under it), the carry byte and the running totals
// are owned exclusively by the coordinator; workers only ever see individual
// chunks.
type fileJob struct {
	reader   *ChunkReader
	carry    byte
	finished bool
	totals   textproc.Counts
}

// Coordinator owns file I/O, chunk scheduling and result aggregation for a
// fixed pool of workers. Chunks are fanned out in synchronous rounds: at
// most one chunk per worker per round, replies collected in worker index
// order before the next round starts.
type Coordinator struct {
	cfg     *Config
	log     *zap.Logger
	runID   string
	clients []*rpc.Client
	stager  *Stager
}

// MakeCoordinator validates the configuration, dials every worker and
// broadcasts the chunk capacity. No file is touched before all of that
// succeeds.
func MakeCoordinator(cfg *Config, log *zap.Logger) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Coordinator{
		cfg:   cfg,
		log:   log,
		runID: uuid.NewString(),
	}

	for i, addr := range cfg.Workers {
		client, err := rpc.Dial(cfg.Network, addr)
		if err != nil {
			c.closeClients()
			return nil, fmt.Errorf("dial worker %d at %s: %w", i, addr, err)
		}
		c.clients = append(c.clients, client)
	}

	// capacity broadcast: every worker sizes its expectations off this
	args := &ConfigArgs{ChunkCapacity: cfg.ChunkBytes}
	for i, client := range c.clients {
		if err := client.Call("Worker.Configure", args, &ConfigReply{}); err != nil {
			c.closeClients()
			return nil, fmt.Errorf("configure worker %d: %w", i, err)
		}
	}

	c.log.Info("coordinator ready",
		zap.String("run", c.runID),
		zap.Int("workers", len(c.clients)),
		zap.Int("chunkCapacity", cfg.ChunkBytes))
	return c, nil
}

// Run processes the given files in order and returns per-file totals. Any
// error aborts the whole run, including files not yet started. Paths of the
// form "remoteID:/abs/path" are staged from the matching configured remote
// host first.
func (c *Coordinator) Run(paths []string) ([]FileTotals, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	if len(paths) > MaxFiles {
		return nil, fmt.Errorf("can only process %d files at a time, got %d", MaxFiles, len(paths))
	}

	local, err := c.stagePaths(paths)
	if err != nil {
		return nil, err
	}

	results := make([]FileTotals, 0, len(paths))
	for i, path := range local {
		totals, err := c.processFile(path)
		if err != nil {
			return nil, fmt.Errorf("processing %s: %w", paths[i], err)
		}
		// report under the name the caller asked for, not the staged copy
		results = append(results, FileTotals{Path: paths[i], Counts: totals})
	}
	return results, nil
}

func (c *Coordinator) processFile(path string) (textproc.Counts, error) {
	job := fileJob{carry: textproc.WhitespaceSentinel}

	f, err := os.Open(path)
	if err != nil {
		return job.totals, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	job.reader = NewChunkReader(f, c.cfg.ChunkBytes)

	c.log.Info("processing file", zap.String("run", c.runID), zap.String("path", path))

	type pendingReply struct {
		worker int
		call   *rpc.Call
		reply  *PartialResult
	}

	for !job.finished {
		// dispatch round: one chunk per worker, stop early at end of file
		var sent []pendingReply
		for i := range c.clients {
			if job.finished {
				break
			}
			chunk, err := job.reader.Next()
			if err != nil {
				return job.totals, err
			}

			args := &ChunkArgs{
				Status:    MoreWork,
				Chunk:     chunk.Data,
				Size:      chunk.Size,
				CarryByte: int(job.carry),
			}
			reply := &PartialResult{}
			call := c.clients[i].Go("Worker.Dispatch", args, reply, nil)
			sent = append(sent, pendingReply{worker: i, call: call, reply: reply})

			job.carry = chunk.Last
			job.finished = chunk.Finished
		}

		// collect round: worker index order, matching the dispatch order
		for _, p := range sent {
			if err := c.awaitReply(p.call, p.worker); err != nil {
				return job.totals, err
			}
			job.totals.Add(textproc.Counts{
				Words:        p.reply.Words,
				VowelStart:   p.reply.VowelStart,
				ConsonantEnd: p.reply.ConsonantEnd,
			})
		}
	}

	c.log.Info("file done",
		zap.String("path", path),
		zap.Int("words", job.totals.Words))
	return job.totals, nil
}

// awaitReply blocks for one worker reply, bounded by the configured receive
// timeout. A worker that never answers within the bound fails the run
// explicitly rather than stalling it forever.
func (c *Coordinator) awaitReply(call *rpc.Call, worker int) error {
	if c.cfg.RecvTimeout <= 0 {
		<-call.Done
		return call.Error
	}

	timer := time.NewTimer(time.Duration(c.cfg.RecvTimeout))
	defer timer.Stop()
	select {
	case <-call.Done:
		if call.Error != nil {
			return fmt.Errorf("worker %d: %w", worker, call.Error)
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("worker %d (%s) did not reply within %s",
			worker, c.cfg.Workers[worker], c.cfg.RecvTimeout)
	}
}

// Shutdown tells every worker that all files are processed and releases the
// client connections. Safe to call after a failed Run as well.
func (c *Coordinator) Shutdown() error {
	var firstErr error
	args := &ChunkArgs{Status: AllDone}
	for i, client := range c.clients {
		if err := client.Call("Worker.Dispatch", args, &PartialResult{}); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stopping worker %d: %w", i, err)
		}
	}
	c.closeClients()
	if c.stager != nil {
		c.stager.Close()
	}
	c.log.Info("coordinator shut down", zap.String("run", c.runID))
	return firstErr
}

func (c *Coordinator) closeClients() {
	for _, client := range c.clients {
		client.Close()
	}
	c.clients = nil
}

// stagePaths fetches any remote-prefixed inputs and returns the local path
// for every input in order.
func (c *Coordinator) stagePaths(paths []string) ([]string, error) {
	local := make([]string, len(paths))
	var remote []int
	for i, p := range paths {
		if _, _, ok := SplitRemotePath(p); ok {
			remote = append(remote, i)
		} else {
			local[i] = p
		}
	}
	if len(remote) == 0 {
		return local, nil
	}

	if c.stager == nil {
		s, err := NewStager(c.cfg, c.log)
		if err != nil {
			return nil, err
		}
		c.stager = s
	}
	remotePaths := make([]string, len(remote))
	for j, i := range remote {
		remotePaths[j] = paths[i]
	}
	staged, err := c.stager.FetchAll(remotePaths)
	if err != nil {
		return nil, err
	}
	for j, i := range remote {
		local[i] = staged[j]
	}
	return local, nil
}
