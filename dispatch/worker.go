package dispatch

import (
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"sync"

	"go.uber.org/zap"

	"github.com/pdcosta/wordstats/textproc"
)

// Worker is a stateless compute process: it waits for a chunk, classifies
// it, answers with partial counts, and loops. All cross-chunk continuity
// (the carry byte) is supplied by the coordinator, so any worker can serve
// any chunk of any file.
type Worker struct {
	log *zap.Logger

	mu       sync.Mutex
	capacity int // 0 until Configure

	done     chan struct{}
	stopOnce sync.Once
}

func MakeWorker(log *zap.Logger) *Worker {
	return &Worker{log: log, done: make(chan struct{})}
}

// Configure records the chunk capacity agreed for this run. The coordinator
// broadcasts it before sending any chunk.
func (w *Worker) Configure(args *ConfigArgs, _ *ConfigReply) error {
	if args.ChunkCapacity < MinChunkBytes {
		return fmt.Errorf("chunk capacity %d below minimum %d", args.ChunkCapacity, MinChunkBytes)
	}
	w.mu.Lock()
	w.capacity = args.ChunkCapacity
	w.mu.Unlock()
	w.log.Info("worker configured", zap.Int("chunkCapacity", args.ChunkCapacity))
	return nil
}

// Dispatch handles one coordinator message. An AllDone status ends the serve
// loop; MoreWork carries a chunk to classify.
func (w *Worker) Dispatch(args *ChunkArgs, reply *PartialResult) error {
	if args.Status == AllDone {
		w.log.Info("worker shutting down")
		w.stopOnce.Do(func() { close(w.done) })
		return nil
	}

	w.mu.Lock()
	capacity := w.capacity
	w.mu.Unlock()
	if capacity == 0 {
		return errors.New("protocol error: chunk received before configuration")
	}
	if err := args.validate(capacity); err != nil {
		return err
	}

	counts := textproc.Classify(args.Chunk, args.Size, rune(args.CarryByte))
	reply.Words = counts.Words
	reply.VowelStart = counts.VowelStart
	reply.ConsonantEnd = counts.ConsonantEnd

	w.log.Debug("chunk processed",
		zap.Int("size", args.Size),
		zap.Int("words", counts.Words))
	return nil
}

// Serve listens on the given address and answers coordinator calls until an
// AllDone message arrives. It returns once the listener is closed and every
// open connection has drained, so a returned Serve means the worker is fully
// terminated.
func (w *Worker) Serve(network, addr string) error {
	srv := rpc.NewServer()
	if err := srv.RegisterName("Worker", w); err != nil {
		return fmt.Errorf("register rpc: %w", err)
	}

	lis, err := net.Listen(network, addr)
	if err != nil {
		return fmt.Errorf("worker listen on %s %s: %w", network, addr, err)
	}
	w.log.Info("worker listening", zap.String("network", network), zap.String("addr", addr))

	go func() {
		<-w.done
		lis.Close()
	}()

	var conns sync.WaitGroup
	for {
		conn, err := lis.Accept()
		if err != nil {
			select {
			case <-w.done:
				conns.Wait()
				return nil
			default:
				return fmt.Errorf("worker accept: %w", err)
			}
		}
		conns.Add(1)
		go func() {
			defer conns.Done()
			srv.ServeConn(conn)
		}()
	}
}
