package dispatch

import "fmt"

// WorkStatus is the flag carried by every coordinator-to-worker message.
type WorkStatus int

const (
	// MoreWork tags a chunk that must be classified and answered.
	MoreWork WorkStatus = iota
	// AllDone tells a worker that processing is over and it should exit.
	AllDone
)

// ConfigArgs is broadcast to every worker before any file is processed.
type ConfigArgs struct {
	ChunkCapacity int
}

type ConfigReply struct{}

// ChunkArgs is the per-chunk message, coordinator to worker. Field order
// mirrors the wire protocol: status flag, fixed-capacity chunk buffer,
// effective size, carry byte.
type ChunkArgs struct {
	Status    WorkStatus
	Chunk     []byte
	Size      int
	CarryByte int
}

// PartialResult is the per-chunk answer, worker to coordinator.
type PartialResult struct {
	Words        int
	VowelStart   int
	ConsonantEnd int
}

// validate checks the message shape against the capacity agreed at
// configuration time. Both ends agree on fixed sizes, so a mismatch is a
// protocol error and fatal for the run.
func (a *ChunkArgs) validate(capacity int) error {
	if len(a.Chunk) != capacity {
		return fmt.Errorf("protocol error: chunk buffer is %d bytes, capacity is %d", len(a.Chunk), capacity)
	}
	if a.Size < 0 || a.Size > capacity {
		return fmt.Errorf("protocol error: effective size %d outside [0, %d]", a.Size, capacity)
	}
	return nil
}
