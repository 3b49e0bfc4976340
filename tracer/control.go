package tracer

import (
	"sync"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

type CommandType uint8

// Supported control commands.
const (
	// Update the epoch; requests tagged with other epochs are dropped.
	SetEpoch CommandType = iota

	// Move the camera to a new location.
	RepositionCamera

	// Change the camera orientation.
	ReorientCamera

	// Replace the entire camera.
	ReplaceCamera

	// Exit the worker loop.
	Shutdown
)

// A control message delivered to a worker. Only the field that matches the
// command type is used.
type Command struct {
	Type CommandType

	Epoch       uint64
	Location    types.Vec3
	Orientation types.Orientation
	Camera      scene.Camera
}

// A per-worker mailbox for control commands. Commands are queued in order
// and applied by the worker before it processes its next request so pushing
// a command never blocks on a busy worker.
type ControlQueue struct {
	sync.Mutex

	pending []Command
	notify  chan struct{}
}

// Create a new control queue.
func NewControlQueue() *ControlQueue {
	return &ControlQueue{
		notify: make(chan struct{}, 1),
	}
}

// Append commands to the queue and wake the worker if it is idle. The
// commands become visible to the worker as a single batch.
func (q *ControlQueue) Push(cmds ...Command) {
	q.Lock()
	q.pending = append(q.pending, cmds...)
	q.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Get a channel that receives a value whenever new commands are queued.
func (q *ControlQueue) Notify() <-chan struct{} {
	return q.notify
}

// Remove and return all queued commands.
func (q *ControlQueue) Drain() []Command {
	q.Lock()
	defer q.Unlock()

	cmds := q.pending
	q.pending = nil
	return cmds
}
