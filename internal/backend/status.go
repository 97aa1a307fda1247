package backend

import "sync"

// Operation names a tracked backend call.
type Operation string

const (
	OpLogin         Operation = "login"
	OpSignup        Operation = "signup"
	OpLogout        Operation = "logout"
	OpCurrentUser   Operation = "current_user"
	OpUpdateProfile Operation = "update_profile"
	OpListEvents    Operation = "list_events"
	OpCreateEvent   Operation = "create_event"
)

// Status is the state of the most recent call of an operation.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusRejected  Status = "rejected"
)

type statusTracker struct {
	mu     sync.Mutex
	seq    map[Operation]uint64
	status map[Operation]Status
}

func newStatusTracker() *statusTracker {
	return &statusTracker{
		seq:    make(map[Operation]uint64),
		status: make(map[Operation]Status),
	}
}

// start marks op pending and returns the function settling it. Only the
// latest call of op settles the status.
func (t *statusTracker) start(op Operation) func(error) {
	t.mu.Lock()
	t.seq[op]++
	id := t.seq[op]
	t.status[op] = StatusPending
	t.mu.Unlock()

	return func(err error) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.seq[op] != id {
			return
		}
		if err != nil {
			t.status[op] = StatusRejected
			return
		}
		t.status[op] = StatusFulfilled
	}
}

func (t *statusTracker) get(op Operation) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.status[op]; ok {
		return s
	}
	return StatusIdle
}
