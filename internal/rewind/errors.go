package rewind

import "fmt"

// InconsistentStateDiff is raised when a diff buffer and the base
// snapshot it was built against disagree in length: encoding or
// replaying the diff runs past the end of the base byte stream. Push
// raises it when the emulator's serialized state has grown longer than
// its bucket's base snapshot; replay raises it for a diff whose records
// do not fit within the base.
type InconsistentStateDiff struct {
	Op    string // "write" or "read"
	Index int
}

func (e *InconsistentStateDiff) Error() string {
	return fmt.Sprintf("rewind: diff bytes consumed past the base snapshot during %s at index %d", e.Op, e.Index)
}
