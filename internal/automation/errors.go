package automation

import (
	"fmt"

	"github.com/san-kum/marblejar/internal/marble"
)

// DropError wraps a failed scripted drop with the frame it was due on.
type DropError struct {
	Frame   uint64
	Color   marble.Color
	Wrapped error
}

func (e *DropError) Error() string {
	return fmt.Sprintf("automation: drop %s at frame %d: %v", e.Color, e.Frame, e.Wrapped)
}

func (e *DropError) Unwrap() error {
	return e.Wrapped
}
