package batch

import "fmt"

// WorkerPanicError reports a sub-request worker that panicked.
type WorkerPanicError struct {
	Index int
	Value interface{}
}

// Error implements the error interface.
func (e *WorkerPanicError) Error() string {
	return fmt.Sprintf("batch worker %d panicked: %v", e.Index, e.Value)
}
