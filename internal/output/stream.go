package output

import (
	"github.com/temirov/mdwalk/internal/services/stream"
)

// StreamRenderer consumes stream events and writes a finished document on Flush.
type StreamRenderer interface {
	Handle(event stream.Event) error
	Flush() error
}
