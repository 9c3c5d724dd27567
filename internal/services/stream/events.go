// Package stream converts directory walks into ordered report events consumed
// by the output renderers.
package stream

import (
	"github.com/temirov/mdwalk/internal/types"
)

// EventKind names the payload carried by an Event.
type EventKind string

const (
	EventKindStart     EventKind = "start"
	EventKindDirectory EventKind = "directory"
	EventKindFile      EventKind = "file"
	// EventKindContent follows a file event when its contents were decoded.
	EventKindContent EventKind = "content"
	// EventKindUnreadable follows a file event when its contents could not be decoded.
	EventKindUnreadable EventKind = "unreadable"
	// EventKindDirectoryError reports a directory that could not be listed.
	EventKindDirectoryError EventKind = "directory_error"
	EventKindSummary        EventKind = "summary"
	EventKindDone           EventKind = "done"
)

type DirectoryPhase string

const (
	DirectoryEnter DirectoryPhase = "enter"
	DirectoryLeave DirectoryPhase = "leave"
)

// Event is one step of a report stream. Exactly one payload pointer matching
// Kind is set; start and done events carry none.
type Event struct {
	Kind    EventKind
	Command string
	Path    string

	Directory *DirectoryEvent
	File      *FileEvent
	Content   *ContentEvent
	Summary   *SummaryEvent
	Err       *ErrorEvent
}

type DirectoryEvent struct {
	Phase        DirectoryPhase
	Path         string
	RelativePath string
	Name         string
	Depth        int
	IsLast       bool
}

type FileEvent struct {
	Path         string
	RelativePath string
	Name         string
	Depth        int
	IsLast       bool
	IsSymlink    bool
	SizeBytes    int64
}

type ContentEvent struct {
	RelativePath string
	Text         string
	Encoding     string
	Tokens       int
}

// SummaryEvent totals a run. IncludedFiles counts decoded files only.
type SummaryEvent struct {
	IncludedFiles   int
	UnreadableFiles int
	Bytes           int64
	Tokens          int
	Model           string
}

// ErrorEvent describes an unreadable file or a directory that could not be listed.
type ErrorEvent struct {
	Kind         types.ErrorKind
	RelativePath string
	Depth        int
	Reason       string
}
