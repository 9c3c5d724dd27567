package types

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrorKind classifies failures raised while producing a report.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindPermissionDenied marks a directory or file that could not be listed or read.
	KindPermissionDenied
	// KindUnreadableFile marks a file whose bytes could not be decoded as text.
	KindUnreadableFile
	// KindInvalidRoot marks a source directory that is missing or not a directory.
	KindInvalidRoot
	// KindWriteFailure marks an output file that could not be created or written.
	KindWriteFailure
)

// Sentinel errors matched by PathError.Is.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnreadableFile   = errors.New("file unreadable")
	ErrInvalidRoot      = errors.New("invalid root directory")
	ErrWriteFailure     = errors.New("write failure")
)

func (kind ErrorKind) String() string {
	switch kind {
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindUnreadableFile:
		return "UnreadableFile"
	case KindInvalidRoot:
		return "InvalidRoot"
	case KindWriteFailure:
		return "WriteFailure"
	default:
		return "Unknown"
	}
}

func (kind ErrorKind) sentinel() error {
	switch kind {
	case KindPermissionDenied:
		return ErrPermissionDenied
	case KindUnreadableFile:
		return ErrUnreadableFile
	case KindInvalidRoot:
		return ErrInvalidRoot
	case KindWriteFailure:
		return ErrWriteFailure
	default:
		return nil
	}
}

// IsFatal reports whether errors of this kind must stop the run.
func (kind ErrorKind) IsFatal() bool {
	return kind == KindInvalidRoot || kind == KindWriteFailure
}

// PathError ties an ErrorKind to the path that caused it.
type PathError struct {
	Kind ErrorKind
	Path string
	Err  error
}

// NewPathError constructs a PathError.
func NewPathError(kind ErrorKind, path string, err error) *PathError {
	return &PathError{Kind: kind, Path: path, Err: err}
}

func (pathError *PathError) Error() string {
	sentinel := pathError.Kind.sentinel()
	message := "error"
	if sentinel != nil {
		message = sentinel.Error()
	}
	if pathError.Path != "" {
		message = fmt.Sprintf("%s: %s", message, pathError.Path)
	}
	if pathError.Err != nil {
		return fmt.Sprintf("%s: %v", message, pathError.Err)
	}
	return message
}

// Unwrap returns the underlying cause.
func (pathError *PathError) Unwrap() error {
	return pathError.Err
}

// Is matches the sentinel error of the kind.
func (pathError *PathError) Is(target error) bool {
	sentinel := pathError.Kind.sentinel()
	return sentinel != nil && target == sentinel
}

// Reason returns the cause without the kind and path prefix, suitable for placeholders.
func (pathError *PathError) Reason() string {
	var filesystemError *fs.PathError
	if errors.As(pathError.Err, &filesystemError) && filesystemError.Err != nil {
		return filesystemError.Err.Error()
	}
	if pathError.Err != nil {
		return pathError.Err.Error()
	}
	if sentinel := pathError.Kind.sentinel(); sentinel != nil {
		return sentinel.Error()
	}
	return "unknown error"
}

// ClassifyFileError wraps a filesystem error for path, distinguishing permission
// failures from other unreadable conditions.
func ClassifyFileError(path string, err error) *PathError {
	if err == nil {
		return nil
	}
	var existing *PathError
	if errors.As(err, &existing) {
		return existing
	}
	if errors.Is(err, fs.ErrPermission) {
		return NewPathError(KindPermissionDenied, path, err)
	}
	return NewPathError(KindUnreadableFile, path, err)
}

// KindOf returns the ErrorKind carried by err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var pathError *PathError
	if errors.As(err, &pathError) {
		return pathError.Kind
	}
	return KindUnknown
}
