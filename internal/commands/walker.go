// Package commands walks a source directory and reports eligible entries in
// a deterministic order.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/mdwalk/internal/classifier"
	"github.com/temirov/mdwalk/internal/types"
	"github.com/temirov/mdwalk/internal/utils"
)

// WalkEventKind identifies what a WalkEvent reports.
type WalkEventKind int

const (
	WalkEventEnterDir WalkEventKind = iota
	WalkEventFile
	WalkEventLeaveDir
	// WalkEventDirError reports a directory whose children could not be listed.
	WalkEventDirError
)

// WalkEntry describes one eligible entry in traversal order.
type WalkEntry struct {
	Path         string
	RelativePath string
	Name         string
	Depth        int
	IsDir        bool
	IsLast       bool
	IsSymlink    bool
	SizeBytes    int64
}

// WalkEvent is delivered to the Walk handler for every eligible entry.
// Err is set only for WalkEventDirError.
type WalkEvent struct {
	Kind  WalkEventKind
	Entry WalkEntry
	Err   *types.PathError
}

// WalkOptions configures Walk.
type WalkOptions struct {
	Root       string
	Classifier *classifier.Classifier
	Mode       classifier.Mode
	// SkipPaths are absolute paths excluded regardless of classification, such as the output file.
	SkipPaths []string
	Logger    *zap.Logger
}

type walkContext struct {
	options   WalkOptions
	handler   func(WalkEvent) error
	skipPaths map[string]struct{}
	// activeDirectories holds resolved paths of directories on the current traversal stack.
	activeDirectories map[string]struct{}
}

// Walk traverses options.Root depth first, directories before files, and calls
// handler for every eligible entry. Per-entry failures are reported as events;
// only handler errors and an invalid root stop the walk.
func Walk(options WalkOptions, handler func(WalkEvent) error) error {
	if handler == nil {
		return fmt.Errorf("walk handler is nil")
	}
	if options.Classifier == nil {
		return fmt.Errorf("walk classifier is nil")
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	absoluteRoot, absErr := filepath.Abs(options.Root)
	if absErr != nil {
		return types.NewPathError(types.KindInvalidRoot, options.Root, absErr)
	}
	options.Root = absoluteRoot

	rootInfo, statErr := os.Stat(options.Root)
	if statErr != nil {
		return types.NewPathError(types.KindInvalidRoot, options.Root, statErr)
	}
	if !rootInfo.IsDir() {
		return types.NewPathError(types.KindInvalidRoot, options.Root, fmt.Errorf("not a directory"))
	}

	ctx := walkContext{
		options:           options,
		handler:           handler,
		skipPaths:         make(map[string]struct{}, len(options.SkipPaths)),
		activeDirectories: make(map[string]struct{}),
	}
	for _, skipPath := range options.SkipPaths {
		if absolutePath, absErr := filepath.Abs(skipPath); absErr == nil {
			ctx.skipPaths[absolutePath] = struct{}{}
		}
	}

	rootEntry := WalkEntry{
		Path:         options.Root,
		RelativePath: ".",
		Name:         filepath.Base(options.Root),
		IsDir:        true,
		IsLast:       true,
	}
	return ctx.walkDirectory(rootEntry)
}

func (ctx *walkContext) walkDirectory(directory WalkEntry) error {
	resolvedPath := resolvePath(directory.Path)
	if err := ctx.handler(WalkEvent{Kind: WalkEventEnterDir, Entry: directory}); err != nil {
		return err
	}

	if _, active := ctx.activeDirectories[resolvedPath]; active {
		ctx.options.Logger.Debug("not re-entering directory already on the traversal stack", zap.String("path", directory.Path))
		return ctx.handler(WalkEvent{Kind: WalkEventLeaveDir, Entry: directory})
	}
	ctx.activeDirectories[resolvedPath] = struct{}{}
	defer delete(ctx.activeDirectories, resolvedPath)

	children, readErr := ctx.readChildren(directory)
	if readErr != nil {
		pathError := types.ClassifyFileError(directory.Path, readErr)
		ctx.options.Logger.Warn("unable to list directory", zap.String("path", directory.Path), zap.Error(pathError))
		errorEntry := WalkEntry{Path: directory.Path, RelativePath: directory.RelativePath, Depth: directory.Depth + 1, IsLast: true}
		if err := ctx.handler(WalkEvent{Kind: WalkEventDirError, Entry: errorEntry, Err: pathError}); err != nil {
			return err
		}
		return ctx.handler(WalkEvent{Kind: WalkEventLeaveDir, Entry: directory})
	}

	for _, child := range children {
		if child.IsDir {
			if err := ctx.walkDirectory(child); err != nil {
				return err
			}
			continue
		}
		if err := ctx.handler(WalkEvent{Kind: WalkEventFile, Entry: child}); err != nil {
			return err
		}
	}

	return ctx.handler(WalkEvent{Kind: WalkEventLeaveDir, Entry: directory})
}

// readChildren lists, filters and orders the children of directory and marks the last sibling.
func (ctx *walkContext) readChildren(directory WalkEntry) ([]WalkEntry, error) {
	dirEntries, readErr := os.ReadDir(directory.Path)
	if readErr != nil {
		return nil, readErr
	}

	children := make([]WalkEntry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		childPath := filepath.Join(directory.Path, dirEntry.Name())
		if _, skipped := ctx.skipPaths[childPath]; skipped {
			ctx.options.Logger.Debug("skipping output file", zap.String("path", childPath))
			continue
		}

		child := WalkEntry{
			Path:         childPath,
			RelativePath: utils.RelativePathOrSelf(childPath, ctx.options.Root),
			Name:         dirEntry.Name(),
			Depth:        directory.Depth + 1,
			IsSymlink:    dirEntry.Type()&os.ModeSymlink != 0,
		}
		targetInfo, statErr := os.Stat(childPath)
		if statErr != nil {
			// Broken links stay in the listing as files; reading them reports the failure.
			ctx.options.Logger.Debug("unable to resolve entry", zap.String("path", childPath), zap.Error(statErr))
		} else {
			child.IsDir = targetInfo.IsDir()
			if !child.IsDir {
				child.SizeBytes = targetInfo.Size()
			}
		}

		classified := classifier.Entry{
			Name:         child.Name,
			RelativePath: child.RelativePath,
			IsDir:        child.IsDir,
			SizeBytes:    child.SizeBytes,
		}
		if reason := ctx.options.Classifier.Reason(classified, ctx.options.Mode); reason != classifier.ReasonNone {
			ctx.options.Logger.Debug("skipping entry", zap.String("path", child.RelativePath), zap.String("reason", reason))
			continue
		}
		children = append(children, child)
	}

	SortEntries(children)
	if len(children) > 0 {
		children[len(children)-1].IsLast = true
	}
	return children, nil
}

// SortEntries orders entries with directories first, then by case-insensitive
// name with a byte-wise tie break.
func SortEntries(entries []WalkEntry) {
	sort.SliceStable(entries, func(left, right int) bool {
		if entries[left].IsDir != entries[right].IsDir {
			return entries[left].IsDir
		}
		leftFolded := strings.ToLower(entries[left].Name)
		rightFolded := strings.ToLower(entries[right].Name)
		if leftFolded != rightFolded {
			return leftFolded < rightFolded
		}
		return entries[left].Name < entries[right].Name
	})
}

func resolvePath(path string) string {
	resolved, evalErr := filepath.EvalSymlinks(path)
	if evalErr != nil {
		return filepath.Clean(path)
	}
	return resolved
}
