package stream

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/mdwalk/internal/classifier"
	"github.com/temirov/mdwalk/internal/commands"
	"github.com/temirov/mdwalk/internal/decoder"
	"github.com/temirov/mdwalk/internal/tokenizer"
	"github.com/temirov/mdwalk/internal/types"
)

// TreeOptions configures StreamTree.
type TreeOptions struct {
	Root       string
	Classifier *classifier.Classifier
	SkipPaths  []string
	Logger     *zap.Logger
}

// CombineOptions configures StreamCombine. A nil TokenCounter disables
// token counting.
type CombineOptions struct {
	Root         string
	Classifier   *classifier.Classifier
	SkipPaths    []string
	Decoder      *decoder.Decoder
	TokenCounter tokenizer.Counter
	TokenModel   string
	Logger       *zap.Logger
}

type emitter struct {
	ctx     context.Context
	out     chan<- Event
	command string
}

func newEmitter(ctx context.Context, out chan<- Event, command string) *emitter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &emitter{ctx: ctx, out: out, command: command}
}

func (e *emitter) send(event Event) error {
	if e.out == nil {
		return fmt.Errorf("stream: event channel is nil")
	}
	if event.Command == "" {
		event.Command = e.command
	}
	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	case e.out <- event:
		return nil
	}
}

type summaryTracker struct {
	included   int
	unreadable int
	bytes      int64
	tokens     int
	model      string
}

func (tracker *summaryTracker) addIncluded(size int64, tokens int, model string) {
	tracker.included++
	tracker.bytes += size
	tracker.tokens += tokens
	if tracker.model == "" && model != "" && tokens > 0 {
		tracker.model = model
	}
}

func (tracker *summaryTracker) addUnreadable() {
	tracker.unreadable++
}

func (tracker *summaryTracker) summary() *SummaryEvent {
	return &SummaryEvent{
		IncludedFiles:   tracker.included,
		UnreadableFiles: tracker.unreadable,
		Bytes:           tracker.bytes,
		Tokens:          tracker.tokens,
		Model:           tracker.model,
	}
}

// StreamTree walks opts.Root in tree mode and sends structure events to out.
func StreamTree(ctx context.Context, opts TreeOptions, out chan<- Event) error {
	if opts.Root == "" {
		return fmt.Errorf("stream: tree root path is empty")
	}
	emitter := newEmitter(ctx, out, types.CommandTree)
	if err := emitter.send(Event{Kind: EventKindStart, Path: opts.Root}); err != nil {
		return err
	}

	tracker := &summaryTracker{}
	walkOptions := commands.WalkOptions{
		Root:       opts.Root,
		Classifier: opts.Classifier,
		Mode:       classifier.ModeTree,
		SkipPaths:  opts.SkipPaths,
		Logger:     opts.Logger,
	}
	handler := func(walkEvent commands.WalkEvent) error {
		if walkEvent.Kind == commands.WalkEventFile {
			tracker.addIncluded(walkEvent.Entry.SizeBytes, 0, "")
		}
		return emitStructure(emitter, walkEvent)
	}
	if err := commands.Walk(walkOptions, handler); err != nil {
		return err
	}

	if err := emitter.send(Event{Kind: EventKindSummary, Path: opts.Root, Summary: tracker.summary()}); err != nil {
		return err
	}
	return emitter.send(Event{Kind: EventKindDone, Path: opts.Root})
}

// StreamCombine walks opts.Root in combine mode. Every file event is followed
// by either a content event or an unreadable event.
func StreamCombine(ctx context.Context, opts CombineOptions, out chan<- Event) error {
	if opts.Root == "" {
		return fmt.Errorf("stream: combine root path is empty")
	}
	if opts.Decoder == nil {
		opts.Decoder = decoder.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	emitter := newEmitter(ctx, out, types.CommandCombine)
	if err := emitter.send(Event{Kind: EventKindStart, Path: opts.Root}); err != nil {
		return err
	}

	tracker := &summaryTracker{}
	walkOptions := commands.WalkOptions{
		Root:       opts.Root,
		Classifier: opts.Classifier,
		Mode:       classifier.ModeCombine,
		SkipPaths:  opts.SkipPaths,
		Logger:     logger,
	}
	handler := func(walkEvent commands.WalkEvent) error {
		if err := emitStructure(emitter, walkEvent); err != nil {
			return err
		}
		if walkEvent.Kind != commands.WalkEventFile {
			return nil
		}
		entry := walkEvent.Entry

		result, decodeErr := opts.Decoder.DecodeFile(entry.Path)
		if decodeErr != nil {
			pathError := types.ClassifyFileError(entry.Path, decodeErr)
			logger.Warn("file unreadable", zap.String("path", entry.RelativePath), zap.String("reason", pathError.Reason()))
			logger.Debug("decode failure", zap.Error(pathError))
			tracker.addUnreadable()
			return emitter.send(Event{
				Kind: EventKindUnreadable,
				Path: entry.Path,
				Err: &ErrorEvent{
					Kind:         pathError.Kind,
					RelativePath: entry.RelativePath,
					Depth:        entry.Depth,
					Reason:       pathError.Reason(),
				},
			})
		}

		tokens := 0
		if opts.TokenCounter != nil {
			counted, countErr := tokenizer.CountText(opts.TokenCounter, result.Text)
			if countErr != nil {
				logger.Warn("token counting failed", zap.String("path", entry.RelativePath), zap.Error(countErr))
			} else {
				tokens = counted
			}
		}
		tracker.addIncluded(entry.SizeBytes, tokens, opts.TokenModel)
		return emitter.send(Event{
			Kind: EventKindContent,
			Path: entry.Path,
			Content: &ContentEvent{
				RelativePath: entry.RelativePath,
				Text:         result.Text,
				Encoding:     result.Encoding,
				Tokens:       tokens,
			},
		})
	}
	if err := commands.Walk(walkOptions, handler); err != nil {
		return err
	}

	if err := emitter.send(Event{Kind: EventKindSummary, Path: opts.Root, Summary: tracker.summary()}); err != nil {
		return err
	}
	return emitter.send(Event{Kind: EventKindDone, Path: opts.Root})
}

func emitStructure(emitter *emitter, walkEvent commands.WalkEvent) error {
	entry := walkEvent.Entry
	switch walkEvent.Kind {
	case commands.WalkEventEnterDir, commands.WalkEventLeaveDir:
		phase := DirectoryEnter
		if walkEvent.Kind == commands.WalkEventLeaveDir {
			phase = DirectoryLeave
		}
		return emitter.send(Event{
			Kind: EventKindDirectory,
			Path: entry.Path,
			Directory: &DirectoryEvent{
				Phase:        phase,
				Path:         entry.Path,
				RelativePath: entry.RelativePath,
				Name:         entry.Name,
				Depth:        entry.Depth,
				IsLast:       entry.IsLast,
			},
		})
	case commands.WalkEventFile:
		return emitter.send(Event{
			Kind: EventKindFile,
			Path: entry.Path,
			File: &FileEvent{
				Path:         entry.Path,
				RelativePath: entry.RelativePath,
				Name:         entry.Name,
				Depth:        entry.Depth,
				IsLast:       entry.IsLast,
				IsSymlink:    entry.IsSymlink,
				SizeBytes:    entry.SizeBytes,
			},
		})
	case commands.WalkEventDirError:
		reason := "unknown error"
		kind := types.KindUnknown
		if walkEvent.Err != nil {
			reason = walkEvent.Err.Reason()
			kind = walkEvent.Err.Kind
		}
		return emitter.send(Event{
			Kind: EventKindDirectoryError,
			Path: entry.Path,
			Err: &ErrorEvent{
				Kind:         kind,
				RelativePath: entry.RelativePath,
				Depth:        entry.Depth,
				Reason:       reason,
			},
		})
	default:
		return nil
	}
}
