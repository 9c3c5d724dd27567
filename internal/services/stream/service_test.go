package stream_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/mdwalk/internal/classifier"
	"github.com/temirov/mdwalk/internal/services/stream"
	"github.com/temirov/mdwalk/internal/types"
)

type stubCounter struct{}

func (stubCounter) Name() string { return "stub" }

func (stubCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

func newClassifier(t *testing.T) *classifier.Classifier {
	t.Helper()
	instance, err := classifier.New(classifier.NewExclusionRules(nil), classifier.Options{})
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}
	return instance
}

func writeFixture(t *testing.T, root string, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestStreamTreeEmitsEventsWithSummary(t *testing.T) {
	root := t.TempDir()
	filePath := writeFixture(t, root, "nested/example.txt", []byte("tree"))

	treeClassifier := newClassifier(t)
	events := collectEvents(t, func(ch chan<- stream.Event) error {
		options := stream.TreeOptions{Root: root, Classifier: treeClassifier}
		return stream.StreamTree(context.Background(), options, ch)
	})

	if events[0].Kind != stream.EventKindStart {
		t.Fatalf("expected first event to be start, got %v", events[0].Kind)
	}
	if last := events[len(events)-1]; last.Kind != stream.EventKindDone {
		t.Fatalf("expected last event to be done, got %v", last.Kind)
	}

	var sawFile, sawSummary bool
	for _, event := range events {
		switch event.Kind {
		case stream.EventKindFile:
			sawFile = true
			if event.File.Path != filePath || event.File.RelativePath != "nested/example.txt" {
				t.Fatalf("unexpected file event: %+v", event.File)
			}
			if event.File.Depth != 2 || !event.File.IsLast {
				t.Fatalf("unexpected depth or last flag: %+v", event.File)
			}
		case stream.EventKindContent, stream.EventKindUnreadable:
			t.Fatalf("tree stream must not decode files")
		case stream.EventKindSummary:
			sawSummary = true
			if event.Summary.IncludedFiles != 1 || event.Summary.Bytes != int64(len("tree")) {
				t.Fatalf("unexpected summary: %+v", event.Summary)
			}
		}
	}
	if !sawFile || !sawSummary {
		t.Fatalf("expected file and summary events, got %+v", events)
	}
}

func TestStreamCombineDecodesFilesAndReportsUnreadable(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "a.py", []byte("print(1)"))
	writeFixture(t, root, "b.bin", []byte{0x00, 0x01, 0x02})

	combineClassifier := newClassifier(t)
	events := collectEvents(t, func(ch chan<- stream.Event) error {
		options := stream.CombineOptions{Root: root, Classifier: combineClassifier, TokenCounter: stubCounter{}, TokenModel: "stub-model"}
		return stream.StreamCombine(context.Background(), options, ch)
	})

	var kinds []stream.EventKind
	var summary *stream.SummaryEvent
	for _, event := range events {
		kinds = append(kinds, event.Kind)
		switch event.Kind {
		case stream.EventKindContent:
			if event.Content.RelativePath != "a.py" || event.Content.Text != "print(1)" {
				t.Fatalf("unexpected content: %+v", event.Content)
			}
			if event.Content.Tokens != len("print(1)") {
				t.Fatalf("expected tokens counted, got %d", event.Content.Tokens)
			}
		case stream.EventKindUnreadable:
			if event.Err.RelativePath != "b.bin" || event.Err.Reason != "binary content" {
				t.Fatalf("unexpected unreadable event: %+v", event.Err)
			}
			if event.Err.Kind != types.KindUnreadableFile {
				t.Fatalf("expected UnreadableFile kind, got %s", event.Err.Kind)
			}
		case stream.EventKindSummary:
			summary = event.Summary
		}
	}

	expectedKinds := []stream.EventKind{
		stream.EventKindStart,
		stream.EventKindDirectory,
		stream.EventKindFile, stream.EventKindContent,
		stream.EventKindFile, stream.EventKindUnreadable,
		stream.EventKindDirectory,
		stream.EventKindSummary,
		stream.EventKindDone,
	}
	if len(kinds) != len(expectedKinds) {
		t.Fatalf("expected %v, got %v", expectedKinds, kinds)
	}
	for index := range expectedKinds {
		if kinds[index] != expectedKinds[index] {
			t.Fatalf("expected %v, got %v", expectedKinds, kinds)
		}
	}

	if summary == nil || summary.IncludedFiles != 1 || summary.UnreadableFiles != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Model != "stub-model" || summary.Tokens != len("print(1)") {
		t.Fatalf("unexpected token summary: %+v", summary)
	}
}

func TestStreamCombineStopsWhenContextCancelled(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "a.txt", []byte("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := stream.StreamCombine(ctx, stream.CombineOptions{Root: root, Classifier: newClassifier(t)}, make(chan stream.Event))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestStreamTreeRejectsInvalidRoot(t *testing.T) {
	err := stream.StreamTree(context.Background(), stream.TreeOptions{Root: filepath.Join(t.TempDir(), "missing"), Classifier: newClassifier(t)}, make(chan stream.Event, 8))
	if !errors.Is(err, types.ErrInvalidRoot) {
		t.Fatalf("expected invalid root error, got %v", err)
	}
}

func collectEvents(t *testing.T, producer func(chan<- stream.Event) error) []stream.Event {
	t.Helper()
	events := make(chan stream.Event, 32)
	errCh := make(chan error, 1)
	go func() {
		errCh <- producer(events)
		close(events)
	}()

	var out []stream.Event
	for event := range events {
		out = append(out, event)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("producer returned error: %v", err)
	}
	return out
}
