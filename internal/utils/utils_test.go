package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/mdwalk/internal/utils"
)

// textFileName defines the name of the text file used in tests.
const textFileName = "sample.txt"

// TestDeduplicatePatterns verifies that DeduplicatePatterns removes duplicate and blank patterns.
func TestDeduplicatePatterns(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		patterns []string
		expected []string
	}{
		{
			testName: "removes duplicates",
			patterns: []string{"a", "b", "a"},
			expected: []string{"a", "b"},
		},
		{
			testName: "drops blanks and trims",
			patterns: []string{" a ", "", "  ", "a"},
			expected: []string{"a"},
		},
	}
	for index, testCase := range testCases {
		actual := utils.DeduplicatePatterns(testCase.patterns)
		if len(actual) != len(testCase.expected) {
			testingInstance.Errorf("case %d (%s): expected length %d, got %d", index, testCase.testName, len(testCase.expected), len(actual))
			continue
		}
		for position, value := range actual {
			if value != testCase.expected[position] {
				testingInstance.Errorf("case %d (%s): expected %s at position %d, got %s", index, testCase.testName, testCase.expected[position], position, value)
			}
		}
	}
}

// TestSplitListValues verifies comma separated flag expansion.
func TestSplitListValues(testingInstance *testing.T) {
	actual := utils.SplitListValues([]string{"log, tmp", "bak", ","})
	expected := []string{"log", "tmp", "bak"}
	if len(actual) != len(expected) {
		testingInstance.Fatalf("expected %v, got %v", expected, actual)
	}
	for position, value := range expected {
		if actual[position] != value {
			testingInstance.Fatalf("expected %v, got %v", expected, actual)
		}
	}
}

// TestRelativePathOrSelf verifies relative path calculations.
func TestRelativePathOrSelf(testingInstance *testing.T) {
	temporaryRoot := testingInstance.TempDir()
	nestedDirectory := filepath.Join(temporaryRoot, "nested")
	if creationError := os.MkdirAll(nestedDirectory, 0o755); creationError != nil {
		testingInstance.Fatalf("failed to create directory: %v", creationError)
	}
	nestedPath := filepath.Join(nestedDirectory, textFileName)
	testCases := []struct {
		testName string
		fullPath string
		root     string
		expected string
	}{
		{
			testName: "root path returns dot",
			fullPath: temporaryRoot,
			root:     temporaryRoot,
			expected: ".",
		},
		{
			testName: "nested path returns slash relative",
			fullPath: nestedPath,
			root:     temporaryRoot,
			expected: "nested/" + textFileName,
		},
	}
	for index, testCase := range testCases {
		actual := utils.RelativePathOrSelf(testCase.fullPath, testCase.root)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %s, got %s", index, testCase.testName, testCase.expected, actual)
		}
	}
}

func TestDetectMimeType(t *testing.T) {
	testCases := []struct {
		name          string
		data          []byte
		expected      string
		expectedMedia bool
	}{
		{name: "plain text", data: []byte("plain text"), expected: "text/plain; charset=utf-8"},
		{name: "empty", data: nil, expected: utils.UnknownMimeType},
		{name: "png", data: []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR"), expected: "image/png", expectedMedia: true},
		{name: "pdf", data: []byte("%PDF-1.4\n"), expected: "application/pdf", expectedMedia: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			mimeType := utils.DetectMimeType(testCase.data)
			if mimeType != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, mimeType)
			}
			if utils.IsMediaMimeType(mimeType) != testCase.expectedMedia {
				t.Fatalf("unexpected media classification for %q", mimeType)
			}
		})
	}
}

func TestContainsNullByte(t *testing.T) {
	if !utils.ContainsNullByte([]byte{'a', 0x00, 'b'}) {
		t.Fatalf("expected NUL byte to be detected")
	}
	if utils.ContainsNullByte([]byte("print(1)")) {
		t.Fatalf("expected text without NUL bytes")
	}
}
