package discover_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/mdwalk/internal/discover"
)

func TestModulePath(t *testing.T) {
	testCases := []struct {
		name        string
		goMod       string
		writeGoMod  bool
		expected    string
		expectError bool
	}{
		{name: "module root", goMod: "module example.com/demo\n\ngo 1.22\n", writeGoMod: true, expected: "example.com/demo"},
		{name: "no go.mod", writeGoMod: false, expected: ""},
		{name: "malformed", goMod: "module \"unterminated\n", writeGoMod: true, expectError: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			root := t.TempDir()
			if testCase.writeGoMod {
				if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte(testCase.goMod), 0o600); err != nil {
					t.Fatalf("write go.mod: %v", err)
				}
			}
			modulePath, err := discover.ModulePath(root)
			if testCase.expectError {
				if err == nil {
					t.Fatalf("expected error, got module %q", modulePath)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if modulePath != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, modulePath)
			}
		})
	}
}
