package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/temirov/mdwalk/internal/utils"
)

// LoadIgnoreMatcher compiles the root .mdwalkignore and, when useGitignore is
// set, the root .gitignore. It returns nil when neither file contributes rules.
//
// #nosec G304
func LoadIgnoreMatcher(rootDirectory string, useGitignore bool) (*ignore.GitIgnore, error) {
	ignoreLines, readErr := readIgnoreLines(filepath.Join(rootDirectory, utils.IgnoreFileName))
	if readErr != nil {
		return nil, readErr
	}

	if useGitignore {
		gitIgnorePath := filepath.Join(rootDirectory, utils.GitIgnoreFileName)
		if _, statErr := os.Stat(gitIgnorePath); statErr == nil {
			matcher, compileErr := ignore.CompileIgnoreFileAndLines(gitIgnorePath, ignoreLines...)
			if compileErr != nil {
				return nil, fmt.Errorf("compile %s: %w", gitIgnorePath, compileErr)
			}
			return matcher, nil
		} else if !os.IsNotExist(statErr) {
			return nil, fmt.Errorf("inspect %s: %w", gitIgnorePath, statErr)
		}
	}

	if len(ignoreLines) == 0 {
		return nil, nil
	}
	return ignore.CompileIgnoreLines(ignoreLines...), nil
}

func readIgnoreLines(path string) ([]string, error) {
	content, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, readErr)
	}
	var lines []string
	for _, line := range strings.Split(string(content), "\n") {
		trimmedLine := strings.TrimSpace(line)
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, "#") {
			continue
		}
		lines = append(lines, trimmedLine)
	}
	return lines, nil
}
