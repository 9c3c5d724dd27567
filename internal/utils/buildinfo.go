package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion   = "unknown"
	gitDirectoryName = ".git"
)

// Version is populated at build time with -ldflags "-X github.com/temirov/mdwalk/internal/utils.Version=v1.2.3".
var Version = ""

// GetApplicationVersion attempts to determine the application version using various methods.
// It checks the linker-provided Version, then Go build info, then falls back to git describe.
func GetApplicationVersion() string {
	if Version != "" {
		return Version
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		return buildInfo.Main.Version
	}

	gitDirectoryPath, gitDirectoryError := findGitDirectory(".")
	if gitDirectoryError == nil && gitDirectoryPath != "" {
		// #nosec G204
		gitDescribeCommand := exec.Command("git", "describe", "--tags", "--always", "--dirty")
		gitDescribeCommand.Dir = gitDirectoryPath
		gitDescribeOutput, errorGitDescribe := gitDescribeCommand.Output()
		if errorGitDescribe == nil && len(gitDescribeOutput) > 0 {
			return strings.TrimSpace(string(gitDescribeOutput))
		}
	}

	return unknownVersion
}

// findGitDirectory searches upward from the provided starting directory
// until it locates a directory containing the .git folder.
func findGitDirectory(startDirectory string) (string, error) {
	absoluteStartDirectory, errorAbsolute := filepath.Abs(startDirectory)
	if errorAbsolute != nil {
		return "", fmt.Errorf("failed to get absolute path for %s: %w", startDirectory, errorAbsolute)
	}

	currentDirectory := absoluteStartDirectory
	for {
		fileInformation, errorStat := os.Stat(filepath.Join(currentDirectory, gitDirectoryName))
		if errorStat == nil && fileInformation.IsDir() {
			return currentDirectory, nil
		}

		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			break
		}
		currentDirectory = parentDirectory
	}

	return "", fmt.Errorf(".git directory not found in or above %s", absoluteStartDirectory)
}
