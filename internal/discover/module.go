// Package discover inspects the source directory for project metadata shown in
// report headers.
package discover

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"

	"github.com/temirov/mdwalk/internal/utils"
)

// ModulePath returns the module path declared in rootPath/go.mod, or an empty
// string when the directory is not a Go module root.
func ModulePath(rootPath string) (string, error) {
	goModPath := filepath.Join(rootPath, utils.GoModFileName)
	bytes, readErr := os.ReadFile(goModPath)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return "", nil
		}
		return "", fmt.Errorf("read go.mod: %w", readErr)
	}
	modFile, parseErr := modfile.ParseLax(utils.GoModFileName, bytes, nil)
	if parseErr != nil {
		return "", fmt.Errorf("parse go.mod: %w", parseErr)
	}
	if modFile == nil || modFile.Module == nil {
		return "", nil
	}
	return modFile.Module.Mod.Path, nil
}
