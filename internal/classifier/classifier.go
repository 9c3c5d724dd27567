// Package classifier decides which directory entries take part in a report.
package classifier

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// Mode selects the rule set applied by ShouldSkip.
type Mode int

const (
	// ModeTree ignores file size limits.
	ModeTree Mode = iota
	// ModeCombine additionally enforces the maximum file size.
	ModeCombine
)

const pathSeparator = '/'

// Skip reasons reported by Reason.
const (
	ReasonNone              = ""
	ReasonExcludedDirectory = "excluded directory"
	ReasonExcludedExtension = "excluded extension"
	ReasonExcludedFileName  = "excluded file name"
	ReasonHidden            = "hidden"
	ReasonTooLarge          = "exceeds maximum size"
	ReasonIgnorePattern     = "matches ignore pattern"
	ReasonIgnoreFile        = "matches ignore file"
)

// Entry describes a directory entry as seen by the classifier.
type Entry struct {
	Name         string
	RelativePath string
	IsDir        bool
	SizeBytes    int64
}

// Options carries the configuration values that influence classification.
type Options struct {
	IncludeHidden  bool
	MaxFileSize    int64
	IgnorePatterns []string
	// IgnoreMatcher holds compiled .gitignore style rules, or nil.
	IgnoreMatcher *ignore.GitIgnore
}

// Classifier is a pure predicate over directory entries.
type Classifier struct {
	rules         ExclusionRules
	options       Options
	globs         []glob.Glob
	ignoreMatcher *ignore.GitIgnore
}

// New compiles the ignore patterns and returns a Classifier.
func New(rules ExclusionRules, options Options) (*Classifier, error) {
	compiledGlobs := make([]glob.Glob, 0, len(options.IgnorePatterns))
	for _, pattern := range options.IgnorePatterns {
		compiled, compileErr := glob.Compile(strings.TrimSuffix(pattern, "/"), pathSeparator)
		if compileErr != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, compileErr)
		}
		compiledGlobs = append(compiledGlobs, compiled)
	}
	return &Classifier{
		rules:         rules,
		options:       options,
		globs:         compiledGlobs,
		ignoreMatcher: options.IgnoreMatcher,
	}, nil
}

// ShouldSkip reports whether entry is excluded in mode.
func (classifier *Classifier) ShouldSkip(entry Entry, mode Mode) bool {
	return classifier.Reason(entry, mode) != ReasonNone
}

// Reason returns why entry is excluded in mode, or ReasonNone.
func (classifier *Classifier) Reason(entry Entry, mode Mode) string {
	if entry.IsDir {
		if classifier.rules.skipsDirectoryName(entry.Name) {
			return ReasonExcludedDirectory
		}
	} else {
		if classifier.rules.skipsExtension(entry.Name) {
			return ReasonExcludedExtension
		}
		if classifier.rules.skipsFileName(entry.Name) {
			return ReasonExcludedFileName
		}
	}
	if !classifier.options.IncludeHidden && IsHidden(entry.Name) {
		return ReasonHidden
	}
	if classifier.matchesIgnorePattern(entry) {
		return ReasonIgnorePattern
	}
	if classifier.matchesIgnoreFile(entry) {
		return ReasonIgnoreFile
	}
	if mode == ModeCombine && !entry.IsDir && classifier.options.MaxFileSize > 0 && entry.SizeBytes > classifier.options.MaxFileSize {
		return ReasonTooLarge
	}
	return ReasonNone
}

// IsHidden reports whether name denotes a hidden entry.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func (classifier *Classifier) matchesIgnorePattern(entry Entry) bool {
	for _, compiled := range classifier.globs {
		if compiled.Match(entry.RelativePath) || compiled.Match(entry.Name) {
			return true
		}
	}
	return false
}

func (classifier *Classifier) matchesIgnoreFile(entry Entry) bool {
	if classifier.ignoreMatcher == nil || entry.RelativePath == "" {
		return false
	}
	if entry.IsDir && classifier.ignoreMatcher.MatchesPath(entry.RelativePath+"/") {
		return true
	}
	return classifier.ignoreMatcher.MatchesPath(entry.RelativePath)
}
