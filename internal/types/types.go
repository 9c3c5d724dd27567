// Package types defines every cross‑package data structure used by the mdwalk CLI.
package types

const (
	CommandTree    = "tree"
	CommandCombine = "combine"

	DefaultTreeOutputFile    = "file_tree.md"
	DefaultCombineOutputFile = "combined_output.md"
)

// Configuration is the immutable record assembled once per run from flags and
// configuration files.
type Configuration struct {
	Command                 string
	SourceDirectory         string
	OutputFile              string
	IncludeHidden           bool
	ShowSizes               bool
	GenerateTOC             bool
	MaxFileSize             int64
	ExtraExcludedExtensions []string
	IgnorePatterns          []string
	UseGitignore            bool
	CountTokens             bool
	TokenModel              string
	CopyToClipboard         bool
	Verbose                 bool
}

// ValidatedPath is an absolute root directory that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	DisplayPath  string
}

// ReportSummary captures aggregate information about a combined document.
type ReportSummary struct {
	IncludedFiles   int
	UnreadableFiles int
	TotalBytes      int64
	TotalTokens     int
	Model           string
	GeneratedAt     string
}
