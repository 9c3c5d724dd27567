package classifier

import "strings"

var defaultSkippedDirectoryNames = []string{
	".git", ".hg", ".svn",
	"node_modules", "__pycache__", ".pytest_cache", ".mypy_cache",
	".venv", "venv",
	".idea", ".vscode",
	"dist", "build", "target",
	".next", ".nuxt", ".gradle", "coverage",
}

// .bin is intentionally absent: such files are kept and reported as unreadable.
var defaultSkippedExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".bmp", ".ico", ".webp", ".tiff", ".psd",
	".mp3", ".wav", ".flac", ".ogg", ".mp4", ".avi", ".mov", ".mkv", ".webm",
	".zip", ".tar", ".gz", ".tgz", ".bz2", ".xz", ".7z", ".rar",
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
	".exe", ".dll", ".so", ".dylib", ".o", ".a", ".class", ".jar", ".pyc", ".pyo",
	".woff", ".woff2", ".ttf", ".otf", ".eot",
	".sqlite", ".db",
}

var defaultSkippedFileNames = []string{
	".DS_Store", "Thumbs.db",
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "poetry.lock",
	"Cargo.lock", "Gemfile.lock", "composer.lock", "go.sum",
}

// ExclusionRules is the immutable set of names and extensions that are never
// part of a report.
type ExclusionRules struct {
	directoryNames map[string]struct{}
	extensions     map[string]struct{}
	fileNames      map[string]struct{}
}

// NewExclusionRules builds the default rules extended with extraExtensions.
// Extensions are normalized, so "log", ".log" and ".LOG" are equivalent.
func NewExclusionRules(extraExtensions []string) ExclusionRules {
	rules := ExclusionRules{
		directoryNames: toSet(defaultSkippedDirectoryNames),
		extensions:     make(map[string]struct{}, len(defaultSkippedExtensions)+len(extraExtensions)),
		fileNames:      toSet(defaultSkippedFileNames),
	}
	for _, extension := range defaultSkippedExtensions {
		rules.extensions[extension] = struct{}{}
	}
	for _, extension := range extraExtensions {
		if normalized := NormalizeExtension(extension); normalized != "" {
			rules.extensions[normalized] = struct{}{}
		}
	}
	return rules
}

// NormalizeExtension lower-cases an extension and ensures a leading dot.
func NormalizeExtension(extension string) string {
	trimmed := strings.ToLower(strings.TrimSpace(extension))
	trimmed = strings.TrimLeft(trimmed, ".")
	if trimmed == "" {
		return ""
	}
	return "." + trimmed
}

func (rules ExclusionRules) skipsDirectoryName(name string) bool {
	_, found := rules.directoryNames[name]
	return found
}

// skipsExtension reports whether any dot-separated suffix of name is an
// excluded extension, so multi-part extensions such as ".tar.gz" match too.
func (rules ExclusionRules) skipsExtension(name string) bool {
	lowered := strings.ToLower(name)
	for index := strings.IndexByte(lowered, '.'); index >= 0; {
		if _, found := rules.extensions[lowered[index:]]; found {
			return true
		}
		next := strings.IndexByte(lowered[index+1:], '.')
		if next < 0 {
			break
		}
		index += next + 1
	}
	return false
}

func (rules ExclusionRules) skipsFileName(name string) bool {
	_, found := rules.fileNames[name]
	return found
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}
