package output

import (
	"path/filepath"
	"strings"
)

const defaultLanguage = "text"

var languageByFileName = map[string]string{
	"makefile":       "makefile",
	"gnumakefile":    "makefile",
	"dockerfile":     "dockerfile",
	"containerfile":  "dockerfile",
	"cmakelists.txt": "cmake",
	"jenkinsfile":    "groovy",
	"vagrantfile":    "ruby",
	"gemfile":        "ruby",
	"rakefile":       "ruby",
	"go.mod":         "go",
	".bashrc":        "bash",
	".zshrc":         "bash",
	".gitignore":     "gitignore",
}

var languageByExtension = map[string]string{
	".go":         "go",
	".py":         "python",
	".pyi":        "python",
	".js":         "javascript",
	".mjs":        "javascript",
	".cjs":        "javascript",
	".jsx":        "jsx",
	".ts":         "typescript",
	".tsx":        "tsx",
	".java":       "java",
	".kt":         "kotlin",
	".kts":        "kotlin",
	".scala":      "scala",
	".rs":         "rust",
	".c":          "c",
	".h":          "c",
	".cc":         "cpp",
	".cpp":        "cpp",
	".cxx":        "cpp",
	".hpp":        "cpp",
	".hh":         "cpp",
	".cs":         "csharp",
	".fs":         "fsharp",
	".swift":      "swift",
	".m":          "objectivec",
	".rb":         "ruby",
	".php":        "php",
	".pl":         "perl",
	".lua":        "lua",
	".r":          "r",
	".dart":       "dart",
	".ex":         "elixir",
	".exs":        "elixir",
	".erl":        "erlang",
	".hs":         "haskell",
	".clj":        "clojure",
	".sh":         "bash",
	".bash":       "bash",
	".zsh":        "bash",
	".fish":       "fish",
	".ps1":        "powershell",
	".bat":        "batch",
	".sql":        "sql",
	".html":       "html",
	".htm":        "html",
	".css":        "css",
	".scss":       "scss",
	".sass":       "sass",
	".less":       "less",
	".vue":        "vue",
	".svelte":     "svelte",
	".json":       "json",
	".yaml":       "yaml",
	".yml":        "yaml",
	".toml":       "toml",
	".ini":        "ini",
	".cfg":        "ini",
	".xml":        "xml",
	".md":         "markdown",
	".markdown":   "markdown",
	".rst":        "rst",
	".tex":        "latex",
	".proto":      "protobuf",
	".graphql":    "graphql",
	".tf":         "hcl",
	".hcl":        "hcl",
	".dockerfile": "dockerfile",
	".mk":         "makefile",
	".gradle":     "groovy",
	".groovy":     "groovy",
	".diff":       "diff",
	".patch":      "diff",
	".csv":        "csv",
	".txt":        "text",
}

// LanguageForPath returns the code fence language for a file path.
func LanguageForPath(path string) string {
	baseName := strings.ToLower(filepath.Base(path))
	if language, found := languageByFileName[baseName]; found {
		return language
	}
	if language, found := languageByExtension[strings.ToLower(filepath.Ext(baseName))]; found {
		return language
	}
	return defaultLanguage
}
