package todo

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	clang "github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

var extensionToLanguage = map[string]string{
	".go":   "go",
	".py":   "python",
	".pyw":  "python",
	".js":   "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".jsx":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".mts":  "typescript",
	".cts":  "typescript",
	".rs":   "rust",
	".rb":   "ruby",
	".java": "java",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".hpp":  "cpp",
	".hxx":  "cpp",
	".sh":   "bash",
	".bash": "bash",
	".zsh":  "bash",
}

// DetectLanguage returns the parser language for filename, or "" when the
// file is scanned line by line.
func DetectLanguage(filename string) string {
	return extensionToLanguage[strings.ToLower(filepath.Ext(filename))]
}

// SupportedLanguages lists the languages parsed with tree-sitter.
func SupportedLanguages() []string {
	return []string{
		"go", "python", "javascript", "typescript", "rust",
		"ruby", "java", "c", "cpp", "bash",
	}
}

func grammar(lang string) *sitter.Language {
	switch lang {
	case "go":
		return golang.GetLanguage()
	case "python":
		return python.GetLanguage()
	case "javascript":
		return javascript.GetLanguage()
	case "typescript":
		return typescript.GetLanguage()
	case "rust":
		return rust.GetLanguage()
	case "ruby":
		return ruby.GetLanguage()
	case "java":
		return java.GetLanguage()
	case "c":
		return clang.GetLanguage()
	case "cpp":
		return cpp.GetLanguage()
	case "bash":
		return bash.GetLanguage()
	default:
		return nil
	}
}
