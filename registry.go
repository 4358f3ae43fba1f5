package codechunk

import (
	"embed"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/protobuf"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/sql"
	"github.com/smacker/go-tree-sitter/swift"
	"github.com/smacker/go-tree-sitter/toml"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

//go:embed queries/*.scm
var queriesFS embed.FS

func mustLoadQuery(name string) string {
	data, err := queriesFS.ReadFile("queries/" + name + ".scm")
	if err != nil {
		// The query set is a build-time asset embedded from this repo; a
		// missing file is a packaging bug, not a runtime condition.
		panic("codechunk: missing embedded query " + name + ": " + err.Error())
	}
	return string(data)
}

// grammarFactory lazily constructs the tree-sitter grammar for a language.
// A nil factory means no grammar dependency is available in this build;
// Split reports ErrParseFailure for extensions routed to it.
type grammarFactory func() *sitter.Language

// registryEntry is one row of the language registry: a display name, the
// extensions that route to it, how to obtain its grammar, and its entity
// query text (empty routes through the C6 fallback chunker).
type registryEntry struct {
	name       string
	extensions []string
	grammar    grammarFactory
	query      string
}

// languageRegistry is the process-wide, immutable table described by
// spec.md §4.1. Built once in init(); safe for concurrent reads thereafter.
var languageRegistry = []registryEntry{
	{name: "rust", extensions: []string{".rs"}, grammar: func() *sitter.Language { return rust.GetLanguage() }, query: mustLoadQuery("rust")},
	{name: "typescript", extensions: []string{".ts", ".mts", ".cts"}, grammar: func() *sitter.Language { return typescript.GetLanguage() }, query: mustLoadQuery("typescript")},
	{name: "tsx", extensions: []string{".tsx"}, grammar: func() *sitter.Language { return tsx.GetLanguage() }, query: mustLoadQuery("typescript")},
	{name: "java", extensions: []string{".java"}, grammar: func() *sitter.Language { return java.GetLanguage() }, query: mustLoadQuery("java")},
	{name: "python", extensions: []string{".py", ".pyi"}, grammar: func() *sitter.Language { return python.GetLanguage() }, query: mustLoadQuery("python")},
	{name: "solidity", extensions: []string{".sol"}, grammar: nil, query: mustLoadQuery("solidity")},

	// Additional grammars registered with an empty query: these route
	// through the C6 line fallback chunker rather than entity extraction.
	{name: "go", extensions: []string{".go"}, grammar: func() *sitter.Language { return golang.GetLanguage() }},
	{name: "c", extensions: []string{".c", ".h"}, grammar: func() *sitter.Language { return c.GetLanguage() }},
	{name: "cpp", extensions: []string{".cc", ".cpp", ".cxx", ".hpp", ".hh"}, grammar: func() *sitter.Language { return cpp.GetLanguage() }},
	{name: "javascript", extensions: []string{".js", ".jsx", ".mjs", ".cjs"}, grammar: func() *sitter.Language { return javascript.GetLanguage() }},
	{name: "toml", extensions: []string{".toml"}, grammar: func() *sitter.Language { return toml.GetLanguage() }},
	{name: "protobuf", extensions: []string{".proto"}, grammar: func() *sitter.Language { return protobuf.GetLanguage() }},
	{name: "swift", extensions: []string{".swift"}, grammar: func() *sitter.Language { return swift.GetLanguage() }},
	{name: "php", extensions: []string{".php"}, grammar: func() *sitter.Language { return php.GetLanguage() }},
	{name: "sql", extensions: []string{".sql"}, grammar: func() *sitter.Language { return sql.GetLanguage() }},
	{name: "ruby", extensions: []string{".rb"}, grammar: func() *sitter.Language { return ruby.GetLanguage() }},
	{name: "bash", extensions: []string{".sh", ".bash"}, grammar: func() *sitter.Language { return bash.GetLanguage() }},

	// No grammar sub-package exists for these anywhere in the retrieved
	// pack; registered for extension visibility only. See DESIGN.md.
	{name: "markdown", extensions: []string{".md", ".markdown"}, grammar: nil},
	{name: "r", extensions: []string{".r"}, grammar: nil},
}

// extensionIndex maps a lowercase extension to its registry entry,
// first-match-wins for collisions (documented policy: ".h" resolves to C).
var extensionIndex map[string]*registryEntry

func init() {
	extensionIndex = make(map[string]*registryEntry, len(languageRegistry)*2)
	for i := range languageRegistry {
		entry := &languageRegistry[i]
		for _, ext := range entry.extensions {
			if _, exists := extensionIndex[ext]; exists {
				continue
			}
			extensionIndex[ext] = entry
		}
	}
}

// lookupByFilename resolves a file path to its registry entry by lowercased
// extension. Returns nil if the extension is not registered.
func lookupByFilename(path string) *registryEntry {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil
	}
	return extensionIndex[ext]
}

// grammarCache memoizes constructed *sitter.Language values; grammarFactory
// values are cheap wrappers but the underlying tree-sitter language structs
// are safe and useful to share across calls.
var (
	grammarCache   = make(map[string]*sitter.Language)
	grammarCacheMu sync.RWMutex
)

func (e *registryEntry) resolveGrammar() *sitter.Language {
	if e.grammar == nil {
		return nil
	}

	grammarCacheMu.RLock()
	if g, ok := grammarCache[e.name]; ok {
		grammarCacheMu.RUnlock()
		return g
	}
	grammarCacheMu.RUnlock()

	grammarCacheMu.Lock()
	defer grammarCacheMu.Unlock()
	if g, ok := grammarCache[e.name]; ok {
		return g
	}
	g := e.grammar()
	grammarCache[e.name] = g
	return g
}
