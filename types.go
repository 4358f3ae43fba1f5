// Package codechunk splits source code into line-bounded chunks aligned to
// semantic entities (functions, methods, classes, interfaces, enums), using
// tree-sitter grammars and per-language capture queries where available and
// falling back to a line-based tree walk otherwise.
package codechunk

import (
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// EntityKind is the closed set of entity tags the grouper can produce.
type EntityKind int

const (
	Function EntityKind = iota
	Method
	Class
	Interface
	Enum
	Struct
)

func (k EntityKind) String() string {
	switch k {
	case Function:
		return "function"
	case Method:
		return "method"
	case Class:
		return "class"
	case Interface:
		return "interface"
	case Enum:
		return "enum"
	case Struct:
		return "struct"
	default:
		return "unknown"
	}
}

// LineRange is a zero-based, half-open line span [Start, End).
type LineRange struct {
	Start int
	End   int
}

// Empty reports whether the range contains no lines.
func (r LineRange) Empty() bool { return r.Start >= r.End }

// Intersect returns the overlap of r and other, which is empty if they do
// not overlap.
func (r LineRange) Intersect(other LineRange) LineRange {
	start := max(r.Start, other.Start)
	end := min(r.End, other.End)
	if end < start {
		end = start
	}
	return LineRange{Start: start, End: end}
}

// ByteRange is a zero-based, half-open byte span [Start, End) into the
// original source.
type ByteRange struct {
	Start int
	End   int
}

// Entity is one semantic declaration overlapping a chunk.
type Entity struct {
	Name string
	Kind EntityKind

	// CompletedLineRange is the full span of the declaration, including its
	// leading comment/derive range when present.
	CompletedLineRange LineRange

	// ChunkLineRange is CompletedLineRange intersected with the enclosing
	// chunk's LineRange.
	ChunkLineRange LineRange

	// Parent is the owning class/interface name, set only for Method.
	Parent *string

	// ParentLineRange is the owning class/interface's declaration span, set
	// only for Method.
	ParentLineRange *LineRange
}

// Chunk is a contiguous line range of the source plus the entities
// overlapping it, ordered by CompletedLineRange.Start.
type Chunk struct {
	LineRange LineRange
	Entities  []Entity
}

// Options configures Split. ChunkLineLimit is the only configuration
// surface the spec defines.
type Options struct {
	ChunkLineLimit int
}

// defaultChunkLineLimit is used by DefaultOptions for callers that want a
// sane default instead of validating their own.
const defaultChunkLineLimit = 40

// DefaultOptions returns Options with a reasonable default line limit.
func DefaultOptions() Options {
	return Options{ChunkLineLimit: defaultChunkLineLimit}
}

// Sentinel errors returned by Split. Per-entity problems (missing name,
// unrecognized definition key) are not represented here: they are skipped
// during grouping/building rather than propagated.
var (
	ErrUnsupportedLanguage = errors.New("codechunk: unsupported language")
	ErrParseFailure        = errors.New("codechunk: parse failure")
	ErrQueryCompile        = errors.New("codechunk: query compile error")
	ErrInvalidOptions      = errors.New("codechunk: invalid options")
)

// AssertionsEnabled gates the internal invariant checks in the packer.
// Disable it in release builds that want to trust the packer rather than
// panic on a broken invariant.
var AssertionsEnabled = true

func debugAssert(cond bool, format string, args ...any) {
	if !AssertionsEnabled || cond {
		return
	}
	panic(fmt.Sprintf("codechunk: assertion failed: "+format, args...))
}

// codeEntity is the internal, packer-facing representation of a grouped
// capture: Entity plus byte ranges and the first-level child syntax nodes
// used to subdivide an oversized entity.
type codeEntity struct {
	name string
	kind EntityKind

	commentByteRange ByteRange
	commentLineRange LineRange
	hasComment       bool

	bodyByteRange ByteRange
	bodyLineRange LineRange

	parentName      *string
	parentLineRange *LineRange

	children []*sitter.Node
}

// startLine is the line the entity's completed range begins at: the
// comment start if present, else the body start.
func (e codeEntity) startLine() int {
	if e.hasComment {
		return min(e.commentLineRange.Start, e.bodyLineRange.Start)
	}
	return e.bodyLineRange.Start
}

func (e codeEntity) endLine() int {
	return e.bodyLineRange.End
}

func (e codeEntity) toEntity() Entity {
	return Entity{
		Name:               e.name,
		Kind:               e.kind,
		CompletedLineRange: LineRange{Start: e.startLine(), End: e.endLine()},
		Parent:             e.parentName,
		ParentLineRange:    e.parentLineRange,
	}
}
