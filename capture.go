package codechunk

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// span is a merged capture: a byte/line range plus the node(s) that
// contributed to it. Multiple captures sharing one name within a match are
// folded into a single span per spec.md §4.3 step 2 (min start, max end).
type span struct {
	byteRange ByteRange
	lineRange LineRange
	node      *sitter.Node // representative node; used for children on *.definition
}

func spanOf(n *sitter.Node) span {
	return span{
		byteRange: ByteRange{Start: int(n.StartByte()), End: int(n.EndByte())},
		lineRange: LineRange{Start: int(n.StartPoint().Row), End: int(n.EndPoint().Row) + 1},
		node:      n,
	}
}

func mergeSpans(a, b span) span {
	start := a.byteRange.Start
	if b.byteRange.Start < start {
		start = b.byteRange.Start
	}
	end := a.byteRange.End
	if b.byteRange.End > end {
		end = b.byteRange.End
	}
	lineStart := a.lineRange.Start
	if b.lineRange.Start < lineStart {
		lineStart = b.lineRange.Start
	}
	lineEnd := a.lineRange.End
	if b.lineRange.End > lineEnd {
		lineEnd = b.lineRange.End
	}
	node := a.node
	if b.byteRange.Start < a.byteRange.Start {
		node = b.node
	}
	return span{
		byteRange: ByteRange{Start: start, End: end},
		lineRange: LineRange{Start: lineStart, End: lineEnd},
		node:      node,
	}
}

// parentCaptureNames is the exact parent vocabulary of spec.md §4.3: these
// captures are held aside and copied into every entity emitted later in the
// same match, rather than consumed by the entity whose definition they sit
// alongside.
var parentCaptureNames = map[string]bool{
	"class.definition":      true,
	"interface.definition":  true,
	"method.class.name":     true,
	"method.interface.name": true,
}

func isDefinitionCapture(name string) bool {
	return strings.HasSuffix(name, ".definition")
}

// isNameCapture reports whether name is a <kind>.name trigger capture —
// exactly two dotted components, as opposed to the three-component
// method.class.name / method.interface.name parent captures.
func isNameCapture(name string) bool {
	parts := strings.Split(name, ".")
	return len(parts) == 2 && parts[1] == "name"
}

// group is one logical entity's accumulated captures, keyed by the byte
// offset of the most recent .definition capture seen in the match before
// its <kind>.name capture (or of the name itself when none was seen).
type group struct {
	definitionStart int
	spans           map[string]span
}

// groupCaptures implements the C3 grouping algorithm: iterate a raw match's
// captures in source order, merge repeated names, route parent captures
// aside, and emit one group per <kind>.name capture — letting a class
// contain many method captures from a single match. Groups across all
// matches are collected into one map keyed by definitionStart so that a
// later match's group overwrites an earlier one anchored at the same
// start (the documented "method wins" tie-break).
func groupCaptures(matches []rawMatch) []*group {
	byStart := make(map[int]*group)
	var order []int

	for _, m := range matches {
		captures := append([]rawCapture(nil), m.captures...)
		sort.SliceStable(captures, func(i, j int) bool {
			return captures[i].node.StartByte() < captures[j].node.StartByte()
		})

		current := make(map[string]span)
		parent := make(map[string]span)
		definitionStart := 0
		haveDefinitionStart := false

		emit := func() {
			if len(current) == 0 {
				return
			}
			g := &group{definitionStart: definitionStart, spans: make(map[string]span, len(current)+len(parent))}
			for k, v := range parent {
				g.spans[k] = v
			}
			for k, v := range current {
				g.spans[k] = v
			}
			if _, exists := byStart[definitionStart]; !exists {
				order = append(order, definitionStart)
			}
			byStart[definitionStart] = g
			current = make(map[string]span)
		}

		for _, c := range captures {
			s := spanOf(c.node)

			if isDefinitionCapture(c.name) {
				definitionStart = int(c.node.StartByte())
				haveDefinitionStart = true
			}

			if parentCaptureNames[c.name] {
				if existing, ok := parent[c.name]; ok {
					parent[c.name] = mergeSpans(existing, s)
				} else {
					parent[c.name] = s
				}
				continue
			}

			if existing, ok := current[c.name]; ok {
				current[c.name] = mergeSpans(existing, s)
			} else {
				current[c.name] = s
			}

			if isNameCapture(c.name) {
				if !haveDefinitionStart {
					definitionStart = int(c.node.StartByte())
				}
				emit()
			}
		}
	}

	sort.Ints(order)
	groups := make([]*group, 0, len(order))
	for _, start := range order {
		groups = append(groups, byStart[start])
	}
	return groups
}
