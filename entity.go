package codechunk

import (
	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"
)

// kindPriority is the fixed order C4 uses to pick a disjoint group's kind
// when more than one <kind>.definition capture coincides at the same
// definitionStart — in practice only Method vs. Class does, since a nested
// method's group also carries its parent's class.definition. Method must
// win over its carried-along parent class.definition (spec.md §4.3's
// method/function tie-break generalizes to this case too).
var kindPriority = []struct {
	kind   EntityKind
	prefix string
}{
	{Method, "method"},
	{Struct, "struct"},
	{Interface, "interface"},
	{Enum, "enum"},
	{Function, "function"},
	{Class, "class"},
}

// buildEntity converts one grouped capture set into a codeEntity. It
// returns ok=false when no recognized <kind>.definition/<kind>.name pair is
// present — the group is skipped, not fatal, per spec.md §4.4/§7.
func buildEntity(g *group, source []byte) (*codeEntity, bool) {
	var kind EntityKind
	var prefix string
	found := false
	for _, kp := range kindPriority {
		if _, ok := g.spans[kp.prefix+".definition"]; ok {
			kind = kp.kind
			prefix = kp.prefix
			found = true
			break
		}
	}
	if !found {
		slog.Default().Debug("codechunk: dropping capture group with no recognized definition", "definitionStart", g.definitionStart)
		return nil, false
	}

	nameSpan, ok := g.spans[prefix+".name"]
	if !ok {
		slog.Default().Debug("codechunk: dropping entity with no name capture", "kind", kind.String(), "definitionStart", g.definitionStart)
		return nil, false
	}
	name := string(source[nameSpan.byteRange.Start:nameSpan.byteRange.End])

	bodySpan := g.spans[prefix+".definition"]

	entity := &codeEntity{
		name:          name,
		kind:          kind,
		bodyByteRange: bodySpan.byteRange,
		bodyLineRange: bodySpan.lineRange,
		children:      firstLevelChildren(bodySpan.node),
	}

	commentSpan, hasComment := g.spans[prefix+".comment"]
	deriveSpan, hasDerive := g.spans[prefix+".derive"]
	switch {
	case hasComment && hasDerive:
		merged := mergeCommentAndDerive(commentSpan, deriveSpan)
		entity.hasComment = true
		entity.commentByteRange = merged.byteRange
		entity.commentLineRange = merged.lineRange
	case hasComment:
		entity.hasComment = true
		entity.commentByteRange = commentSpan.byteRange
		entity.commentLineRange = commentSpan.lineRange
	case hasDerive:
		entity.hasComment = true
		entity.commentByteRange = deriveSpan.byteRange
		entity.commentLineRange = deriveSpan.lineRange
	}

	if kind == Method {
		if classNameSpan, ok := g.spans["method.class.name"]; ok {
			parentName := string(source[classNameSpan.byteRange.Start:classNameSpan.byteRange.End])
			entity.parentName = &parentName
		} else if ifaceNameSpan, ok := g.spans["method.interface.name"]; ok {
			parentName := string(source[ifaceNameSpan.byteRange.Start:ifaceNameSpan.byteRange.End])
			entity.parentName = &parentName
		}

		if classDefSpan, ok := g.spans["class.definition"]; ok {
			lr := classDefSpan.lineRange
			entity.parentLineRange = &lr
		} else if ifaceDefSpan, ok := g.spans["interface.definition"]; ok {
			lr := ifaceDefSpan.lineRange
			entity.parentLineRange = &lr
		}
	}

	return entity, true
}

// mergeCommentAndDerive implements spec.md §4.3's last bullet: union the
// two ranges, and if derive starts exactly where comment ends (no gap),
// extend the merged end by one line so the union has no seam.
func mergeCommentAndDerive(comment, derive span) span {
	merged := mergeSpans(comment, derive)
	if derive.lineRange.Start == comment.lineRange.End {
		merged.lineRange.End++
	}
	return merged
}

// firstLevelChildren returns node's direct children, used by the packer to
// subdivide an oversized entity (spec.md §4.5).
func firstLevelChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	children := make([]*sitter.Node, 0, node.ChildCount())
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c != nil {
			children = append(children, c)
		}
	}
	return children
}
