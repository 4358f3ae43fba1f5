package codechunk

import sitter "github.com/smacker/go-tree-sitter"

// fallbackChunks implements C6: the query-less tree-walk chunker used when
// a registered language has no entity query (spec.md §4.6). It applies the
// same size rule as subdivision directly to the parse tree's root
// children, recursing into over-limit children, and then smooths out any
// degenerate leaf chunk narrower than limit/2 by merging it into its
// neighbor where that still fits the limit.
func fallbackChunks(root *sitter.Node, totalLines, limit int) []Chunk {
	children := firstLevelChildren(root)
	chunks, lastEnd := walkFallbackChildren(children, 0, limit)
	if lastEnd < totalLines {
		chunks = append(chunks, Chunk{LineRange: LineRange{Start: lastEnd, End: totalLines}})
	}
	return mergeSmallFallbackChunks(chunks, limit)
}

func walkFallbackChildren(children []*sitter.Node, lastEnd, limit int) ([]Chunk, int) {
	var chunks []Chunk

	for _, child := range children {
		cs := int(child.StartPoint().Row)
		ce := int(child.EndPoint().Row) + 1
		if cs < lastEnd {
			continue
		}

		if cs-lastEnd > limit {
			chunks = append(chunks, Chunk{LineRange: LineRange{Start: lastEnd, End: cs}})
			lastEnd = cs
		}

		width := ce - cs
		switch {
		case width > limit:
			grandchildren := firstLevelChildren(child)
			if len(grandchildren) > 0 {
				sub, advanced := walkFallbackChildren(grandchildren, lastEnd, limit)
				chunks = append(chunks, sub...)
				lastEnd = advanced
			} else {
				chunks = append(chunks, Chunk{LineRange: LineRange{Start: lastEnd, End: ce}})
				lastEnd = ce
			}
		case width+(cs-lastEnd) >= limit:
			chunks = append(chunks, Chunk{LineRange: LineRange{Start: lastEnd, End: ce}})
			lastEnd = ce
		}
	}

	return chunks, lastEnd
}

// mergeSmallFallbackChunks folds any chunk narrower than limit/2 into its
// following neighbor when the combined width still fits limit, per
// spec.md §4.6's minimum-chunk-size rule. A narrow final chunk, which has
// no following neighbor, is folded into its preceding one under the same
// width condition.
func mergeSmallFallbackChunks(chunks []Chunk, limit int) []Chunk {
	if len(chunks) == 0 {
		return chunks
	}

	minWidth := limit / 2
	merged := make([]Chunk, 0, len(chunks))
	current := chunks[0]

	for _, next := range chunks[1:] {
		width := current.LineRange.End - current.LineRange.Start
		combined := next.LineRange.End - current.LineRange.Start
		if width < minWidth && combined <= limit {
			current = Chunk{LineRange: LineRange{Start: current.LineRange.Start, End: next.LineRange.End}}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	if n := len(merged); n > 0 {
		prev := merged[n-1]
		width := current.LineRange.End - current.LineRange.Start
		combined := current.LineRange.End - prev.LineRange.Start
		if width < minWidth && combined <= limit {
			merged[n-1] = Chunk{LineRange: LineRange{Start: prev.LineRange.Start, End: current.LineRange.End}}
			return merged
		}
	}
	merged = append(merged, current)
	return merged
}
