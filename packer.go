package codechunk

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// defaultPreambleGapLines is the Open Question default from spec.md §9:
// the very first entity in a file uses this fixed gap threshold, instead of
// the chunk limit, to decide whether its leading preamble is split into its
// own chunk.
const defaultPreambleGapLines = 10

// sortEntitiesByStart orders codeEntity values by completed-range start,
// the ordering the packer and the public Entity list both require.
func sortEntitiesByStart(entities []*codeEntity) {
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].startLine() < entities[j].startLine()
	})
}

// packer accumulates the C5 entity-packing state across one packEntities
// call: the line cursor, the chunk list, and the entities pending in the
// chunk currently being built.
type packer struct {
	limit   int
	chunks  []Chunk
	lastEnd int
	pending []*codeEntity
}

// closeUpTo flushes the pending chunk with line_range [lastEnd, end),
// widening end to cover any already-pending entity that reaches further
// (this can happen when a small nested entity, e.g. a method, is queued
// alongside its still-open enclosing class) so no entity's trailing lines
// are ever silently dropped from the chunk that lists it.
//
// If end does not advance past lastEnd (can happen when a widened close
// lands exactly on the cursor), pending entities are never discarded: they
// are folded into the most recently emitted chunk — widening it if
// necessary — or, if no chunk has been emitted yet, turned into a fresh one
// of their own. Does nothing only when pending is already empty.
func (p *packer) closeUpTo(end int) {
	for _, e := range p.pending {
		if e.endLine() > end {
			end = e.endLine()
		}
	}

	if end <= p.lastEnd {
		if len(p.pending) > 0 {
			p.foldPendingIntoLastChunk(end)
		}
		return
	}

	chunkRange := LineRange{Start: p.lastEnd, End: end}
	entities := make([]Entity, 0, len(p.pending))
	for _, e := range p.pending {
		ent := e.toEntity()
		ent.ChunkLineRange = ent.CompletedLineRange.Intersect(chunkRange)
		entities = append(entities, ent)
	}
	p.chunks = append(p.chunks, Chunk{LineRange: chunkRange, Entities: entities})
	p.lastEnd = end
	p.pending = nil
}

// foldPendingIntoLastChunk places entities that closeUpTo could not flush
// into their own range: widen the previous chunk to cover them if one
// exists, otherwise emit a new chunk spanning just the pending entities.
// Never silently drops an entity.
func (p *packer) foldPendingIntoLastChunk(end int) {
	if len(p.chunks) == 0 {
		start := p.pending[0].startLine()
		for _, e := range p.pending {
			if e.startLine() < start {
				start = e.startLine()
			}
			if e.endLine() > end {
				end = e.endLine()
			}
		}
		if end < start {
			end = start
		}
		chunkRange := LineRange{Start: start, End: end}
		entities := make([]Entity, 0, len(p.pending))
		for _, e := range p.pending {
			ent := e.toEntity()
			ent.ChunkLineRange = ent.CompletedLineRange.Intersect(chunkRange)
			entities = append(entities, ent)
		}
		p.chunks = append(p.chunks, Chunk{LineRange: chunkRange, Entities: entities})
		if end > p.lastEnd {
			p.lastEnd = end
		}
		p.pending = nil
		return
	}

	last := &p.chunks[len(p.chunks)-1]
	if end > last.LineRange.End {
		last.LineRange.End = end
		if end > p.lastEnd {
			p.lastEnd = end
		}
	}
	for _, e := range p.pending {
		ent := e.toEntity()
		ent.ChunkLineRange = ent.CompletedLineRange.Intersect(last.LineRange)
		last.Entities = append(last.Entities, ent)
	}
	p.pending = nil
}

// packEntities implements the C5 entity packer of spec.md §4.5: entities
// are assumed pre-sorted by completed_line_range.start. totalLines is the
// source's total line count, used for the trailing flush.
//
// Entities produced by C3/C4 are not always disjoint: a Class/Interface
// entity's range legitimately contains its Method entities' ranges (S4).
// When an oversized entity is subdivided, every later entity still fully
// nested inside its range is handled as part of that subdivision — with
// ownership switching to the nested entity for its own lines — rather than
// being revisited on its own turn, where its start would already be behind
// the packer's cursor and it would be dropped.
func packEntities(entities []*codeEntity, limit int, totalLines int) []Chunk {
	p := &packer{limit: limit}

	i := 0
	for i < len(entities) {
		e := entities[i]
		start := e.startLine()
		end := e.endLine()
		debugAssert(end >= start, "entity %q has inverted range [%d, %d)", e.name, start, end)

		gap := start - p.lastEnd
		threshold := limit
		if i == 0 {
			threshold = defaultPreambleGapLines
		}
		if gap > threshold {
			p.closeUpTo(start)
		}

		width := end - start
		if width > limit {
			p.closeUpTo(start)

			j := i + 1
			var nested []*codeEntity
			for j < len(entities) && entities[j].endLine() <= end {
				nested = append(nested, entities[j])
				j++
			}

			subChunks, newLastEnd := subdivideEntityWithMembers(e, nested, p.lastEnd, limit)
			p.chunks = append(p.chunks, subChunks...)
			p.lastEnd = newLastEnd
			i = j
			continue
		}

		gap = start - p.lastEnd
		if width+gap > limit {
			p.pending = append(p.pending, e)
			p.closeUpTo(end)
			i++
			continue
		}

		p.pending = append(p.pending, e)
		i++
	}

	if p.lastEnd < totalLines || len(p.pending) > 0 {
		p.closeUpTo(totalLines)
	}

	return p.chunks
}

// ownerChunk builds a subdivision chunk carrying exactly one entity
// annotation — the entity being subdivided — per spec.md §4.5.
func ownerChunk(start, end int, owner *codeEntity) Chunk {
	chunkRange := LineRange{Start: start, End: end}
	ent := owner.toEntity()
	ent.ChunkLineRange = ent.CompletedLineRange.Intersect(chunkRange)
	return Chunk{LineRange: chunkRange, Entities: []Entity{ent}}
}

// subdivideEntity recurses into an oversized entity's first-level syntax
// children to cut it into chunks no larger than limit, per spec.md §4.5's
// Subdivision rules.
func subdivideEntity(owner *codeEntity, lastEnd, limit int) ([]Chunk, int) {
	return subdivideEntityWithMembers(owner, nil, lastEnd, limit)
}

// subdivideEntityWithMembers subdivides owner the same way subdivideEntity
// does, except that members — entities fully nested inside owner's range,
// e.g. a class's methods — each get their own ownership of their lines
// instead of being folded silently into owner's chunks. Gaps between
// members (and before the first / after the last) stay owned by owner.
func subdivideEntityWithMembers(owner *codeEntity, members []*codeEntity, lastEnd, limit int) ([]Chunk, int) {
	var chunks []Chunk
	cursor := lastEnd

	for _, m := range members {
		if m.startLine() > cursor {
			gapChunks, advanced := subdivideOwnerGap(owner, cursor, m.startLine(), limit)
			chunks = append(chunks, gapChunks...)
			cursor = advanced
		}
		if cursor < m.startLine() {
			cursor = m.startLine()
		}

		memberChunks, advanced := subdivideEntity(m, cursor, limit)
		chunks = append(chunks, memberChunks...)
		cursor = advanced
	}

	if cursor < owner.endLine() {
		gapChunks, advanced := subdivideOwnerGap(owner, cursor, owner.endLine(), limit)
		chunks = append(chunks, gapChunks...)
		cursor = advanced
	}

	return chunks, cursor
}

// subdivideOwnerGap cuts the [start, end) span owned by owner — content not
// claimed by any nested member — into chunks no wider than limit. It walks
// those of owner's first-level syntax children that lie entirely inside
// this span when there are any, and falls back to plain fixed-width line
// cuts when there are none (e.g. a synthetic entity built without a parse
// tree, or a gap between members of a class whose body node spans them).
func subdivideOwnerGap(owner *codeEntity, start, end, limit int) ([]Chunk, int) {
	if filtered := filterChildrenInRange(owner.children, start, end); len(filtered) > 0 {
		chunks, advanced := subdivideChildren(filtered, owner, start, limit)
		if advanced < end {
			chunks = append(chunks, ownerChunk(advanced, end, owner))
			advanced = end
		}
		return chunks, advanced
	}

	if end-start <= limit {
		return []Chunk{ownerChunk(start, end, owner)}, end
	}

	var chunks []Chunk
	cursor := start
	for end-cursor > limit {
		chunks = append(chunks, ownerChunk(cursor, cursor+limit, owner))
		cursor += limit
	}
	if end > cursor {
		chunks = append(chunks, ownerChunk(cursor, end, owner))
	}
	return chunks, end
}

// filterChildrenInRange returns the subset of children whose line span
// lies entirely inside [start, end).
func filterChildrenInRange(children []*sitter.Node, start, end int) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range children {
		cs := int(c.StartPoint().Row)
		ce := int(c.EndPoint().Row) + 1
		if cs >= start && ce <= end {
			out = append(out, c)
		}
	}
	return out
}

func subdivideChildren(children []*sitter.Node, owner *codeEntity, lastEnd, limit int) ([]Chunk, int) {
	var chunks []Chunk

	for _, child := range children {
		cs := int(child.StartPoint().Row)
		ce := int(child.EndPoint().Row) + 1
		if cs < lastEnd {
			continue
		}

		if cs-lastEnd > limit {
			chunks = append(chunks, ownerChunk(lastEnd, cs, owner))
			lastEnd = cs
		}

		width := ce - cs
		switch {
		case width > limit:
			grandchildren := firstLevelChildren(child)
			if len(grandchildren) > 0 {
				subChunks, advanced := subdivideChildren(grandchildren, owner, lastEnd, limit)
				chunks = append(chunks, subChunks...)
				lastEnd = advanced
			} else {
				chunks = append(chunks, ownerChunk(lastEnd, ce, owner))
				lastEnd = ce
			}
		case width+(cs-lastEnd) >= limit:
			chunks = append(chunks, ownerChunk(lastEnd, ce, owner))
			lastEnd = ce
		}
	}

	return chunks, lastEnd
}
