package codechunk

import (
	"bytes"
	"context"
	"fmt"
)

// countLines counts the number of lines in source per spec.md §3: a line
// terminator (\n, optionally preceded by \r) ends a line, and a final
// unterminated line still counts. An empty source has zero lines.
func countLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	count := bytes.Count(source, []byte("\n"))
	if source[len(source)-1] != '\n' {
		count++
	}
	return count
}

// Split is the package's public entry point (spec.md §5): it detects
// filename's language from its extension, parses source with the matching
// tree-sitter grammar, and returns source cut into line-bounded chunks
// sized by opts.ChunkLineLimit, aligned to semantic entities where the
// language has an entity query and to a plain line-based tree walk
// otherwise. A chunk can be wider than the limit when it is closed at the
// end of an entity that did not fit after the lines preceding it, or when a
// single syntax node is itself wider than the limit.
func Split(filename string, source string, opts Options) ([]Chunk, error) {
	if opts.ChunkLineLimit <= 0 {
		return nil, fmt.Errorf("%w: ChunkLineLimit must be positive, got %d", ErrInvalidOptions, opts.ChunkLineLimit)
	}

	entry := lookupByFilename(filename)
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filename)
	}

	grammar := entry.resolveGrammar()
	if grammar == nil {
		return nil, fmt.Errorf("%w: no grammar available for %s", ErrParseFailure, entry.name)
	}

	src := []byte(source)
	totalLines := countLines(src)
	if totalLines == 0 {
		return nil, nil
	}

	tree, err := parseSource(context.Background(), src, grammar)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()

	if entry.query == "" {
		return fallbackChunks(root, totalLines, opts.ChunkLineLimit), nil
	}

	matches, err := runQuery(entry.query, grammar, root)
	if err != nil {
		return nil, err
	}

	groups := groupCaptures(matches)
	entities := make([]*codeEntity, 0, len(groups))
	for _, g := range groups {
		if e, ok := buildEntity(g, src); ok {
			entities = append(entities, e)
		}
	}
	sortEntitiesByStart(entities)

	return packEntities(entities, opts.ChunkLineLimit, totalLines), nil
}
