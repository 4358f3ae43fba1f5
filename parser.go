package codechunk

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// parserPool recycles tree-sitter parsers across Split calls; each call
// still owns its own tree, cursor, and produced chunks (spec.md §5).
var parserPool = sync.Pool{
	New: func() any { return sitter.NewParser() },
}

func getParser() *sitter.Parser { return parserPool.Get().(*sitter.Parser) }
func putParser(p *sitter.Parser) { parserPool.Put(p) }

// parseSource parses source with the given grammar and returns its tree.
// The caller owns the returned tree and must Close it.
func parseSource(ctx context.Context, source []byte, grammar *sitter.Language) (*sitter.Tree, error) {
	parser := getParser()
	defer putParser(parser)

	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, ErrParseFailure
	}
	return tree, nil
}

// rawMatch is one match of the compiled query: the full set of
// (captureName, node) pairs produced by the query engine for a single
// pattern occurrence, in the order the engine reports them.
type rawMatch struct {
	captures []rawCapture
}

type rawCapture struct {
	name string
	node *sitter.Node
}

// runQuery compiles queryText against grammar and runs it over root,
// returning every match in source order. The compiled query and its cursor
// are closed before runQuery returns; the returned nodes remain valid as
// long as tree is not closed.
func runQuery(queryText string, grammar *sitter.Language, root *sitter.Node) ([]rawMatch, error) {
	if queryText == "" {
		return nil, nil
	}

	q, err := sitter.NewQuery([]byte(queryText), grammar)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryCompile, err)
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	var matches []rawMatch
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		rm := rawMatch{captures: make([]rawCapture, 0, len(m.Captures))}
		for _, c := range m.Captures {
			rm.captures = append(rm.captures, rawCapture{
				name: q.CaptureNameForId(c.Index),
				node: c.Node,
			})
		}
		matches = append(matches, rm)
	}
	return matches, nil
}
