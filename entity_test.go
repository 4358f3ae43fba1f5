package codechunk

import (
	"context"
	"testing"

	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

func TestMergeCommentAndDeriveExtendsOnAdjacency(t *testing.T) {
	comment := span{byteRange: ByteRange{0, 10}, lineRange: LineRange{0, 2}}
	derive := span{byteRange: ByteRange{10, 20}, lineRange: LineRange{2, 3}}

	got := mergeCommentAndDerive(comment, derive)
	if got.lineRange != (LineRange{0, 4}) {
		t.Errorf("adjacent comment+derive merged lineRange = %+v, want {0 4} (extended by one)", got.lineRange)
	}
}

func TestMergeCommentAndDeriveDoesNotExtendWithGap(t *testing.T) {
	comment := span{byteRange: ByteRange{0, 10}, lineRange: LineRange{0, 2}}
	derive := span{byteRange: ByteRange{15, 20}, lineRange: LineRange{5, 6}}

	got := mergeCommentAndDerive(comment, derive)
	if got.lineRange != (LineRange{0, 6}) {
		t.Errorf("non-adjacent comment+derive merged lineRange = %+v, want {0 6} (plain union, no extension)", got.lineRange)
	}
}

func TestFirstLevelChildrenNilNode(t *testing.T) {
	if got := firstLevelChildren(nil); got != nil {
		t.Errorf("firstLevelChildren(nil) = %v, want nil", got)
	}
}

func buildEntitiesFromRust(t *testing.T, source string) []*codeEntity {
	t.Helper()
	lang := rust.GetLanguage()
	tree, err := parseSource(context.Background(), []byte(source), lang)
	if err != nil {
		t.Fatalf("parseSource: %v", err)
	}
	defer tree.Close()

	matches, err := runQuery(mustLoadQuery("rust"), lang, tree.RootNode())
	if err != nil {
		t.Fatalf("runQuery: %v", err)
	}
	groups := groupCaptures(matches)

	var entities []*codeEntity
	src := []byte(source)
	for _, g := range groups {
		if e, ok := buildEntity(g, src); ok {
			entities = append(entities, e)
		}
	}
	return entities
}

func TestBuildEntityFunction(t *testing.T) {
	entities := buildEntitiesFromRust(t, "fn greet() {\n    println!(\"hi\");\n}\n")
	if len(entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(entities))
	}
	e := entities[0]
	if e.kind != Function || e.name != "greet" {
		t.Errorf("entity = {kind:%v name:%q}, want {Function greet}", e.kind, e.name)
	}
	if e.parentName != nil {
		t.Errorf("function entity has non-nil parent: %v", *e.parentName)
	}
}

func TestBuildEntityMethodCarriesParent(t *testing.T) {
	entities := buildEntitiesFromRust(t, "impl Test {\n    fn a(&self) {\n    }\n}\n")
	if len(entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(entities))
	}
	e := entities[0]
	if e.kind != Method || e.name != "a" {
		t.Fatalf("entity = {kind:%v name:%q}, want {Method a}", e.kind, e.name)
	}
	if e.parentName == nil || *e.parentName != "Test" {
		t.Fatalf("parentName = %v, want Test", e.parentName)
	}
	if e.parentLineRange == nil {
		t.Fatal("parentLineRange is nil for a Method entity")
	}
	got := e.toEntity()
	if !(got.ParentLineRange.Start <= got.CompletedLineRange.Start && got.CompletedLineRange.End <= got.ParentLineRange.End) {
		t.Errorf("parent_line_range %+v does not contain completed_line_range %+v", *got.ParentLineRange, got.CompletedLineRange)
	}
}

func TestBuildEntityTypeScriptClassWithConstructorAndMethod(t *testing.T) {
	source := "class Test {\n    constructor() {\n    }\n    render() {\n    }\n}\n"
	lang := typescript.GetLanguage()
	tree, err := parseSource(context.Background(), []byte(source), lang)
	if err != nil {
		t.Fatalf("parseSource: %v", err)
	}
	defer tree.Close()

	matches, err := runQuery(mustLoadQuery("typescript"), lang, tree.RootNode())
	if err != nil {
		t.Fatalf("runQuery: %v", err)
	}
	groups := groupCaptures(matches)

	src := []byte(source)
	var entities []*codeEntity
	for _, g := range groups {
		if e, ok := buildEntity(g, src); ok {
			entities = append(entities, e)
		}
	}
	sortEntitiesByStart(entities)

	if len(entities) != 3 {
		t.Fatalf("got %d entities, want 3 (class, constructor, render)", len(entities))
	}

	var classCount, methodCount int
	for _, e := range entities {
		switch e.kind {
		case Class:
			classCount++
			if e.name != "Test" {
				t.Errorf("class name = %q, want Test", e.name)
			}
		case Method:
			methodCount++
			if e.parentName == nil || *e.parentName != "Test" {
				t.Errorf("method %q parent = %v, want Test", e.name, e.parentName)
			}
		}
	}
	if classCount != 1 || methodCount != 2 {
		t.Errorf("got %d classes and %d methods, want 1 and 2", classCount, methodCount)
	}
}
