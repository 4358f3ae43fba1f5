package codechunk

import "testing"

func TestLineRangeEmpty(t *testing.T) {
	tests := []struct {
		r        LineRange
		expected bool
	}{
		{LineRange{0, 0}, true},
		{LineRange{5, 5}, true},
		{LineRange{5, 4}, true},
		{LineRange{0, 1}, false},
		{LineRange{3, 10}, false},
	}

	for _, tt := range tests {
		if got := tt.r.Empty(); got != tt.expected {
			t.Errorf("LineRange%+v.Empty() = %v, want %v", tt.r, got, tt.expected)
		}
	}
}

func TestLineRangeIntersect(t *testing.T) {
	tests := []struct {
		a, b     LineRange
		expected LineRange
	}{
		{LineRange{0, 10}, LineRange{5, 15}, LineRange{5, 10}},
		{LineRange{0, 10}, LineRange{10, 20}, LineRange{10, 10}},
		{LineRange{0, 10}, LineRange{20, 30}, LineRange{20, 20}},
		{LineRange{0, 40}, LineRange{0, 40}, LineRange{0, 40}},
	}

	for _, tt := range tests {
		if got := tt.a.Intersect(tt.b); got != tt.expected {
			t.Errorf("%+v.Intersect(%+v) = %+v, want %+v", tt.a, tt.b, got, tt.expected)
		}
	}
}

func TestEntityKindString(t *testing.T) {
	tests := []struct {
		kind     EntityKind
		expected string
	}{
		{Function, "function"},
		{Method, "method"},
		{Class, "class"},
		{Interface, "interface"},
		{Enum, "enum"},
		{Struct, "struct"},
		{EntityKind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("EntityKind(%d).String() = %q, want %q", tt.kind, got, tt.expected)
		}
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.ChunkLineLimit != defaultChunkLineLimit {
		t.Errorf("DefaultOptions().ChunkLineLimit = %d, want %d", opts.ChunkLineLimit, defaultChunkLineLimit)
	}
}

func TestDebugAssertPanicsWhenEnabled(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("debugAssert(false, ...) did not panic with AssertionsEnabled = true")
		}
	}()
	debugAssert(false, "boom %d", 1)
}

func TestDebugAssertSkipsWhenDisabled(t *testing.T) {
	AssertionsEnabled = false
	defer func() { AssertionsEnabled = true }()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("debugAssert panicked even though AssertionsEnabled = false: %v", r)
		}
	}()
	debugAssert(false, "should not panic")
}

func TestCodeEntityStartLine(t *testing.T) {
	e := codeEntity{
		bodyLineRange: LineRange{10, 20},
	}
	if got := e.startLine(); got != 10 {
		t.Errorf("startLine() without comment = %d, want 10", got)
	}

	e.hasComment = true
	e.commentLineRange = LineRange{7, 10}
	if got := e.startLine(); got != 7 {
		t.Errorf("startLine() with comment = %d, want 7", got)
	}
}

func TestCodeEntityToEntity(t *testing.T) {
	name := "Widget"
	parentRange := LineRange{0, 50}
	e := codeEntity{
		name:             "Render",
		kind:             Method,
		bodyLineRange:    LineRange{12, 18},
		hasComment:       true,
		commentLineRange: LineRange{10, 12},
		parentName:       &name,
		parentLineRange:  &parentRange,
	}

	got := e.toEntity()
	if got.Name != "Render" || got.Kind != Method {
		t.Fatalf("toEntity() name/kind = %q/%v, want Render/Method", got.Name, got.Kind)
	}
	if got.CompletedLineRange != (LineRange{10, 18}) {
		t.Errorf("CompletedLineRange = %+v, want {10 18}", got.CompletedLineRange)
	}
	if got.Parent == nil || *got.Parent != "Widget" {
		t.Errorf("Parent = %v, want Widget", got.Parent)
	}
	if got.ParentLineRange == nil || *got.ParentLineRange != parentRange {
		t.Errorf("ParentLineRange = %v, want %+v", got.ParentLineRange, parentRange)
	}
}
