package gooey

import (
	"errors"
	"log/slog"
	"math"
	"slices"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 50, 40, true},
		{"left edge", 10, 40, true},
		{"top right corner", 110, 70, true},
		{"left of", 9, 40, false},
		{"above", 50, 71, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
	if r.Empty() {
		t.Error("Empty() = true for sized rect")
	}
	if !(Rect{Width: 10}).Empty() {
		t.Error("Empty() = false for zero height")
	}
}

func TestKindAndEventNames(t *testing.T) {
	if PartBell.String() != "bell" || PartGooey.String() != "gooey" || PartKind(9).String() != "unknown" {
		t.Error("PartKind names wrong")
	}
	names := []string{
		EventCreatureAdded.String(),
		EventCreatureRemoved.String(),
		EventCreatureWrapped.String(),
		EventCreatureFault.String(),
	}
	if !slices.Equal(names, []string{"added", "removed", "wrapped", "fault"}) {
		t.Errorf("event names = %v", names)
	}
}

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	defer SetLogger(nil)

	SetLogger(slog.Default())
	if Logger() != slog.Default() {
		t.Error("Logger did not return installed logger")
	}
	SetLogger(nil)
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("default logger should be disabled")
	}
}

// --- VertexBuffer ---

func TestVertexBufferAccessors(t *testing.T) {
	src := []float64{0, 0, 0.5, 0.5, 10, 0, 1, 0.5, 0, 10, 0.5, 1, 7}
	b := NewVertexBuffer(src)
	src[0] = 99
	if b.Data[0] != 0 {
		t.Error("NewVertexBuffer did not copy")
	}
	if b.Len() != 3 {
		t.Errorf("Len = %d, want 3 (trailing partial record ignored)", b.Len())
	}

	b.SetXY(1, 4, 5)
	if x, y := b.XY(1); x != 4 || y != 5 {
		t.Errorf("XY(1) = (%v,%v), want (4,5)", x, y)
	}
	if u, v := b.UV(1); u != 1 || v != 0.5 {
		t.Errorf("UV(1) = (%v,%v), want (1,0.5)", u, v)
	}

	c := b.Clone()
	c.SetXY(0, -1, -1)
	if x, _ := b.XY(0); x != 0 {
		t.Error("Clone shares storage")
	}
}

func TestVertexBufferBoundsCentroid(t *testing.T) {
	b := NewVertexBuffer([]float64{
		5, 5, 0, 0,
		0, 0, 0, 0,
		10, 0, 0, 0,
		10, 10, 0, 0,
		0, 10, 0, 0,
	})
	if got := b.Bounds(); got != (Rect{X: 0, Y: 0, Width: 10, Height: 10}) {
		t.Errorf("Bounds = %+v", got)
	}
	c := b.Centroid(1)
	if c.X != 5 || c.Y != 5 {
		t.Errorf("Centroid(1) = %v, want (5,5)", c)
	}
	if got := b.Centroid(9); got != (Vec2{}) {
		t.Errorf("Centroid past end = %v, want zero", got)
	}
	if got := b.RightmostX(-5); got != 5 {
		t.Errorf("RightmostX(-5) = %v, want 5", got)
	}
	if got := b.RightmostX(-50); got != 0 {
		t.Errorf("RightmostX(-50) = %v, want 0", got)
	}
	if (&VertexBuffer{}).Bounds() != (Rect{}) {
		t.Error("empty Bounds not zero")
	}
}

func TestFanIndices(t *testing.T) {
	if FanIndices(2) != nil {
		t.Error("FanIndices(2) should be nil")
	}
	got := FanIndices(5)
	want := []uint16{0, 1, 2, 0, 2, 3, 0, 3, 4, 0, 4, 1}
	if !slices.Equal(got, want) {
		t.Errorf("FanIndices(5) = %v, want %v", got, want)
	}
}

// --- Rules ---

func TestEvalRule(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		want float64
	}{
		{"nil", nil, 0},
		{"const", Const(0.75), 0.75},
		{"negative", Const(-1), 0},
		{"nan", RuleFunc(func() float64 { return math.NaN() }), 0},
		{"func", RuleFunc(func() float64 { return 2 }), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalRule(tt.rule); got != tt.want {
				t.Errorf("evalRule = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeqRuleExhausts(t *testing.T) {
	r := NewSeqRule(slices.Values([]float64{1, 2}))
	defer r.Stop()
	got := []float64{r.Next(), r.Next(), r.Next()}
	if !slices.Equal(got, []float64{1, 2, 0}) {
		t.Errorf("sequence = %v, want [1 2 0]", got)
	}
}

func TestTriangularBounds(t *testing.T) {
	if got := triangular(0, 0.3, 2, 0.5); got != 0.3 {
		t.Errorf("u=0 -> %v, want min", got)
	}
	if got := triangular(0.9999999, 0.3, 2, 0.5); !approxEqual(got, 2, 1e-2) {
		t.Errorf("u~1 -> %v, want ~max", got)
	}
	c := (0.5 - 0.3) / (2 - 0.3)
	if got := triangular(c, 0.3, 2, 0.5); !approxEqual(got, 0.5, 1e-9) {
		t.Errorf("u=c -> %v, want mode", got)
	}
	if got := triangular(0.5, 1, 1, 1); got != 1 {
		t.Errorf("degenerate -> %v, want 1", got)
	}

	r := TriangularRule{Min: 0.3, Max: 2, Mode: 0.5}
	for range 100 {
		v := r.Next()
		if v < 0.3 || v > 2 {
			t.Fatalf("TriangularRule.Next = %v outside [0.3, 2]", v)
		}
	}
}

func TestRuleSpec(t *testing.T) {
	var nilSpec *RuleSpec
	if r, err := nilSpec.Rule(); r != nil || err != nil {
		t.Errorf("nil spec = %v, %v", r, err)
	}
	r, err := (&RuleSpec{Value: 1.5}).Rule()
	if err != nil || r != Const(1.5) {
		t.Errorf("const spec = %v, %v", r, err)
	}
	if _, err := (&RuleSpec{Kind: "triangular", Min: 2, Max: 1}).Rule(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("inverted triangular err = %v", err)
	}
	if _, err := (&RuleSpec{Kind: "poisson"}).Rule(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("unknown kind err = %v", err)
	}
	if specForRule(RuleFunc(func() float64 { return 1 })) != nil {
		t.Error("func rule should not persist")
	}
}

// --- Easing ---

func TestEasingLookup(t *testing.T) {
	fn, err := Easing("")
	if err != nil {
		t.Fatal(err)
	}
	if got := fn(0.5, 0, 1, 1); got != 0.5 {
		t.Errorf("default easing at 0.5 = %v, want linear 0.5", got)
	}
	for _, name := range EasingNames() {
		fn, err := Easing(name)
		if err != nil {
			t.Errorf("Easing(%q): %v", name, err)
			continue
		}
		if got := fn(1, 0, 1, 1); !approxEqual(float64(got), 1, 1e-2) {
			t.Errorf("%s(1) = %v, want 1", name, got)
		}
	}
	if _, err := Easing("in_wobble"); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("unknown easing err = %v", err)
	}
	if !slices.IsSorted(EasingNames()) {
		t.Error("EasingNames not sorted")
	}
}
