package gooey

import (
	"errors"
	"slices"
	"testing"
)

var (
	poseA = []float64{0, 0, 0, 0, 10, 0, 1, 0, 10, 10, 1, 1}
	poseB = []float64{0, 0, 0, 0, 5, 0, 1, 0, 5, 10, 1, 1}
)

func newTwoPoseAnimator(t *testing.T, duration float64, delay Rule) *MeshAnimator {
	t.Helper()
	a, err := NewMeshAnimator(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.AddStep("a", poseA, Const(duration), nil, "linear", "linear"); err != nil {
		t.Fatal(err)
	}
	if err := a.AddStep("b", poseB, Const(duration), delay, "linear", "linear"); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestMeshAnimatorHalfwayInterpolation(t *testing.T) {
	a := newTwoPoseAnimator(t, 1, nil)
	if err := a.StartAnimation(); err != nil {
		t.Fatal(err)
	}

	tick := a.Advance(0.5)
	if !approxEqual(tick.Horizontal, 0.5, 1e-6) || !approxEqual(tick.Vertical, 0.5, 1e-6) {
		t.Fatalf("fractions = %v/%v, want 0.5/0.5", tick.Horizontal, tick.Vertical)
	}
	x, y := a.Mesh().XY(1)
	if !approxEqual(x, 7.5, 1e-9) {
		t.Errorf("vertex 1 x = %v, want 7.5", x)
	}
	if y != 0 {
		t.Errorf("vertex 1 y = %v, want 0", y)
	}
}

func TestMeshAnimatorFirstStartSeedsPreviousPose(t *testing.T) {
	a := newTwoPoseAnimator(t, 1, nil)
	// Clobber the live buffer; the first start must restore pose[previous].
	a.Mesh().SetXY(1, 99, 99)
	if err := a.StartAnimation(); err != nil {
		t.Fatal(err)
	}
	if a.Step() != 1 || a.PreviousStep() != 0 {
		t.Fatalf("step = %d previous = %d, want 1 and 0", a.Step(), a.PreviousStep())
	}
	if !slices.Equal(a.Mesh().Data, poseA) {
		t.Errorf("mesh = %v, want %v", a.Mesh().Data, poseA)
	}
}

func TestMeshAnimatorReachesTargetExactly(t *testing.T) {
	setup := []float64{0, 0, 0.5, 0.5, 1, 1, 0.25, 0.75, 2, 2, 0.125, 0.875}
	a, err := NewMeshAnimator(setup, nil)
	if err != nil {
		t.Fatal(err)
	}
	open := []float64{0.1, 0.2, 9, 9, 10.3, 0.7, 9, 9, 10.1, 10.9, 9, 9}
	closed := []float64{0.3, 0.1, 9, 9, 5.7, 0.3, 9, 9, 5.9, 10.1, 9, 9}
	if err := a.AddStep("open", open, Const(0.4), nil, "in_back", "out_cubic"); err != nil {
		t.Fatal(err)
	}
	if err := a.AddStep("closed", closed, Const(0.4), Const(10), "out_back", "in_sine"); err != nil {
		t.Fatal(err)
	}

	if err := a.StartAnimation(); err != nil {
		t.Fatal(err)
	}
	var tick Tick
	for range 10 {
		tick = a.Advance(0.1)
		if tick.Completed {
			break
		}
	}
	if !tick.Completed {
		t.Fatal("transition never completed")
	}

	buf := a.Mesh()
	for i := 0; i < buf.Len(); i++ {
		x, y := buf.XY(i)
		if x != closed[i*4] || y != closed[i*4+1] {
			t.Errorf("vertex %d = (%v,%v), want (%v,%v)", i, x, y, closed[i*4], closed[i*4+1])
		}
		u, v := buf.UV(i)
		if u != setup[i*4+2] || v != setup[i*4+3] {
			t.Errorf("vertex %d uv = (%v,%v), want setup (%v,%v)", i, u, v, setup[i*4+2], setup[i*4+3])
		}
	}
}

func TestMeshAnimatorDimensionMismatch(t *testing.T) {
	a := newTwoPoseAnimator(t, 1, nil)
	err := a.AddStep("short", poseA[:8], Const(1), nil, "", "")
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}
	if a.NumSteps() != 2 {
		t.Errorf("NumSteps = %d, want 2", a.NumSteps())
	}

	withSetup, err := NewMeshAnimator(poseA, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := withSetup.AddStep("x", poseA[:4], nil, nil, "", ""); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("setup mismatch err = %v, want ErrDimensionMismatch", err)
	}
}

func TestMeshAnimatorUnknownEasing(t *testing.T) {
	a, _ := NewMeshAnimator(nil, nil)
	err := a.AddStep("a", poseA, nil, nil, "in_wobble", "linear")
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestMeshAnimatorStartNeedsTwoPoses(t *testing.T) {
	a, _ := NewMeshAnimator(nil, nil)
	if err := a.StartAnimation(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("no poses: err = %v, want ErrInvalidConfiguration", err)
	}
	if err := a.AddStep("a", poseA, nil, nil, "", ""); err != nil {
		t.Fatal(err)
	}
	if err := a.StartAnimation(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("one pose: err = %v, want ErrInvalidConfiguration", err)
	}
	if a.Running() {
		t.Error("animator running with one pose")
	}
	if tick := a.Advance(1); tick.Completed || tick.StepChanged {
		t.Errorf("idle tick = %+v, want zero", tick)
	}
}

func TestMeshAnimatorStartOutOfRange(t *testing.T) {
	a := newTwoPoseAnimator(t, 1, nil)
	if err := a.StartAnimation(5); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestMeshAnimatorLoopsAndWraps(t *testing.T) {
	a := newTwoPoseAnimator(t, 0.5, nil)
	if err := a.StartAnimation(); err != nil {
		t.Fatal(err)
	}
	first := a.Advance(0)
	if !first.StepChanged || first.Step != 1 {
		t.Fatalf("first tick = %+v, want StepChanged toward 1", first)
	}

	done := a.Advance(0.5)
	if !done.Completed || done.Step != 1 || done.Vertical != 1 {
		t.Fatalf("completion tick = %+v", done)
	}

	next := a.Advance(0.25)
	if !next.StepChanged || next.Step != 0 {
		t.Fatalf("next tick = %+v, want StepChanged toward 0", next)
	}
	if a.PreviousStep() != 1 {
		t.Errorf("PreviousStep = %d, want 1", a.PreviousStep())
	}
	if !approxEqual(next.Vertical, 0.5, 1e-6) {
		t.Errorf("Vertical = %v, want 0.5", next.Vertical)
	}
}

func TestMeshAnimatorDelayUsesAnimationClock(t *testing.T) {
	a := newTwoPoseAnimator(t, 0.5, Const(1))
	if err := a.StartAnimation(); err != nil {
		t.Fatal(err)
	}
	if tick := a.Advance(0.5); !tick.Completed {
		t.Fatalf("tick = %+v, want Completed", tick)
	}

	tick := a.Advance(0.75)
	if tick.StepChanged || tick.Step != 1 {
		t.Fatalf("during delay tick = %+v, want still at step 1", tick)
	}
	if !a.Running() {
		t.Fatal("animator stopped during delay")
	}

	tick = a.Advance(0.5)
	if !tick.StepChanged || tick.Step != 0 {
		t.Fatalf("after delay tick = %+v, want new leg toward 0", tick)
	}
	// 0.25 of the 0.5 advance overflowed into the new leg.
	if !approxEqual(tick.Vertical, 0.5, 1e-6) {
		t.Errorf("Vertical = %v, want 0.5", tick.Vertical)
	}
}

func TestMeshAnimatorStopIsIdempotent(t *testing.T) {
	a := newTwoPoseAnimator(t, 0.5, nil)
	calls := 0
	a.OnComplete = func(*MeshAnimator, int) { calls++ }
	if err := a.StartAnimation(); err != nil {
		t.Fatal(err)
	}
	a.Advance(0.25)
	a.StopAnimation()
	a.StopAnimation()
	if a.Running() {
		t.Fatal("still running after stop")
	}

	before := slices.Clone(a.Mesh().Data)
	for range 5 {
		a.Advance(0.5)
	}
	if calls != 0 {
		t.Errorf("OnComplete called %d times after stop", calls)
	}
	if !slices.Equal(before, a.Mesh().Data) {
		t.Error("mesh changed after stop")
	}
}

func TestMeshAnimatorStopInsideCompletion(t *testing.T) {
	a := newTwoPoseAnimator(t, 0.5, nil)
	calls := 0
	a.OnComplete = func(m *MeshAnimator, step int) {
		calls++
		if step != 1 {
			t.Errorf("completed step = %d, want 1", step)
		}
		m.StopAnimation()
		m.StopAnimation()
	}
	if err := a.StartAnimation(); err != nil {
		t.Fatal(err)
	}
	a.Advance(0.5)
	a.Advance(0.5)
	a.Advance(0.5)
	if calls != 1 {
		t.Errorf("OnComplete called %d times, want 1", calls)
	}
	if a.Running() {
		t.Error("running after stop in callback")
	}
	if a.Step() != 1 {
		t.Errorf("Step = %d, want 1", a.Step())
	}
}

func TestMeshAnimatorRestartInsideCompletion(t *testing.T) {
	a := newTwoPoseAnimator(t, 0.5, Const(5))
	a.OnComplete = func(m *MeshAnimator, step int) {
		if step == 1 {
			_ = m.StartAnimation(1)
		}
	}
	if err := a.StartAnimation(); err != nil {
		t.Fatal(err)
	}
	a.Advance(0.5)
	// Callback restarted toward step 1; the 5s delay must not be pending.
	tick := a.Advance(0.25)
	if !tick.StepChanged || tick.Step != 1 {
		t.Errorf("tick = %+v, want restarted leg toward 1", tick)
	}
}

func TestMeshAnimatorZeroDuration(t *testing.T) {
	a := newTwoPoseAnimator(t, 0, nil)
	if err := a.StartAnimation(); err != nil {
		t.Fatal(err)
	}
	tick := a.Advance(0)
	if !tick.Completed || tick.Vertical != 1 || tick.Horizontal != 1 {
		t.Errorf("tick = %+v, want immediate completion at 1", tick)
	}
}

func TestMeshAnimatorSeqRuleDuration(t *testing.T) {
	durations := NewSeqRule(func(yield func(float64) bool) {
		for _, d := range []float64{0.5, 1.0} {
			if !yield(d) {
				return
			}
		}
	})
	defer durations.Stop()

	a, _ := NewMeshAnimator(nil, nil)
	if err := a.AddStep("a", poseA, durations, nil, "", ""); err != nil {
		t.Fatal(err)
	}
	if err := a.AddStep("b", poseB, durations, nil, "", ""); err != nil {
		t.Fatal(err)
	}
	if err := a.StartAnimation(); err != nil {
		t.Fatal(err)
	}
	if tick := a.Advance(0.5); !tick.Completed {
		t.Fatalf("first leg (0.5s) tick = %+v, want Completed", tick)
	}
	// Second leg draws 1.0 from the sequence.
	if tick := a.Advance(0.5); tick.Completed || !approxEqual(tick.Vertical, 0.5, 1e-6) {
		t.Errorf("second leg tick = %+v, want halfway", tick)
	}
}

func TestMeshAnimatorDataRoundTripWithoutSetup(t *testing.T) {
	a := newTwoPoseAnimator(t, 1, nil)
	data := a.Data()
	if setup, ok := data.Steps[SetupStep]; !ok || !slices.Equal(setup.Vertices, poseA) {
		t.Fatalf("setup step = %+v, want first pose", data.Steps[SetupStep])
	}

	b, err := NewMeshAnimatorFromData(data)
	if err != nil {
		t.Fatal(err)
	}
	again := b.Data()
	for name, want := range map[string][]float64{"a": poseA, "b": poseB} {
		if got := again.Steps[name].Vertices; !slices.Equal(got, want) {
			t.Errorf("step %q vertices = %v, want %v", name, got, want)
		}
	}

	if err := b.StartAnimation(); err != nil {
		t.Fatal(err)
	}
	b.Advance(0.5)
	if x, _ := b.Mesh().XY(1); !approxEqual(x, 7.5, 1e-9) {
		t.Errorf("reloaded vertex 1 x = %v, want 7.5", x)
	}
}

func TestMeshAnimatorReleaseStopsGenerators(t *testing.T) {
	var released bool
	durations := NewSeqRule(func(yield func(float64) bool) {
		defer func() { released = true }()
		for {
			if !yield(1) {
				return
			}
		}
	})

	a, _ := NewMeshAnimator(nil, nil)
	if err := a.AddStep("a", poseA, durations, nil, "", ""); err != nil {
		t.Fatal(err)
	}
	// Starting targets "b", which pulls its duration from the sequence.
	if err := a.AddStep("b", poseB, durations, durations, "", ""); err != nil {
		t.Fatal(err)
	}
	if err := a.StartAnimation(); err != nil {
		t.Fatal(err)
	}
	a.Advance(0.25)

	a.Release()
	if !released {
		t.Error("sequence still suspended after Release")
	}
	if a.Running() {
		t.Error("animation still running after Release")
	}
	a.Release()
}

func TestMeshAnimatorDataRoundTrip(t *testing.T) {
	setup := []float64{0, 0, 0.5, 0.5, 10, 0, 1, 0.5, 0, 10, 0.5, 1}
	a, err := NewMeshAnimator(setup, nil)
	if err != nil {
		t.Fatal(err)
	}
	open := []float64{0.1, 0.2, 0, 0, 10.000000000000002, 0.3, 0, 0, 0.7, 9.99, 0, 0}
	if err := a.AddStep("open", open, Const(0.7), TriangularRule{Min: 0.3, Max: 2, Mode: 0.5}, "in_back", "out_cubic"); err != nil {
		t.Fatal(err)
	}
	if err := a.AddStep("closed", poseB, Const(0.3), nil, "in_sine", "out_back"); err != nil {
		t.Fatal(err)
	}

	data := a.Data()
	if !slices.Equal(data.StepsOrder, []string{"open", "closed"}) {
		t.Errorf("StepsOrder = %v", data.StepsOrder)
	}
	if len(data.Indices) != 6 {
		t.Errorf("Indices = %v, want fan of 2 triangles", data.Indices)
	}

	b, err := NewMeshAnimatorFromData(data)
	if err != nil {
		t.Fatal(err)
	}
	again := b.Data()
	for name, step := range data.Steps {
		got, ok := again.Steps[name]
		if !ok {
			t.Errorf("step %q missing after reload", name)
			continue
		}
		if !slices.Equal(step.Vertices, got.Vertices) {
			t.Errorf("step %q vertices = %v, want %v", name, got.Vertices, step.Vertices)
		}
		if step.HorizontalEasing != got.HorizontalEasing || step.VerticalEasing != got.VerticalEasing {
			t.Errorf("step %q easing changed", name)
		}
	}
	if *again.Steps["open"].Delay != *data.Steps["open"].Delay {
		t.Errorf("delay rule = %+v, want %+v", again.Steps["open"].Delay, data.Steps["open"].Delay)
	}
}

func TestNewMeshAnimatorFromDataErrors(t *testing.T) {
	tests := []struct {
		name string
		data AnimationData
		want error
	}{
		{
			name: "no setup",
			data: AnimationData{Steps: map[string]StepData{"a": {Vertices: poseA}}, StepsOrder: []string{"a"}},
			want: ErrInsufficientData,
		},
		{
			name: "missing step",
			data: AnimationData{Steps: map[string]StepData{SetupStep: {Vertices: poseA}}, StepsOrder: []string{"a"}},
			want: ErrInsufficientData,
		},
		{
			name: "bad mode",
			data: AnimationData{MeshMode: "triangles", Steps: map[string]StepData{SetupStep: {Vertices: poseA}}},
			want: ErrInvalidConfiguration,
		},
		{
			name: "mismatch",
			data: AnimationData{
				Steps:      map[string]StepData{SetupStep: {Vertices: poseA}, "a": {Vertices: poseA[:8]}},
				StepsOrder: []string{"a"},
			},
			want: ErrDimensionMismatch,
		},
		{
			name: "bad rule",
			data: AnimationData{
				Steps:      map[string]StepData{SetupStep: {Vertices: poseA}, "a": {Vertices: poseA, Delay: &RuleSpec{Kind: "gaussian"}}},
				StepsOrder: []string{"a"},
			},
			want: ErrInvalidConfiguration,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMeshAnimatorFromData(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewMeshAnimatorFromDataDefaults(t *testing.T) {
	a, err := NewMeshAnimatorFromData(AnimationData{
		Steps: map[string]StepData{
			SetupStep: {Vertices: poseA},
			"open":    {Vertices: poseA},
			"closed":  {Vertices: poseB},
		},
		StepsOrder: []string{"open", "closed"},
	})
	if err != nil {
		t.Fatal(err)
	}
	p := a.Pose(0)
	if p.HorizontalEasing != DefaultHorizontalEasing || p.VerticalEasing != DefaultVerticalEasing {
		t.Errorf("easing = %s/%s", p.HorizontalEasing, p.VerticalEasing)
	}
	if got := p.Duration.Next(); got != DefaultStepDuration {
		t.Errorf("duration = %v, want %v", got, DefaultStepDuration)
	}
	if !slices.Equal(a.StepNames(), []string{"open", "closed"}) {
		t.Errorf("StepNames = %v", a.StepNames())
	}
}
