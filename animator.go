package gooey

import (
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Defaults applied to steps loaded from documents that omit them.
const (
	DefaultStepDuration     = 0.5
	DefaultHorizontalEasing = "in_back"
	DefaultVerticalEasing   = "out_cubic"
)

// MeshModeTriangleFan is the only mesh mode supported by creatures: vertex 0
// is the hub used as the bell's centering offset.
const MeshModeTriangleFan = "triangle_fan"

// MeshPose is one named, complete vertex-array snapshot of a body part's mesh,
// plus the timing used when animating toward it.
type MeshPose struct {
	Name     string
	Vertices []float64

	// Duration is the time taken to reach this pose. Delay is the pause after
	// reaching it before the next transition begins; nil means none.
	Duration Rule
	Delay    Rule

	HorizontalEasing string
	VerticalEasing   string

	hEase ease.TweenFunc
	vEase ease.TweenFunc
}

// Tick reports the state of an animator after one Advance call.
type Tick struct {
	// Step is the index of the pose being animated toward.
	Step int
	// StepChanged is true on the first tick of a new transition. Listeners
	// reset their per-leg accumulators on it.
	StepChanged bool
	Horizontal  float64
	Vertical    float64
	// Completed is true on the tick a transition reached both targets.
	Completed bool
}

// MeshAnimator animates a mesh's vertices from one pose to the next in a loop.
// Horizontal and vertical coordinates are eased independently, which gives
// the anticipation/overshoot look when the two easings differ.
//
// The animator owns the live VertexBuffer. Texture coordinates are taken from
// the setup pose (or the first pose when there is none) and never change.
//
// There is no global clock: call Advance from the animation phase of the
// frame, separately from the physics step.
type MeshAnimator struct {
	poses   []MeshPose
	setup   []float64
	indices []uint16
	mesh    *VertexBuffer

	step         int
	previousStep int
	horizontal   float64
	vertical     float64

	hTween *gween.Tween
	vTween *gween.Tween

	running     bool
	delaying    bool
	delayLeft   float64
	seeded      bool
	stepChanged bool
	gen         uint64

	// OnComplete, if set, is called when a transition reaches its pose and
	// before the next one is scheduled. It may call StopAnimation or
	// StartAnimation; either takes over scheduling.
	OnComplete func(a *MeshAnimator, step int)
}

// NewMeshAnimator creates an animator whose live mesh starts at the setup
// vertices. setup may be nil, in which case the first added pose supplies the
// texture coordinates. indices are the fixed render indices; nil generates a
// triangle fan once the vertex count is known.
func NewMeshAnimator(setup []float64, indices []uint16) (*MeshAnimator, error) {
	a := &MeshAnimator{}
	if setup != nil {
		if len(setup)%VertexStride != 0 {
			return nil, fmt.Errorf("setup vertices length %d not a multiple of %d: %w",
				len(setup), VertexStride, ErrDimensionMismatch)
		}
		a.setup = append([]float64(nil), setup...)
		a.mesh = NewVertexBuffer(setup)
	}
	if indices != nil {
		a.indices = append([]uint16(nil), indices...)
	}
	return a, nil
}

// AddStep appends a pose. It fails with ErrDimensionMismatch when the vertex
// count differs from the setup pose or the poses already added, and with
// ErrInvalidConfiguration for unknown easing names. A nil duration defaults
// to one second.
func (a *MeshAnimator) AddStep(name string, vertices []float64, duration, delay Rule, hEasing, vEasing string) error {
	if len(vertices)%VertexStride != 0 {
		return fmt.Errorf("step %q: vertices length %d not a multiple of %d: %w",
			name, len(vertices), VertexStride, ErrDimensionMismatch)
	}
	want := -1
	switch {
	case len(a.poses) > 0:
		want = len(a.poses[0].Vertices)
	case a.setup != nil:
		want = len(a.setup)
	}
	if want >= 0 && want != len(vertices) {
		return fmt.Errorf("step %q: mismatched number of vertices: %d vs %d: %w",
			name, want, len(vertices), ErrDimensionMismatch)
	}

	hFn, err := Easing(hEasing)
	if err != nil {
		return fmt.Errorf("step %q horizontal: %w", name, err)
	}
	vFn, err := Easing(vEasing)
	if err != nil {
		return fmt.Errorf("step %q vertical: %w", name, err)
	}
	if duration == nil {
		duration = Const(1.0)
	}

	a.poses = append(a.poses, MeshPose{
		Name:             name,
		Vertices:         append([]float64(nil), vertices...),
		Duration:         duration,
		Delay:            delay,
		HorizontalEasing: hEasing,
		VerticalEasing:   vEasing,
		hEase:            hFn,
		vEase:            vFn,
	})

	if a.mesh == nil {
		a.mesh = NewVertexBuffer(vertices)
	}
	if a.indices == nil && a.mesh.Len() >= 3 {
		a.indices = FanIndices(a.mesh.Len())
	}
	return nil
}

// Mesh returns the live vertex buffer. The animator keeps ownership; callers
// may read it and render it but must not resize it.
func (a *MeshAnimator) Mesh() *VertexBuffer { return a.mesh }

// Indices returns the fixed render indices.
func (a *MeshAnimator) Indices() []uint16 { return a.indices }

// NumSteps returns the number of poses.
func (a *MeshAnimator) NumSteps() int { return len(a.poses) }

// Pose returns the pose at index i.
func (a *MeshAnimator) Pose(i int) MeshPose { return a.poses[i] }

// StepNames returns the pose names in order.
func (a *MeshAnimator) StepNames() []string {
	names := make([]string, len(a.poses))
	for i := range a.poses {
		names[i] = a.poses[i].Name
	}
	return names
}

// StepName returns the name of pose i, or "" when out of range.
func (a *MeshAnimator) StepName(i int) string {
	if i < 0 || i >= len(a.poses) {
		return ""
	}
	return a.poses[i].Name
}

// Step returns the index of the pose being animated toward. It stays the same
// during a post-transition delay.
func (a *MeshAnimator) Step() int { return a.step }

// PreviousStep returns the index of the pose being animated from.
func (a *MeshAnimator) PreviousStep() int { return a.previousStep }

// Fractions returns the current eased horizontal and vertical fractions.
func (a *MeshAnimator) Fractions() (horizontal, vertical float64) {
	return a.horizontal, a.vertical
}

// Running reports whether a transition or post-transition delay is in flight.
func (a *MeshAnimator) Running() bool { return a.running }

// nextStep returns the step after the current one, wrapping to 0.
func (a *MeshAnimator) nextStep() int {
	step := a.step + 1
	if step >= len(a.poses) {
		step = 0
	}
	return step
}

// StartAnimation begins transitioning toward step, or toward the next step
// when none is given. With fewer than two poses, or an out-of-range step, it
// does nothing and returns ErrInvalidConfiguration.
func (a *MeshAnimator) StartAnimation(step ...int) error {
	n := len(a.poses)
	if n < 2 {
		Logger().Debug("mesh animator: not enough poses to animate", "poses", n)
		return fmt.Errorf("start animation with %d poses: %w", n, ErrInvalidConfiguration)
	}

	target := a.nextStep()
	if len(step) > 0 {
		target = step[0]
	}
	if target < 0 || target >= n {
		return fmt.Errorf("start animation at step %d of %d: %w", target, n, ErrInvalidConfiguration)
	}

	prev := target - 1
	if prev < 0 {
		prev = n - 1
	}
	a.previousStep = prev
	a.step = target

	if !a.seeded {
		src := a.poses[prev].Vertices
		for i := 0; i+1 < len(src); i += VertexStride {
			a.mesh.Data[i] = src[i]
			a.mesh.Data[i+1] = src[i+1]
		}
		a.seeded = true
	}

	pose := &a.poses[target]
	dur := float32(evalRule(pose.Duration))
	a.horizontal = 0
	a.vertical = 0
	a.hTween = gween.New(0, 1, dur, pose.hEase)
	a.vTween = gween.New(0, 1, dur, pose.vEase)

	a.running = true
	a.delaying = false
	a.delayLeft = 0
	a.stepChanged = true
	a.gen++

	a.apply()
	return nil
}

// StopAnimation cancels the in-flight transition or pending delay without
// firing OnComplete. Calling it again is a no-op. It is safe to call from
// within OnComplete.
func (a *MeshAnimator) StopAnimation() {
	if !a.running {
		return
	}
	a.running = false
	a.delaying = false
	a.delayLeft = 0
	a.hTween = nil
	a.vTween = nil
	a.gen++
}

// Release stops the animation and releases generator rules (such as SeqRule)
// held by the poses. The animator must not be started again afterwards.
func (a *MeshAnimator) Release() {
	a.StopAnimation()
	for i := range a.poses {
		for _, r := range []Rule{a.poses[i].Duration, a.poses[i].Delay} {
			if s, ok := r.(interface{ Stop() }); ok {
				s.Stop()
			}
		}
	}
}

// Advance moves the animation clock forward by dt seconds and rewrites the
// live mesh. When a transition completes it waits for the target pose's delay
// (measured on this same clock) and then starts the next transition.
func (a *MeshAnimator) Advance(dt float64) Tick {
	if !a.running {
		return a.tick()
	}

	if a.delaying {
		a.delayLeft -= dt
		if a.delayLeft > 0 {
			return a.tick()
		}
		overflow := -a.delayLeft
		a.delaying = false
		if err := a.StartAnimation(); err != nil {
			a.running = false
			return a.tick()
		}
		dt = overflow
	}

	h, hDone := a.hTween.Update(float32(dt))
	v, vDone := a.vTween.Update(float32(dt))
	if hDone {
		h = 1
	}
	if vDone {
		v = 1
	}
	a.horizontal = float64(h)
	a.vertical = float64(v)
	a.apply()

	t := a.tick()
	if hDone && vDone {
		t.Completed = true
		a.complete()
	}
	return t
}

// tick snapshots the reported state and clears the step-changed flag.
func (a *MeshAnimator) tick() Tick {
	t := Tick{
		Step:        a.step,
		StepChanged: a.stepChanged,
		Horizontal:  a.horizontal,
		Vertical:    a.vertical,
	}
	a.stepChanged = false
	return t
}

// complete handles the end of a transition.
func (a *MeshAnimator) complete() {
	gen := a.gen
	if a.OnComplete != nil {
		a.OnComplete(a, a.step)
		if a.gen != gen {
			return
		}
	}

	delay := evalRule(a.poses[a.step].Delay)
	if delay > 0 {
		a.delaying = true
		a.delayLeft = delay
		return
	}
	if err := a.StartAnimation(); err != nil {
		a.running = false
	}
}

// apply writes lerp(previous pose, target pose) into the live mesh. x uses
// the horizontal fraction and y the vertical. A fraction of exactly 1 writes
// the target coordinate verbatim.
func (a *MeshAnimator) apply() {
	in := a.poses[a.previousStep].Vertices
	out := a.poses[a.step].Vertices
	h, v := a.horizontal, a.vertical
	verts := a.mesh.Data

	for x := 0; x+1 < len(in); x += VertexStride {
		y := x + 1
		if h == 1 {
			verts[x] = out[x]
		} else {
			verts[x] = in[x] + (out[x]-in[x])*h
		}
		if v == 1 {
			verts[y] = out[y]
		} else {
			verts[y] = in[y] + (out[y]-in[y])*v
		}
	}
}

// AnimationData is the persisted form of a MeshAnimator.
type AnimationData struct {
	MeshMode   string              `json:"mesh_mode,omitempty"`
	Indices    []uint16            `json:"indices,omitempty"`
	Steps      map[string]StepData `json:"steps"`
	StepsOrder []string            `json:"steps_order"`
}

// StepData is the persisted form of one pose.
type StepData struct {
	Vertices         []float64 `json:"vertices"`
	Duration         *RuleSpec `json:"duration,omitempty"`
	Delay            *RuleSpec `json:"delay,omitempty"`
	HorizontalEasing string    `json:"horizontal_easing,omitempty"`
	VerticalEasing   string    `json:"vertical_easing,omitempty"`
}

// NewMeshAnimatorFromData reconstructs an animator by replaying the stored
// steps through AddStep in order. The setup step must be present.
func NewMeshAnimatorFromData(data AnimationData) (*MeshAnimator, error) {
	if data.MeshMode != "" && data.MeshMode != MeshModeTriangleFan {
		return nil, fmt.Errorf("mesh mode %q: %w", data.MeshMode, ErrInvalidConfiguration)
	}
	setup, ok := data.Steps[SetupStep]
	if !ok {
		return nil, fmt.Errorf("animation has no %s step: %w", SetupStep, ErrInsufficientData)
	}

	a, err := NewMeshAnimator(setup.Vertices, data.Indices)
	if err != nil {
		return nil, err
	}

	for _, name := range data.StepsOrder {
		step, ok := data.Steps[name]
		if !ok {
			return nil, fmt.Errorf("step %q listed but not stored: %w", name, ErrInsufficientData)
		}
		duration, err := step.Duration.Rule()
		if err != nil {
			return nil, fmt.Errorf("step %q duration: %w", name, err)
		}
		if duration == nil {
			duration = Const(DefaultStepDuration)
		}
		delay, err := step.Delay.Rule()
		if err != nil {
			return nil, fmt.Errorf("step %q delay: %w", name, err)
		}
		hEasing := step.HorizontalEasing
		if hEasing == "" {
			hEasing = DefaultHorizontalEasing
		}
		vEasing := step.VerticalEasing
		if vEasing == "" {
			vEasing = DefaultVerticalEasing
		}
		if err := a.AddStep(name, step.Vertices, duration, delay, hEasing, vEasing); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Data serializes the animator's poses. Vertex arrays are copied verbatim so
// a reload reproduces them exactly.
func (a *MeshAnimator) Data() AnimationData {
	data := AnimationData{
		MeshMode: MeshModeTriangleFan,
		Indices:  append([]uint16(nil), a.indices...),
		Steps:    make(map[string]StepData, len(a.poses)+1),
	}
	switch {
	case a.setup != nil:
		data.Steps[SetupStep] = StepData{Vertices: append([]float64(nil), a.setup...)}
	case len(a.poses) > 0:
		// The first pose supplied the texture coordinates.
		data.Steps[SetupStep] = StepData{Vertices: append([]float64(nil), a.poses[0].Vertices...)}
	}
	for i := range a.poses {
		p := &a.poses[i]
		data.StepsOrder = append(data.StepsOrder, p.Name)
		data.Steps[p.Name] = StepData{
			Vertices:         append([]float64(nil), p.Vertices...),
			Duration:         specForRule(p.Duration),
			Delay:            specForRule(p.Delay),
			HorizontalEasing: p.HorizontalEasing,
			VerticalEasing:   p.VerticalEasing,
		}
	}
	return data
}
