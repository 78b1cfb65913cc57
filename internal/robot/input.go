package robot

import "sync"

// Input is the operator's gamepad as the robot loop sees it.
type Input interface {
	RightX() float64
	AButton() bool
	BButton() bool
}

// TargetSource is implemented by inputs that can request an explicit target
// heading. A pending target is delivered once.
type TargetSource interface {
	PendingTarget() (float64, bool)
}

// Clocked inputs are told the loop time before each tick is read.
type Clocked interface {
	Seek(t float64)
}

// Segment holds an input state over [T0, T1).
type Segment struct {
	T0     float64
	T1     float64
	RightX float64
	A      bool
	B      bool
	Target *float64
}

func (s Segment) covers(t float64) bool {
	return t >= s.T0 && t < s.T1
}

// ScriptedInput replays segments against the loop clock. Where segments
// overlap the first one wins; outside every segment the stick is centred and
// no button is held.
type ScriptedInput struct {
	segs    []Segment
	cur     int
	applied int
}

func NewScriptedInput(segs []Segment) *ScriptedInput {
	cp := make([]Segment, len(segs))
	copy(cp, segs)
	return &ScriptedInput{segs: cp, cur: -1, applied: -1}
}

func (s *ScriptedInput) Seek(t float64) {
	s.cur = -1
	for i, seg := range s.segs {
		if seg.covers(t) {
			s.cur = i
			return
		}
	}
}

func (s *ScriptedInput) active() (Segment, bool) {
	if s.cur < 0 {
		return Segment{}, false
	}
	return s.segs[s.cur], true
}

func (s *ScriptedInput) RightX() float64 {
	seg, _ := s.active()
	return seg.RightX
}

func (s *ScriptedInput) AButton() bool {
	seg, _ := s.active()
	return seg.A
}

func (s *ScriptedInput) BButton() bool {
	seg, _ := s.active()
	return seg.B
}

// PendingTarget fires on the first tick of a segment that carries a target.
func (s *ScriptedInput) PendingTarget() (float64, bool) {
	seg, ok := s.active()
	if !ok || seg.Target == nil || s.applied == s.cur {
		return 0, false
	}
	s.applied = s.cur
	return *seg.Target, true
}

// LatchedInput is fed by an interactive front-end. The stick position
// persists; button presses and targets are consumed by the next tick.
type LatchedInput struct {
	mu        sync.Mutex
	rightX    float64
	a, b      bool
	target    float64
	hasTarget bool
}

func NewLatchedInput() *LatchedInput {
	return &LatchedInput{}
}

func (l *LatchedInput) SetRightX(v float64) {
	l.mu.Lock()
	l.rightX = clampAxis(v)
	l.mu.Unlock()
}

// Nudge moves the stick by delta and returns the new position.
func (l *LatchedInput) Nudge(delta float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rightX = clampAxis(l.rightX + delta)
	return l.rightX
}

func (l *LatchedInput) PressA() {
	l.mu.Lock()
	l.a = true
	l.mu.Unlock()
}

func (l *LatchedInput) PressB() {
	l.mu.Lock()
	l.b = true
	l.mu.Unlock()
}

func (l *LatchedInput) RequestTarget(v float64) {
	l.mu.Lock()
	l.target, l.hasTarget = v, true
	l.mu.Unlock()
}

func (l *LatchedInput) RightX() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rightX
}

func (l *LatchedInput) AButton() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	a := l.a
	l.a = false
	return a
}

func (l *LatchedInput) BButton() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.b
	l.b = false
	return b
}

func (l *LatchedInput) PendingTarget() (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.target, l.hasTarget
	l.hasTarget = false
	return v, ok
}

func clampAxis(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
