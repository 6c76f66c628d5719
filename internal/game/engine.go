// Package game implements the drift typing session state machine.
//
// The engine is not safe for concurrent use; it is driven from a single
// event loop which calls Input for key events, Step once per frame and
// AnimationDone when an exit effect has finished playing.
//
// BeginComposition and EndComposition are for hosts that receive IME
// composition events; a terminal delivers composed text as one key event and
// calls Input directly.
package game

import (
	"errors"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/wbdrift/internal/charset"
	"github.com/verte-zerg/wbdrift/internal/generator"
	"github.com/verte-zerg/wbdrift/internal/model"
	"github.com/verte-zerg/wbdrift/internal/stats"
)

var (
	// ErrEmptyMapping is returned when a mapping drill starts without entries.
	ErrEmptyMapping = errors.New("mapping table is empty")
	// ErrNotRunning is returned when ending a session that was never started.
	ErrNotRunning = errors.New("session is not running")
)

// NoCode is the hint shown for a target without a stored code.
const NoCode = "no code"

// Result reports how an input event was handled.
type Result int

const (
	// Ignored means the input was discarded without evaluation.
	Ignored Result = iota
	// Miss means the input did not equal the target.
	Miss
	// Hit means the input equaled the target.
	Hit
)

// Settings are captured when a session starts.
type Settings struct {
	Mode       model.Mode
	Characters []string
	Mapping    model.Mapping
}

// Engine holds the state of one practice session.
type Engine struct {
	gen   *generator.Generator
	speed float64

	running bool
	mode    model.Mode
	chars   []string
	mapping model.Mapping

	target    string
	correct   int
	attempts  int
	startedAt time.Time

	drift drift

	hint      bool
	composing bool
	exiting   generator.Animation
}

// New returns an idle engine whose target drifts speed units per frame on
// each axis.
func New(gen *generator.Generator, speed float64) *Engine {
	return &Engine{
		gen:     gen,
		speed:   speed,
		mode:    model.ModeChars,
		mapping: model.Mapping{},
	}
}

// Start begins a session. Counters are reset and the first target is shown.
func (e *Engine) Start(s Settings, now time.Time) error {
	mode := s.Mode
	if mode == "" {
		mode = model.ModeChars
	}
	if s.Mapping != nil {
		e.mapping = s.Mapping
	}
	if mode == model.ModeMapping && len(e.mapping) == 0 {
		return ErrEmptyMapping
	}
	chars := s.Characters
	if len(chars) == 0 {
		chars = charset.Resolve("")
	}

	e.mode = mode
	e.chars = chars
	e.correct = 0
	e.attempts = 0
	e.startedAt = now
	e.composing = false
	e.exiting = ""
	e.target = ""
	e.drift.vel = vec{X: e.speed, Y: e.speed}
	e.running = true
	e.next()
	return nil
}

// End stops the session and returns its summary.
func (e *Engine) End(now time.Time) (model.SessionSummary, error) {
	if !e.running {
		return model.SessionSummary{}, ErrNotRunning
	}
	speed, accuracy := e.Stats(now)
	e.running = false
	e.exiting = ""
	e.composing = false
	return model.SessionSummary{
		Mode:      e.mode,
		StartedAt: e.startedAt,
		EndedAt:   now,
		Correct:   e.correct,
		Attempts:  e.attempts,
		Speed:     speed,
		Accuracy:  accuracy,
	}, nil
}

// Input compares text with the current target in NFC form. A hit starts an exit
// animation; the next target appears only after AnimationDone.
func (e *Engine) Input(text string) Result {
	if !e.running || e.composing || e.exiting != "" || e.target == "" {
		return Ignored
	}
	if norm.NFC.String(text) != norm.NFC.String(e.target) {
		return Miss
	}
	e.correct++
	e.exiting = e.gen.Animation()
	return Hit
}

// BeginComposition suspends input evaluation while an IME composes text.
func (e *Engine) BeginComposition() {
	e.composing = true
}

// EndComposition resumes evaluation and submits the composed text.
func (e *Engine) EndComposition(text string) Result {
	e.composing = false
	return e.Input(text)
}

// AnimationDone clears the answered target and shows the next one.
func (e *Engine) AnimationDone() {
	if !e.running || e.exiting == "" {
		return
	}
	e.exiting = ""
	e.target = ""
	e.next()
}

// Skip replaces the current target without counting it as correct.
func (e *Engine) Skip() {
	if !e.running {
		return
	}
	e.exiting = ""
	e.next()
}

// Step advances the drift by one frame.
func (e *Engine) Step() {
	if !e.running {
		return
	}
	e.drift.step()
}

// SetBounds sets the largest position the target may occupy.
func (e *Engine) SetBounds(maxX, maxY float64) {
	e.drift.setBounds(maxX, maxY)
}

// SetMapping replaces the table used for mapping drills and hints.
func (e *Engine) SetMapping(m model.Mapping) {
	if m == nil {
		m = model.Mapping{}
	}
	e.mapping = m
}

// Stats returns speed in correct targets per minute and accuracy in percent.
func (e *Engine) Stats(now time.Time) (speed, accuracy int) {
	return stats.SessionMetrics(e.correct, e.attempts, now.Sub(e.startedAt))
}

// ToggleHint flips hint visibility.
func (e *Engine) ToggleHint() {
	e.hint = !e.hint
}

// Hint returns the code hint for the current target. ok is false when hints
// do not apply to the current mode.
func (e *Engine) Hint() (text string, ok bool) {
	if e.mode != model.ModeMapping {
		return "", false
	}
	if !e.hint {
		return "", true
	}
	code := e.mapping[e.target]
	if code == "" {
		return NoCode, true
	}
	return code, true
}

// Running reports whether a session is active.
func (e *Engine) Running() bool { return e.running }

// Target returns the character to type; empty between targets.
func (e *Engine) Target() string { return e.target }

// Correct returns the number of correct answers.
func (e *Engine) Correct() int { return e.correct }

// Attempts returns the number of targets shown.
func (e *Engine) Attempts() int { return e.attempts }

// HintOn reports the hint flag.
func (e *Engine) HintOn() bool { return e.hint }

// Exiting returns the exit animation in progress, if any.
func (e *Engine) Exiting() generator.Animation { return e.exiting }

// Position returns the target's position.
func (e *Engine) Position() (x, y float64) { return e.drift.pos.X, e.drift.pos.Y }

// Velocity returns the drift velocity.
func (e *Engine) Velocity() (x, y float64) { return e.drift.vel.X, e.drift.vel.Y }

// Characters returns the active character set.
func (e *Engine) Characters() []string { return e.chars }

func (e *Engine) next() {
	if !e.running {
		return
	}
	var target string
	if e.mode == model.ModeMapping {
		target = e.gen.MappingKey(e.mapping)
	} else {
		target = e.gen.Char(e.chars)
	}
	if target == "" {
		e.target = ""
		return
	}
	e.target = target
	e.drift.pos.X, e.drift.pos.Y = e.gen.Position(e.drift.maxX, e.drift.maxY)
	e.attempts++
}
