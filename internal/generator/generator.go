// Package generator picks practice targets and their presentation.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/wbdrift/internal/model"
)

// Animation names an exit effect played after a correct answer.
type Animation string

const (
	FadeOut   Animation = "fade-out"
	Shrink    Animation = "shrink"
	RotateOut Animation = "rotate-out"
	FloatUp   Animation = "float-up"
)

// Animations lists every exit effect.
var Animations = []Animation{FadeOut, Shrink, RotateOut, FloatUp}

// Generator produces randomized targets.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Char selects one character uniformly from chars. It returns "" for an empty set.
func (g *Generator) Char(chars []string) string {
	if len(chars) == 0 {
		return ""
	}
	return chars[g.rnd.Intn(len(chars))]
}

// MappingKey selects one key of the mapping uniformly.
func (g *Generator) MappingKey(mapping model.Mapping) string {
	// Sorted so a fixed seed gives a fixed sequence.
	return g.Char(mapping.Keys())
}

// Position returns a random point in [0, maxX) x [0, maxY).
func (g *Generator) Position(maxX, maxY float64) (x, y float64) {
	if maxX > 0 {
		x = g.rnd.Float64() * maxX
	}
	if maxY > 0 {
		y = g.rnd.Float64() * maxY
	}
	return x, y
}

// Animation selects an exit effect.
func (g *Generator) Animation() Animation {
	return Animations[g.rnd.Intn(len(Animations))]
}
