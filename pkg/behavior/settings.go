package behavior

import (
	"math"
	"sync/atomic"
)

// Settings controls the flocking rules.
// It is read once per frame; the UI owns writes, the simulation only reads.
type Settings struct {
	CohesionEnabled bool    `json:"cohesion" yaml:"cohesion"`
	CohesionFactor  float64 `json:"cohesionFactor" yaml:"cohesionFactor"`

	SeparationEnabled bool    `json:"separation" yaml:"separation"`
	SeparationFactor  float64 `json:"separationFactor" yaml:"separationFactor"`
	SeparationRange   float64 `json:"separationRange" yaml:"separationRange"` // Personal space radius

	AlignmentEnabled bool    `json:"alignment" yaml:"alignment"`
	AlignmentFactor  float64 `json:"alignmentFactor" yaml:"alignmentFactor"`

	VisualRange float64 `json:"visualRange" yaml:"visualRange"` // How far can they see?
}

// DefaultSettings are the values the demo starts with.
func DefaultSettings() Settings {
	return Settings{
		CohesionEnabled:   true,
		CohesionFactor:    0.00001,
		SeparationEnabled: true,
		SeparationFactor:  0.00001,
		SeparationRange:   0.01,
		AlignmentEnabled:  true,
		AlignmentFactor:   0.0001,
		VisualRange:       0.1,
	}
}

// SettingsSource hands out one consistent Settings value per call.
type SettingsSource interface {
	Load() Settings
}

// Load lets a plain Settings value act as its own (immutable) source.
func (s Settings) Load() Settings { return s }

// AtomicSettings stores every field in its own atomic word so a UI goroutine
// can write while the simulation goroutine reads, without torn scalars.
// No field depends on another, so per-field atomicity is enough.
type AtomicSettings struct {
	cohesion   atomic.Bool
	separation atomic.Bool
	alignment  atomic.Bool

	cohesionFactor   atomic.Uint64
	separationFactor atomic.Uint64
	separationRange  atomic.Uint64
	alignmentFactor  atomic.Uint64
	visualRange      atomic.Uint64
}

var _ SettingsSource = (*AtomicSettings)(nil)

// NewAtomicSettings returns a store initialised with s.
func NewAtomicSettings(s Settings) *AtomicSettings {
	a := &AtomicSettings{}
	a.Store(s)
	return a
}

// Store publishes every field of s.
func (a *AtomicSettings) Store(s Settings) {
	a.cohesion.Store(s.CohesionEnabled)
	a.separation.Store(s.SeparationEnabled)
	a.alignment.Store(s.AlignmentEnabled)
	a.cohesionFactor.Store(math.Float64bits(s.CohesionFactor))
	a.separationFactor.Store(math.Float64bits(s.SeparationFactor))
	a.separationRange.Store(math.Float64bits(s.SeparationRange))
	a.alignmentFactor.Store(math.Float64bits(s.AlignmentFactor))
	a.visualRange.Store(math.Float64bits(s.VisualRange))
}

// Load reads every field into a snapshot.
func (a *AtomicSettings) Load() Settings {
	return Settings{
		CohesionEnabled:   a.cohesion.Load(),
		CohesionFactor:    math.Float64frombits(a.cohesionFactor.Load()),
		SeparationEnabled: a.separation.Load(),
		SeparationFactor:  math.Float64frombits(a.separationFactor.Load()),
		SeparationRange:   math.Float64frombits(a.separationRange.Load()),
		AlignmentEnabled:  a.alignment.Load(),
		AlignmentFactor:   math.Float64frombits(a.alignmentFactor.Load()),
		VisualRange:       math.Float64frombits(a.visualRange.Load()),
	}
}
