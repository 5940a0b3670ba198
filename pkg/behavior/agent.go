// Package behavior holds the boids themselves and the rules that steer them.
//
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds. Every agent looks at every
// other agent (brute force, O(n²) per frame) and steers by three rules:
// cohesion, separation and alignment. See https://en.wikipedia.org/wiki/Boids
//
// World space is the square [-1, 1]², velocities are in world units per
// millisecond.
package behavior

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/geometry"
)

// Physics constants. These are not user tunable.
const (
	MaxVelocity  = 0.001  // hard speed cap, world units per ms
	Margin       = 0.1    // distance from the edge where turning starts
	TurnFactor   = 0.0005 // velocity nudge applied near an edge
	AgentSize    = 0.02   // sprite radius, also widens the edge zone
	InitialSpeed = 0.0005
)

// Agent is one boid. The renderer reads Pos and Vel through the transform buffer.
type Agent struct {
	Pos geometry.Vector2D `json:"pos"`
	Vel geometry.Vector2D `json:"vel"`
}

// NewAgent creates an agent at pos heading at theta radians with the given speed.
func NewAgent(pos geometry.Vector2D, theta, speed float64) Agent {
	return Agent{
		Pos: pos,
		Vel: geometry.NewVectorPolar(speed, theta),
	}
}

// Population is the agent store. The index of an agent is its identity:
// it never changes and matches the instance index handed to the renderer.
type Population []Agent

// NewRandomPopulation spreads count agents uniformly over [-1, 1]² with
// uniform headings in [0, 2π) and the same initial speed.
func NewRandomPopulation(count int, speed float64, rng *rand.Rand) Population {
	if count < 0 {
		count = 0
	}
	pop := make(Population, count)
	for i := range pop {
		pos := geometry.Vector2D{
			X: randomInRange(rng, -1, 1),
			Y: randomInRange(rng, -1, 1),
		}
		pop[i] = NewAgent(pos, randomInRange(rng, 0, 2*math.Pi), speed)
	}
	return pop
}

func randomInRange(rng *rand.Rand, lo, hi float64) float64 {
	return rng.Float64()*(hi-lo) + lo
}
