package behavior

import "github.com/lao-tseu-is-alive/go-boids-instanced/pkg/geometry"

// Each rule scans every other agent of pop once and returns the velocity
// change it wants for agent i. Agent i is skipped by index, never by distance,
// and ranges are strict: a neighbour exactly at the range is not seen.

// Cohesion steers agent i toward the centroid of the agents within VisualRange.
func Cohesion(i int, pop Population, s Settings) geometry.Vector2D {
	me := pop[i].Pos
	center := geometry.Zero
	neighbors := 0

	for j := range pop {
		if j == i {
			continue
		}
		if pop[j].Pos.DistanceTo(me) < s.VisualRange {
			center = center.Add(pop[j].Pos)
			neighbors++
		}
	}

	if neighbors == 0 {
		return geometry.Zero
	}
	center = center.Scale(1 / float64(neighbors))
	return center.Sub(me).Scale(s.CohesionFactor)
}

// Separation pushes agent i away from every agent within SeparationRange.
// The push is not averaged: more (or closer) intruders push harder.
func Separation(i int, pop Population, s Settings) geometry.Vector2D {
	me := pop[i].Pos
	avoid := geometry.Zero

	for j := range pop {
		if j == i {
			continue
		}
		if pop[j].Pos.DistanceTo(me) < s.SeparationRange {
			avoid = avoid.Add(me.Sub(pop[j].Pos))
		}
	}
	return avoid.Scale(s.SeparationFactor)
}

// Alignment steers agent i by the mean velocity of the agents within VisualRange.
func Alignment(i int, pop Population, s Settings) geometry.Vector2D {
	me := pop[i].Pos
	avgVel := geometry.Zero
	neighbors := 0

	for j := range pop {
		if j == i {
			continue
		}
		if pop[j].Pos.DistanceTo(me) < s.VisualRange {
			avgVel = avgVel.Add(pop[j].Vel)
			neighbors++
		}
	}

	if neighbors == 0 {
		return geometry.Zero
	}
	return avgVel.Scale(1 / float64(neighbors)).Scale(s.AlignmentFactor)
}

// Steer sums the contributions of the enabled rules for agent i.
func Steer(i int, pop Population, s Settings) geometry.Vector2D {
	vel := geometry.Zero
	if s.CohesionEnabled {
		vel = vel.Add(Cohesion(i, pop, s))
	}
	if s.SeparationEnabled {
		vel = vel.Add(Separation(i, pop, s))
	}
	if s.AlignmentEnabled {
		vel = vel.Add(Alignment(i, pop, s))
	}
	return vel
}
