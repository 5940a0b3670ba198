package behavior

import "github.com/lao-tseu-is-alive/go-boids-instanced/pkg/geometry"

// edge is where the soft turn starts on each side of [-1, 1].
const edge = 1.0 - Margin - AgentSize

// Integrate applies the steering change to a, moves it by dt milliseconds and
// biases its velocity away from any edge it is close to.
//
// The speed cap is applied before the move, the edge bias after it, so the bias
// only shows up in the next frame's move. Near an edge the stored velocity
// can therefore exceed MaxVelocity by up to √2·TurnFactor until the next
// frame clamps it. Agents can still leave [-1, 1] for a while: there is no wall.
func Integrate(a *Agent, steer geometry.Vector2D, dt float64) {
	a.Vel = a.Vel.Add(steer)

	if a.Vel.Len() > MaxVelocity {
		a.Vel = a.Vel.Normalize().Scale(MaxVelocity)
	}

	a.Pos = a.Pos.Add(a.Vel.Scale(dt))

	// Screen Edges (Soft turn)
	if a.Pos.X < -edge {
		a.Vel.X += TurnFactor
	}
	if a.Pos.X > edge {
		a.Vel.X -= TurnFactor
	}
	if a.Pos.Y < -edge {
		a.Vel.Y += TurnFactor
	}
	if a.Pos.Y > edge {
		a.Vel.Y -= TurnFactor
	}
}

// Step runs the rules and the integrator over pop in index order, in place.
// Agent i is fully updated before agent i+1 is examined, so later agents see
// the new state of earlier ones within the same frame. visit, if not nil, is
// called right after each agent is integrated.
func Step(pop Population, s Settings, dt float64, visit func(i int, a *Agent)) {
	for i := range pop {
		steer := Steer(i, pop, s)
		Integrate(&pop[i], steer, dt)
		if visit != nil {
			visit(i, &pop[i])
		}
	}
}
