// Package physics wraps a Chipmunk2D space as the marble jar.
//
// A [World] holds the static boundaries of the jar:
//
//   - [Floor]: a segment along y = 0
//   - [LeftWall], [RightWall]: segments rising from the floor at x = 0 and x = width
//
// A [Factory] builds one dynamic circle body per marble, above the visible top of the
// jar, and registers it with the world. The world uses a Y-up axis and radians; mapping to
// screen space happens in package sim.
//
// # Ownership
//
// A World and every body it hands out belong to a single goroutine. Call [World.Dispose]
// when the jar is unmounted.
package physics
