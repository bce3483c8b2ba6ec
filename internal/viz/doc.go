// Package viz draws the marble jar in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: steps the jar once per tick and renders it next to the stats pane
//   - [Canvas]: Braille-based pixel canvas with a color per cell
//   - [Projection]: fits the playfield onto the canvas
//
// # Key Bindings
//
//	G - Drop a green marble
//	R - Drop a red marble
//	T - Cycle color themes
//	? - Show help overlay
//	Q - Quit
//
// Drops are refused until the session allows the next marble.
package viz
