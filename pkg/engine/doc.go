// Package engine wires the diagram subsystems into one diagram instance.
//
// A [Diagram] owns the item registry, the viewport controller, one drag
// controller per registered item and one measurer per wrapper. Hosts
// register their elements through [Diagram.RegisterNode] and
// [Diagram.RegisterWrapper], forward pointer input, and receive layout
// positions and drag offsets through a [PositionSetter].
//
// # Layout
//
// With auto-layout enabled, structural changes (registration, resize, edge
// or option changes) schedule one layout pass on the next frame. Wrappers
// take part in layout as single items sized by their measured box; grouped
// nodes keep their host-authored positions inside the wrapper. A manual
// drag vetoes layout; changes made during a drag are laid out once it ends.
//
// # Threading
//
// A Diagram is single-threaded. All methods must be called from the
// goroutine driving its [frame.Scheduler].
package engine
