// Package geom provides the 2D primitives shared by the diagram engine.
//
// All engine math is expressed in two coordinate spaces:
//
//   - Screen space: pixels as the host measures them, after pan and zoom.
//   - Logical space: untransformed diagram units in which layouts are computed.
//
// The conversion between them is an affine map defined by a pan offset and a
// uniform scale:
//
//	screen = logical*scale + pan
//	logical = (screen - pan) / scale
//
// # Measurement
//
// Hosts may render the diagram inside an ancestor transform the engine does not
// control. [ProbeScale] recovers that factor from a probe element of known
// authored width ([ProbeWidth]), and [ChildBounds] divides measured pixel
// deltas by it so that group boxes stay correct at any zoom.
//
// Every function in this package is pure and safe for concurrent use.
package geom
