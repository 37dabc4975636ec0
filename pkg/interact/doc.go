// Package interact implements per-item pointer interaction: dragging nodes
// and wrappers, click selection, and measurement of wrapper boxes.
//
// Drag offsets live in logical units. The offset after a move is the offset
// at drag start plus the pointer delta divided by the render scale, so an
// item moves with the cursor at every zoom level and a later zoom change
// never shifts it relative to its neighbours. Commits to the host are throttled to one per
// frame through [frame.Throttle]; the final position is always committed on
// release.
//
// [GroupMeasurer] derives a wrapper's box from its children's on-screen
// rectangles. Screen deltas are divided by the detected render scale so the
// box is expressed in the wrapper's local logical space.
//
// Like the rest of the engine, these types are single-threaded.
package interact
