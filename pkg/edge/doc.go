// Package edge routes and styles the connectors between diagram items.
//
// Routing works on item rectangles in logical space. Each endpoint is an
// [Anchor] at the midpoint of one side of its item, carrying the outward
// unit vector of that side. Sides set to [diagram.DotAuto] are resolved
// from the relative position of the two items.
//
// Three shapes are supported:
//
//   - straight: a single segment between the anchors
//   - step: orthogonal, leaving and entering each item along its side for
//     [StepMargin] units with a single jog at the midline
//   - bezier: short straight leads followed by a cubic curve whose control
//     points extend along each side's direction
//
// [Render] applies selection highlighting and skips edges whose endpoints
// cannot be located.
package edge
