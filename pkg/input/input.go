// Package input defines the pointer and wheel events hosts feed into the
// diagram engine. The types are independent of any windowing toolkit.
package input

import "github.com/zenui/zendiagram/pkg/geom"

// Button identifies a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	}
	return "unknown"
}

// Modifiers is a set of held modifier keys.
type Modifiers uint8

const (
	ModCtrl Modifiers = 1 << iota
	ModShift
	ModAlt
	ModMeta
)

// Has reports whether every key in m2 is held.
func (m Modifiers) Has(m2 Modifiers) bool { return m&m2 == m2 }

// Pointer is a mouse button or motion event in screen pixels.
type Pointer struct {
	Pos    geom.Point
	Button Button
	Mods   Modifiers
}

// Wheel is a scroll event. Delta is in screen pixels; positive Y scrolls
// down.
type Wheel struct {
	Pos   geom.Point
	Delta geom.Point
	Mods  Modifiers
}
