package input

import "testing"

func TestModifiersHas(t *testing.T) {
	m := ModCtrl | ModShift
	tests := []struct {
		want Modifiers
		has  bool
	}{
		{ModCtrl, true},
		{ModShift, true},
		{ModCtrl | ModShift, true},
		{ModAlt, false},
		{ModCtrl | ModMeta, false},
		{0, true},
	}
	for _, tt := range tests {
		if got := m.Has(tt.want); got != tt.has {
			t.Errorf("Has(%b) = %v, want %v", tt.want, got, tt.has)
		}
	}
}

func TestButtonString(t *testing.T) {
	for b, want := range map[Button]string{ButtonLeft: "left", ButtonMiddle: "middle", ButtonRight: "right", Button(9): "unknown"} {
		if got := b.String(); got != want {
			t.Errorf("Button(%d).String() = %q, want %q", int(b), got, want)
		}
	}
}
