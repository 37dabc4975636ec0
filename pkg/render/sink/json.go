package sink

import "github.com/zenui/zendiagram/pkg/document"

// RenderJSON exports the snapshot as pretty-printed JSON. The output can be
// read back with [document.UnmarshalSnapshot] and rendered again.
func RenderJSON(s document.Snapshot) ([]byte, error) {
	data, err := document.MarshalSnapshot(s)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
