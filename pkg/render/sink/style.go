package sink

import (
	"bytes"
	"encoding/xml"
	"image/color"
	"strconv"
	"strings"

	"github.com/zenui/zendiagram/pkg/document"
)

// DefaultMargin is the space kept around the content bounds.
const DefaultMargin = 40.0

const (
	backgroundColor = "#ffffff"
	gridColor       = "#eef2f7"
	nodeFill        = "#ffffff"
	nodeStroke      = "#334155"
	activeStroke    = "#2563eb"
	relatedStroke   = "#60a5fa"
	wrapperFill     = "#f8fafc"
	wrapperStroke   = "#cbd5e1"
	textColor       = "#0f172a"
	mutedText       = "#64748b"

	fontFamily = "ui-monospace, Menlo, Consolas, monospace"

	nodeRadius    = 6.0
	wrapperRadius = 10.0
	nodeLineWidth = 1.5
	edgeLabelSize = 11.0
	wrapperLabel  = 12.0
)

var wrapperDash = []float64{6, 4}

const (
	fontHeightRatio = 0.35
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.6
	fontSizeMin     = 8.0
	fontSizeMax     = 18.0
)

// fontSize picks a label size that fits a w×h box.
func fontSize(w, h float64, label string) float64 {
	n := max(1, len([]rune(label)))
	byHeight := h * fontHeightRatio
	byWidth := (w * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// truncate shortens label to the characters that fit in width at size.
func truncate(label string, width, size float64) string {
	r := []rune(label)
	maxChars := max(3, int(width*fontWidthRatio/(size*fontCharWidth)))
	if len(r) <= maxChars {
		return label
	}
	return string(r[:maxChars-2]) + ".."
}

func nodeStrokeFor(s document.Snapshot, n document.PlacedNode) (string, float64) {
	switch {
	case s.ActiveID != "" && n.ID == s.ActiveID:
		return activeStroke, 2 * nodeLineWidth
	case n.Related:
		return relatedStroke, 2 * nodeLineWidth
	}
	return nodeStroke, nodeLineWidth
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinNums(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatNum(v)
	}
	return strings.Join(parts, " ")
}

// parseHex reads #rgb and #rrggbb colors.
func parseHex(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

// paint resolves a CSS hex color with an opacity, falling back when the
// color is not hex.
func paint(s, fallback string, opacity float64) color.NRGBA {
	c, ok := parseHex(s)
	if !ok {
		c, _ = parseHex(fallback)
	}
	c.A = uint8(max(0, min(1, opacity))*255 + 0.5)
	return c
}
