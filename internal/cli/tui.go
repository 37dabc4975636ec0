package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"

	"github.com/zenui/zendiagram/pkg/canvas"
	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/document"
	"github.com/zenui/zendiagram/pkg/engine"
	"github.com/zenui/zendiagram/pkg/frame"
	"github.com/zenui/zendiagram/pkg/geom"
	"github.com/zenui/zendiagram/pkg/input"
	"github.com/zenui/zendiagram/pkg/pipeline"
)

// A terminal cell stands for cellWidth×cellHeight screen pixels.
const (
	cellWidth  = 8.0
	cellHeight = 16.0

	// viewerChrome is the number of rows taken by the header and status line.
	viewerChrome = 2

	panStep  = 4 * cellWidth
	zoomStep = 100.0 // wheel delta; one step changes the zoom by 0.1
)

var strategyCycle = []diagram.Strategy{diagram.StrategySmart, diagram.StrategyVertical, diagram.StrategyGrid}

// Viewer styles
var (
	viewerEdgeStyle    = lipgloss.NewStyle().Foreground(colorDim)
	viewerActiveStyle  = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	viewerRelatedStyle = lipgloss.NewStyle().Foreground(colorGreen)
	viewerNodeStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	viewerWrapperStyle = lipgloss.NewStyle().Foreground(colorGray)
	viewerLabelStyle   = lipgloss.NewStyle().Foreground(colorYellow)
)

// cellClass selects the style of a drawn cell.
type cellClass uint8

const (
	classBlank cellClass = iota
	classEdge
	classEdgeActive
	classWrapper
	classNode
	classNodeRelated
	classNodeActive
	classLabel
)

func (c cellClass) style() lipgloss.Style {
	switch c {
	case classEdge:
		return viewerEdgeStyle
	case classEdgeActive, classNodeActive:
		return viewerActiveStyle
	case classWrapper:
		return viewerWrapperStyle
	case classNode:
		return viewerNodeStyle
	case classNodeRelated:
		return viewerRelatedStyle
	case classLabel:
		return viewerLabelStyle
	}
	return lipgloss.NewStyle()
}

// =============================================================================
// ViewerModel - Interactive diagram viewer
// =============================================================================

// ViewerModel is the bubbletea model of the terminal diagram viewer. It
// hosts a live engine instance on a canvas and forwards keyboard and mouse
// input to it as pointer and wheel events.
type ViewerModel struct {
	canvas  *canvas.Canvas
	sched   *frame.Manual
	doc     *document.Document
	labels  map[string]string
	order   []string
	session string

	Width    int
	Height   int
	dragging bool
	help     bool
}

// NewViewerModel mounts doc on a fresh canvas configured by cfg. The
// scheduler in cfg is replaced by one the viewer flushes after every
// message.
func NewViewerModel(doc *document.Document, cfg engine.Config) ViewerModel {
	sched := frame.NewManual()
	cfg.Scheduler = sched
	c := canvas.New(cfg)
	doc.Mount(c)
	sched.Settle(pipeline.DefaultMaxFrames)

	order := make([]string, 0, len(doc.Nodes)+len(doc.Wrappers))
	for _, n := range doc.Nodes {
		order = append(order, n.ID)
	}
	for _, w := range doc.Wrappers {
		order = append(order, w.ID)
	}
	return ViewerModel{
		canvas:  c,
		sched:   sched,
		doc:     doc,
		labels:  doc.Labels(),
		order:   order,
		session: uuid.NewString(),
	}
}

// Diagram returns the hosted diagram.
func (m ViewerModel) Diagram() *engine.Diagram { return m.canvas.Diagram() }

// Session returns the viewer's session id.
func (m ViewerModel) Session() string { return m.session }

// Close releases the hosted diagram.
func (m ViewerModel) Close() { m.canvas.Close() }

func (m ViewerModel) Init() tea.Cmd {
	return nil
}

func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	d := m.Diagram()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		d.SetContainer(m.container())
	case tea.KeyMsg:
		cmd = m.handleKey(msg.String())
	case tea.MouseMsg:
		m.handleMouse(msg)
	}

	m.sched.Settle(pipeline.DefaultMaxFrames)
	return m, cmd
}

func (m *ViewerModel) handleKey(key string) tea.Cmd {
	d := m.Diagram()
	center := geom.Pt(m.container().Width/2, m.container().Height/2)

	switch key {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "?":
		m.help = !m.help
	case "left", "h":
		d.Wheel(input.Wheel{Pos: center, Delta: geom.Pt(-panStep, 0)})
	case "right", "l":
		d.Wheel(input.Wheel{Pos: center, Delta: geom.Pt(panStep, 0)})
	case "up", "k":
		d.Wheel(input.Wheel{Pos: center, Delta: geom.Pt(0, -panStep)})
	case "down", "j":
		d.Wheel(input.Wheel{Pos: center, Delta: geom.Pt(0, panStep)})
	case "+", "=":
		d.Wheel(input.Wheel{Pos: center, Delta: geom.Pt(0, -zoomStep), Mods: input.ModCtrl})
	case "-":
		d.Wheel(input.Wheel{Pos: center, Delta: geom.Pt(0, zoomStep), Mods: input.ModCtrl})
	case "0":
		tr := d.Viewport()
		d.SetViewport(tr.Pan.X, tr.Pan.Y, 1)
	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)
	case "H":
		m.nudge(geom.Pt(-cellWidth, 0))
	case "L":
		m.nudge(geom.Pt(cellWidth, 0))
	case "K":
		m.nudge(geom.Pt(0, -cellHeight))
	case "J":
		m.nudge(geom.Pt(0, cellHeight))
	case "a":
		d.SetAutoLayout(!d.AutoLayout())
	case "s":
		d.SetStrategy(nextStrategy(d.Strategy()))
	case "r":
		d.Relayout()
	}
	return nil
}

func (m *ViewerModel) handleMouse(msg tea.MouseMsg) {
	d := m.Diagram()
	pos := cellToScreen(msg.X, msg.Y-1)
	var mods input.Modifiers
	if msg.Ctrl {
		mods |= input.ModCtrl
	}
	if msg.Shift {
		mods |= input.ModShift
	}
	if msg.Alt {
		mods |= input.ModAlt
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			d.Click(m.hitPath(pos))
		case tea.MouseButtonRight, tea.MouseButtonMiddle:
			btn := input.ButtonRight
			if msg.Button == tea.MouseButtonMiddle {
				btn = input.ButtonMiddle
			}
			m.dragging = d.PointerDown(input.Pointer{Pos: pos, Button: btn, Mods: mods}, m.hitPath(pos))
		case tea.MouseButtonWheelUp:
			d.Wheel(input.Wheel{Pos: pos, Delta: geom.Pt(0, -m.wheelStep(mods)), Mods: mods})
		case tea.MouseButtonWheelDown:
			d.Wheel(input.Wheel{Pos: pos, Delta: geom.Pt(0, m.wheelStep(mods)), Mods: mods})
		case tea.MouseButtonWheelLeft:
			d.Wheel(input.Wheel{Pos: pos, Delta: geom.Pt(-panStep, 0), Mods: mods})
		case tea.MouseButtonWheelRight:
			d.Wheel(input.Wheel{Pos: pos, Delta: geom.Pt(panStep, 0), Mods: mods})
		}
	case tea.MouseActionMotion:
		if m.dragging {
			d.PointerMove(pos)
		}
	case tea.MouseActionRelease:
		if m.dragging {
			d.PointerUp()
			m.dragging = false
		}
	}
}

func (m *ViewerModel) wheelStep(mods input.Modifiers) float64 {
	if mods.Has(input.ModCtrl) {
		return zoomStep
	}
	return 2 * cellHeight
}

// cycle moves the selection through items in document order.
func (m *ViewerModel) cycle(dir int) {
	if len(m.order) == 0 {
		return
	}
	d := m.Diagram()
	next := 0
	if dir < 0 {
		next = len(m.order) - 1
	}
	for i, id := range m.order {
		if id == d.ActiveID() {
			next = (i + dir + len(m.order)) % len(m.order)
			break
		}
	}
	d.Select(m.order[next])
}

// nudge drags the selected item by delta screen pixels, as a right-button
// drag over it would.
func (m *ViewerModel) nudge(delta geom.Point) {
	d := m.Diagram()
	id := d.ActiveID()
	if id == "" {
		return
	}
	path := []string{id}
	for _, n := range m.doc.Nodes {
		if n.ID == id && n.GroupID != "" {
			path = append(path, n.GroupID)
		}
	}
	start := geom.Pt(0, 0)
	if d.PointerDown(input.Pointer{Pos: start, Button: input.ButtonRight}, path) {
		d.PointerMove(start.Add(delta))
		d.PointerUp()
	}
}

// hitPath returns the ids of the items under a screen point, innermost
// first.
func (m *ViewerModel) hitPath(p geom.Point) []string {
	d := m.Diagram()
	snap := document.Capture(d, nil)
	tr := d.Viewport()
	for i := len(snap.Nodes) - 1; i >= 0; i-- {
		n := snap.Nodes[i]
		if tr.RectToScreen(n.Rect).ContainsPoint(p) {
			if n.Group != "" {
				return []string{n.ID, n.Group}
			}
			return []string{n.ID}
		}
	}
	for i := len(snap.Wrappers) - 1; i >= 0; i-- {
		w := snap.Wrappers[i]
		if tr.RectToScreen(w.Rect).ContainsPoint(p) {
			return []string{w.ID}
		}
	}
	return nil
}

func (m ViewerModel) container() geom.Size {
	rows := max(m.Height-viewerChrome, 0)
	return geom.Size{Width: float64(m.Width) * cellWidth, Height: float64(rows) * cellHeight}
}

func (m ViewerModel) View() string {
	if m.Width == 0 || m.Height <= viewerChrome {
		return "loading..."
	}
	var b strings.Builder

	title := m.doc.Title
	if title == "" {
		title = "Diagram"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render("arrows pan  +/- zoom  tab select  HJKL move  ? help  q quit"))
	b.WriteString("\n")

	rows := m.Height - viewerChrome
	if m.help {
		b.WriteString(helpTable())
		b.WriteString("\n")
	} else {
		g := newCellGrid(m.Width, rows)
		g.drawSnapshot(document.Capture(m.Diagram(), m.labels), m.Diagram().Viewport())
		b.WriteString(g.render())
	}
	b.WriteString(m.status())
	return b.String()
}

func (m ViewerModel) status() string {
	d := m.Diagram()
	auto := "off"
	if d.AutoLayout() {
		auto = "on"
	}
	parts := []string{
		fmt.Sprintf("strategy %s", d.Strategy()),
		fmt.Sprintf("auto-layout %s", auto),
		fmt.Sprintf("zoom %.0f%%", d.Viewport().Scale*100),
	}
	if id := d.ActiveID(); id != "" {
		parts = append(parts, "selected "+StyleHighlight.Render(m.labels[id]))
	}
	return StyleDim.Render(strings.Join(parts, " · "))
}

func helpTable() string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Key", "Action").
		Rows(
			[]string{"arrows / hjkl", "pan the view"},
			[]string{"+ / -", "zoom in / out"},
			[]string{"0", "reset zoom"},
			[]string{"tab / shift+tab", "select next / previous item"},
			[]string{"H J K L", "move the selected item"},
			[]string{"left click", "select item, background clears"},
			[]string{"right drag", "move node or group"},
			[]string{"middle drag", "move group or pan"},
			[]string{"wheel / ctrl+wheel", "pan / zoom"},
			[]string{"a", "toggle auto layout"},
			[]string{"s", "cycle layout strategy"},
			[]string{"r", "run layout again"},
			[]string{"q", "quit"},
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleHighlight
			}
			return StyleValue
		})
	return t.Render()
}

func nextStrategy(s diagram.Strategy) diagram.Strategy {
	for i, c := range strategyCycle {
		if c == s {
			return strategyCycle[(i+1)%len(strategyCycle)]
		}
	}
	return strategyCycle[0]
}

// cellToScreen returns the screen pixel at the center of a diagram cell.
func cellToScreen(col, row int) geom.Point {
	return geom.Pt((float64(col)+0.5)*cellWidth, (float64(row)+0.5)*cellHeight)
}

// =============================================================================
// Cell grid
// =============================================================================

// cellGrid is a character raster of the diagram area.
type cellGrid struct {
	w, h  int
	runes []rune
	class []cellClass
}

func newCellGrid(w, h int) *cellGrid {
	g := &cellGrid{w: w, h: h, runes: make([]rune, w*h), class: make([]cellClass, w*h)}
	for i := range g.runes {
		g.runes[i] = ' '
	}
	return g
}

func (g *cellGrid) set(x, y int, r rune, c cellClass) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.runes[y*g.w+x] = r
	g.class[y*g.w+x] = c
}

func (g *cellGrid) at(x, y int) (rune, cellClass) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return 0, classBlank
	}
	return g.runes[y*g.w+x], g.class[y*g.w+x]
}

func (g *cellGrid) text(x, y int, s string, c cellClass, maxw int) {
	for _, r := range s {
		if maxw <= 0 {
			return
		}
		g.set(x, y, r, c)
		x++
		maxw--
	}
}

func toCell(p geom.Point) (int, int) {
	return int(math.Floor(p.X / cellWidth)), int(math.Floor(p.Y / cellHeight))
}

type boxRunes struct{ tl, tr, bl, br, h, v rune }

var (
	nodeBox    = boxRunes{'┌', '┐', '└', '┘', '─', '│'}
	wrapperBox = boxRunes{'╭', '╮', '╰', '╯', '╌', '┆'}
)

// drawSnapshot draws wrappers, then edges, then nodes so nodes stay on top.
func (g *cellGrid) drawSnapshot(s document.Snapshot, tr geom.Transform) {
	for _, w := range s.Wrappers {
		g.box(tr.RectToScreen(w.Rect), wrapperBox, classWrapper, w.Label, false)
	}
	for _, e := range s.Edges {
		g.edge(e, tr)
	}
	for _, n := range s.Nodes {
		c := classNode
		switch {
		case n.ID == s.ActiveID:
			c = classNodeActive
		case n.Related:
			c = classNodeRelated
		}
		g.box(tr.RectToScreen(n.Rect), nodeBox, c, n.Label, true)
	}
	for _, e := range s.Edges {
		g.arrow(e, tr)
		if e.Label != "" {
			x, y := toCell(tr.ToScreen(e.LabelPos))
			g.text(x-len([]rune(e.Label))/2, y, e.Label, classLabel, g.w)
		}
	}
}

func (g *cellGrid) box(r geom.Rect, br boxRunes, c cellClass, label string, centered bool) {
	x0, y0 := toCell(r.Min())
	x1, y1 := toCell(r.Max())
	if x1 <= x0 || y1 <= y0 {
		g.set(x0, y0, '■', c)
		return
	}
	for x := x0 + 1; x < x1; x++ {
		g.set(x, y0, br.h, c)
		g.set(x, y1, br.h, c)
	}
	for y := y0 + 1; y < y1; y++ {
		g.set(x0, y, br.v, c)
		g.set(x1, y, br.v, c)
		if centered {
			for x := x0 + 1; x < x1; x++ {
				g.set(x, y, ' ', c)
			}
		}
	}
	g.set(x0, y0, br.tl, c)
	g.set(x1, y0, br.tr, c)
	g.set(x0, y1, br.bl, c)
	g.set(x1, y1, br.br, c)

	inner := x1 - x0 - 1
	if label == "" || inner <= 0 {
		return
	}
	if !centered {
		g.text(x0+2, y0, " "+label+" ", c, inner-1)
		return
	}
	n := len([]rune(label))
	x := x0 + 1 + max((inner-n)/2, 0)
	g.text(x, (y0+y1)/2, label, c, inner)
}

// edge rasterizes a routed edge by sampling its segments.
func (g *cellGrid) edge(e document.RoutedEdge, tr geom.Transform) {
	c, r := classEdge, '·'
	if e.Active {
		c, r = classEdgeActive, '•'
	}
	plot := func(p geom.Point) {
		x, y := toCell(tr.ToScreen(p))
		if _, under := g.at(x, y); under == classBlank || under == classEdge || under == classWrapper {
			g.set(x, y, r, c)
		}
	}
	var cur geom.Point
	for _, s := range e.Segments {
		switch s.Op {
		case "M":
			cur = s.Points[0]
		case "L":
			to := s.Points[0]
			n := samples(tr, cur, to)
			for i := 0; i <= n; i++ {
				plot(lerp(cur, to, float64(i)/float64(n)))
			}
			cur = to
		case "C":
			c1, c2, to := s.Points[0], s.Points[1], s.Points[2]
			n := 2 * samples(tr, cur, to)
			for i := 0; i <= n; i++ {
				plot(cubic(cur, c1, c2, to, float64(i)/float64(n)))
			}
			cur = to
		}
	}
}

// arrow marks the cell just before an edge's end with its direction.
func (g *cellGrid) arrow(e document.RoutedEdge, tr geom.Transform) {
	if len(e.Segments) < 2 {
		return
	}
	last := e.Segments[len(e.Segments)-1]
	end := last.Points[len(last.Points)-1]
	var prev geom.Point
	if len(last.Points) > 1 {
		prev = last.Points[len(last.Points)-2]
	} else {
		before := e.Segments[len(e.Segments)-2]
		prev = before.Points[len(before.Points)-1]
	}
	ps, pe := tr.ToScreen(prev), tr.ToScreen(end)
	dir := pe.Sub(ps)
	if dir.Len() == 0 {
		return
	}
	var r rune
	var back geom.Point
	if math.Abs(dir.X) > math.Abs(dir.Y) {
		r, back = '▶', geom.Pt(-cellWidth, 0)
		if dir.X < 0 {
			r, back = '◀', geom.Pt(cellWidth, 0)
		}
	} else {
		r, back = '▼', geom.Pt(0, -cellHeight)
		if dir.Y < 0 {
			r, back = '▲', geom.Pt(0, cellHeight)
		}
	}
	c := classEdge
	if e.Active {
		c = classEdgeActive
	}
	x, y := toCell(pe.Add(back))
	g.set(x, y, r, c)
}

func samples(tr geom.Transform, a, b geom.Point) int {
	d := tr.ToScreen(b).Sub(tr.ToScreen(a))
	return max(int(math.Abs(d.X)/cellWidth+math.Abs(d.Y)/cellHeight)*2, 1)
}

func lerp(a, b geom.Point, t float64) geom.Point {
	return a.Add(b.Sub(a).Mul(t))
}

func cubic(p0, p1, p2, p3 geom.Point, t float64) geom.Point {
	u := 1 - t
	return p0.Mul(u * u * u).Add(p1.Mul(3 * u * u * t)).Add(p2.Mul(3 * u * t * t)).Add(p3.Mul(t * t * t))
}

// render styles runs of equal class and joins the rows.
func (g *cellGrid) render() string {
	var b strings.Builder
	for y := 0; y < g.h; y++ {
		start := 0
		for x := 1; x <= g.w; x++ {
			if x < g.w && g.class[y*g.w+x] == g.class[y*g.w+start] {
				continue
			}
			run := string(g.runes[y*g.w+start : y*g.w+x])
			if c := g.class[y*g.w+start]; c == classBlank {
				b.WriteString(run)
			} else {
				b.WriteString(c.style().Render(run))
			}
			start = x
		}
		b.WriteString("\n")
	}
	return b.String()
}
