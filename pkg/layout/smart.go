package layout

import (
	"cmp"
	"math"
	"slices"

	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/geom"
)

// Simulation constants. The per-node step size is stepScale/(1+w·degree),
// which keeps a node's update stable no matter how many springs pull on it.
const (
	stepScale       = 0.5
	gravity         = 0.01
	separationGain  = 0.5
	overlapPasses   = 64
	overlapEpsilon  = 1e-6
	minDistance     = 1e-3
	goldenAngleRads = 2.399963229728653
)

// pair is an undirected spring between two node indices.
type pair struct{ a, b int }

// Smart places nodes by refining a layered seed with a force simulation.
//
// The seed assigns every node to a layer by longest path over the edges
// (back edges of cycles are ignored), sorts each layer by id and packs
// layers as rows separated by the tallest node in the row plus spacing.
//
// The simulation then works on node centers:
//
//   - Every pair repels with R·L/d², where L is the contact distance of the
//     two nodes' bounding circles plus NodeSpacing. Pairs closer than L get
//     an extra linear push of (L-d)/2.
//   - Every edge pulls its endpoints with w·(d-L).
//   - A weak gravity pulls each node toward the centroid.
//
// Displacements are capped by a temperature that starts at the mean contact
// distance and cools linearly to zero over the iterations. A final pass
// pushes any remaining overlapping pair apart along its axis of least
// penetration. If overlaps or non-finite values survive, the seed is
// returned unchanged. The result is translated so the smallest corner sits
// at the origin.
func Smart(nodes []diagram.Node, edges []diagram.Edge, opts diagram.LayoutOptions) []geom.Point {
	n := len(nodes)
	if n == 0 {
		return nil
	}

	index := make(map[string]int, n)
	for i, nd := range nodes {
		index[nd.ID] = i
	}
	sizes := make([]geom.Size, n)
	for i, nd := range nodes {
		w, h := nd.Size()
		sizes[i] = geom.Size{Width: w, Height: h}
	}

	succ, springs := adjacency(index, edges, n)
	seed := Seed(nodes, sizes, succ, opts.NodeSpacing)
	if n == 1 || opts.Iterations == 0 {
		return normalize(seed)
	}

	centers := make([]geom.Point, n)
	for i, p := range seed {
		centers[i] = p.Add(geom.Pt(sizes[i].Width/2, sizes[i].Height/2))
	}
	simulate(centers, sizes, springs, opts)
	separate(centers, sizes)

	out := make([]geom.Point, n)
	for i, c := range centers {
		out[i] = c.Sub(geom.Pt(sizes[i].Width/2, sizes[i].Height/2))
	}
	if !allFinite(out) || anyOverlap(out, sizes) {
		return normalize(seed)
	}
	return normalize(out)
}

// adjacency builds sorted successor lists for layering and the deduplicated
// undirected springs for attraction. Self loops and unknown ids are dropped.
func adjacency(index map[string]int, edges []diagram.Edge, n int) ([][]int, []pair) {
	succ := make([][]int, n)
	seenDir := make(map[pair]bool)
	seenUndir := make(map[pair]bool)
	var springs []pair
	for _, e := range edges {
		a, okA := index[e.From]
		b, okB := index[e.To]
		if !okA || !okB || a == b {
			continue
		}
		if !seenDir[pair{a, b}] {
			seenDir[pair{a, b}] = true
			succ[a] = append(succ[a], b)
		}
		u := pair{min(a, b), max(a, b)}
		if !seenUndir[u] {
			seenUndir[u] = true
			springs = append(springs, u)
		}
	}
	return succ, springs
}

// Seed computes the layered starting placement used by [Smart]. succ holds
// successor indices per node. Positions are top-left corners.
func Seed(nodes []diagram.Node, sizes []geom.Size, succ [][]int, spacing float64) []geom.Point {
	n := len(nodes)
	byID := func(a, b int) int { return cmp.Compare(nodes[a].ID, nodes[b].ID) }

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, byID)

	sorted := make([][]int, n)
	for i, s := range succ {
		sorted[i] = slices.Clone(s)
		slices.SortFunc(sorted[i], byID)
	}

	// Depth-first search in id order; edges into the active path are back
	// edges and are ignored. Reverse postorder is a topological order of
	// the remaining forward edges.
	const (
		white = iota
		grey
		black
	)
	color := make([]int, n)
	post := make([]int, 0, n)
	forward := make([][]int, n)
	var visit func(int)
	visit = func(u int) {
		color[u] = grey
		for _, v := range sorted[u] {
			switch color[v] {
			case white:
				forward[u] = append(forward[u], v)
				visit(v)
			case black:
				forward[u] = append(forward[u], v)
			}
		}
		color[u] = black
		post = append(post, u)
	}
	for _, u := range order {
		if color[u] == white {
			visit(u)
		}
	}

	layer := make([]int, n)
	maxLayer := 0
	for k := len(post) - 1; k >= 0; k-- {
		u := post[k]
		for _, v := range forward[u] {
			if layer[u]+1 > layer[v] {
				layer[v] = layer[u] + 1
			}
		}
	}
	for _, l := range layer {
		maxLayer = max(maxLayer, l)
	}

	rows := make([][]int, maxLayer+1)
	for _, u := range order {
		rows[layer[u]] = append(rows[layer[u]], u)
	}

	out := make([]geom.Point, n)
	y := 0.0
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		x, rowHeight := 0.0, 0.0
		for _, u := range row {
			out[u] = geom.Pt(x, y)
			x += sizes[u].Width + spacing
			rowHeight = max(rowHeight, sizes[u].Height)
		}
		y += rowHeight + spacing
	}
	return out
}

func simulate(centers []geom.Point, sizes []geom.Size, springs []pair, opts diagram.LayoutOptions) {
	n := len(centers)
	radius := make([]float64, n)
	for i, s := range sizes {
		radius[i] = math.Hypot(s.Width, s.Height) / 2
	}
	contact := func(i, j int) float64 { return radius[i] + radius[j] + opts.NodeSpacing }

	degree := make([]int, n)
	for _, s := range springs {
		degree[s.a]++
		degree[s.b]++
	}
	step := make([]float64, n)
	for i := range step {
		step[i] = stepScale / (1 + opts.EdgeWeight*float64(degree[i]))
	}

	var sumL float64
	var pairs int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sumL += contact(i, j)
			pairs++
		}
	}
	t0 := sumL / float64(pairs)

	force := make([]geom.Point, n)
	for iter := 0; iter < opts.Iterations; iter++ {
		for i := range force {
			force[i] = geom.Point{}
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				u, d := direction(centers[i], centers[j], i, j)
				L := contact(i, j)
				mag := opts.RepulsionStrength * L / (d * d)
				if d < L {
					mag += (L - d) * separationGain
				}
				f := u.Mul(mag)
				force[i] = force[i].Add(f)
				force[j] = force[j].Sub(f)
			}
		}

		for _, s := range springs {
			u, d := direction(centers[s.a], centers[s.b], s.a, s.b)
			f := u.Mul(opts.EdgeWeight * (d - contact(s.a, s.b)))
			force[s.a] = force[s.a].Sub(f)
			force[s.b] = force[s.b].Add(f)
		}

		centroid := geom.Point{}
		for _, c := range centers {
			centroid = centroid.Add(c)
		}
		centroid = centroid.Div(float64(n))

		temp := t0 * float64(opts.Iterations-iter) / float64(opts.Iterations)
		for i := range centers {
			f := force[i].Add(centroid.Sub(centers[i]).Mul(gravity))
			disp := f.Mul(step[i])
			if l := disp.Len(); l > temp {
				disp = disp.Mul(temp / l)
			}
			if !disp.IsFinite() {
				continue
			}
			centers[i] = centers[i].Add(disp)
		}
	}
}

// direction returns the unit vector from b to a and their distance.
// Coincident points get a fixed direction derived from their indices.
func direction(a, b geom.Point, i, j int) (geom.Point, float64) {
	delta := a.Sub(b)
	d := delta.Len()
	if d < minDistance {
		theta := float64(i*31+j) * goldenAngleRads
		return geom.Pt(math.Cos(theta), math.Sin(theta)), minDistance
	}
	return delta.Div(d), d
}

// separate pushes overlapping boxes apart along their axis of least
// penetration until no pair overlaps or the pass budget runs out.
func separate(centers []geom.Point, sizes []geom.Size) {
	n := len(centers)
	for pass := 0; pass < overlapPasses; pass++ {
		moved := false
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				a := box(centers[i], sizes[i])
				b := box(centers[j], sizes[j])
				if !a.Overlaps(b, overlapEpsilon) {
					continue
				}
				dx, dy := a.Overlap(b)
				delta := centers[j].Sub(centers[i])
				if dx <= dy {
					push := dx/2 + overlapEpsilon
					if delta.X < 0 {
						push = -push
					}
					centers[i].X -= push
					centers[j].X += push
				} else {
					push := dy/2 + overlapEpsilon
					if delta.Y < 0 {
						push = -push
					}
					centers[i].Y -= push
					centers[j].Y += push
				}
				moved = true
			}
		}
		if !moved {
			return
		}
	}
}

func box(center geom.Point, s geom.Size) geom.Rect {
	return geom.R(center.X-s.Width/2, center.Y-s.Height/2, s.Width, s.Height)
}

func anyOverlap(pos []geom.Point, sizes []geom.Size) bool {
	for i := range pos {
		a := geom.R(pos[i].X, pos[i].Y, sizes[i].Width, sizes[i].Height)
		for j := i + 1; j < len(pos); j++ {
			b := geom.R(pos[j].X, pos[j].Y, sizes[j].Width, sizes[j].Height)
			if a.Overlaps(b, overlapEpsilon) {
				return true
			}
		}
	}
	return false
}

func allFinite(pos []geom.Point) bool {
	for _, p := range pos {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}

// normalize translates pos so the smallest x and y are zero.
func normalize(pos []geom.Point) []geom.Point {
	if len(pos) == 0 {
		return pos
	}
	minX, minY := math.Inf(1), math.Inf(1)
	for _, p := range pos {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
	}
	shift := geom.Pt(-minX, -minY)
	out := make([]geom.Point, len(pos))
	for i, p := range pos {
		out[i] = p.Add(shift)
	}
	return out
}
