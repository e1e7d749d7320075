package render

import (
	"html/template"
	"math"
	"sort"

	"codecompass/internal/backend"
	"codecompass/internal/eventbus"
)

// Rect is an axis-aligned rectangle in SVG user units.
type Rect struct {
	X, Y, W, H float64
}

// Squarify lays values out inside bounds with the squarified treemap
// algorithm. The result is indexed like values; non-positive values get an
// empty rect.
func Squarify(values []float64, bounds Rect) []Rect {
	out := make([]Rect, len(values))
	order := make([]int, 0, len(values))
	var total float64
	for i, v := range values {
		if v > 0 {
			order = append(order, i)
			total += v
		}
	}
	if total == 0 || bounds.W <= 0 || bounds.H <= 0 {
		return out
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] > values[order[b]] })

	scale := bounds.W * bounds.H / total
	area := func(i int) float64 { return values[i] * scale }

	rest := bounds
	var row []int
	for k := 0; k < len(order); {
		side := math.Min(rest.W, rest.H)
		cand := append(append([]int(nil), row...), order[k])
		if len(row) == 0 || worst(cand, side, area) <= worst(row, side, area) {
			row = cand
			k++
			continue
		}
		rest = layoutRow(row, rest, area, out)
		row = row[:0]
	}
	if len(row) > 0 {
		layoutRow(row, rest, area, out)
	}
	return out
}

// worst is the largest aspect ratio in row when laid along side.
func worst(row []int, side float64, area func(int) float64) float64 {
	var sum, hi float64
	lo := math.Inf(1)
	for _, i := range row {
		a := area(i)
		sum += a
		hi = math.Max(hi, a)
		lo = math.Min(lo, a)
	}
	s2, w2 := sum*sum, side*side
	return math.Max(w2*hi/s2, s2/(w2*lo))
}

func layoutRow(row []int, r Rect, area func(int) float64, out []Rect) Rect {
	var sum float64
	for _, i := range row {
		sum += area(i)
	}
	if r.W >= r.H {
		w := sum / r.H
		y := r.Y
		for _, i := range row {
			h := area(i) / w
			out[i] = Rect{X: r.X, Y: y, W: w, H: h}
			y += h
		}
		return Rect{X: r.X + w, Y: r.Y, W: r.W - w, H: r.H}
	}
	h := sum / r.W
	x := r.X
	for _, i := range row {
		w := area(i) / h
		out[i] = Rect{X: x, Y: r.Y, W: w, H: h}
		x += w
	}
	return Rect{X: r.X, Y: r.Y + h, W: r.W, H: r.H - h}
}

// Metrics is the model of the treemap view.
type Metrics struct {
	Root        backend.MetricsNode
	MetricsType string
	Width       float64
	Height      float64
}

type treemapCell struct {
	Rect
	Label  string
	Value  float64
	Shade  int
	Action Action
}

type treemapView struct {
	Title  string
	Total  float64
	Width  float64
	Height float64
	Cells  []treemapCell
}

// MetricsTreemap draws one level of the metrics tree. Directories drill down
// with ShowMetrics, files open in the text view.
func MetricsTreemap(m Metrics) (template.HTML, error) {
	if m.Width <= 0 {
		m.Width = 800
	}
	if m.Height <= 0 {
		m.Height = 500
	}
	kids := m.Root.Children
	values := make([]float64, len(kids))
	var hi float64
	for i, k := range kids {
		values[i] = nodeValue(k)
		hi = math.Max(hi, values[i])
	}
	rects := Squarify(values, Rect{W: m.Width, H: m.Height})

	v := treemapView{Title: m.Root.Path, Total: nodeValue(m.Root), Width: m.Width, Height: m.Height}
	for i, k := range kids {
		if rects[i].W == 0 || rects[i].H == 0 {
			continue
		}
		c := treemapCell{Rect: rects[i], Label: k.Name, Value: values[i]}
		if hi > 0 {
			c.Shade = int(values[i] / hi * 9)
		}
		switch {
		case len(k.Children) > 0:
			c.Action = Publish(eventbus.ShowMetrics{FileID: k.FileID, MetricsType: m.MetricsType})
		case k.FileID != "":
			c.Action = Publish(eventbus.OpenFile{FileID: k.FileID})
		}
		v.Cells = append(v.Cells, c)
	}
	return execute("treemap", v)
}

// nodeValue is the node's own value, or the sum of its children for directories.
func nodeValue(n backend.MetricsNode) float64 {
	if len(n.Children) == 0 {
		return n.Value
	}
	var sum float64
	for _, c := range n.Children {
		sum += nodeValue(c)
	}
	return sum
}

const metricsTemplates = `
{{define "treemap"}}<div class="cc-metrics"><p class="cc-summary">{{.Title}}: {{f1 .Total}}</p>{{if .Cells}}<svg class="cc-treemap" viewBox="0 0 {{f1 .Width}} {{f1 .Height}}">{{range .Cells}}<g class="cell shade-{{.Shade}}" {{action .Action}}><rect x="{{f1 .X}}" y="{{f1 .Y}}" width="{{f1 .W}}" height="{{f1 .H}}"></rect><text x="{{f1 .X}}" y="{{f1 .Y}}" dx="4" dy="14">{{.Label}}</text></g>{{end}}</svg>{{else}}<p class="cc-empty">No metrics</p>{{end}}</div>{{end}}
`
