package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/relink/pkg/diagram"
	"github.com/matzehuels/relink/pkg/geometry"
)

// pointsPerInch converts diagram units to Graphviz node sizes.
const pointsPerInch = 72

// Options configures diagram rendering.
type Options struct {
	// Detailed adds entity types to labels.
	Detailed bool
}

// ToDOT converts a diagram to Graphviz DOT source for the neato engine.
// Elements are drawn outermost first so owners sit behind their children.
// Relationships without a valid path are left out.
func ToDOT(m *diagram.Model, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=12];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, e := range byDepth(m) {
		b, ok := m.AbsoluteBounds(e.ID)
		if !ok {
			continue
		}
		attrs := []string{
			fmt.Sprintf("label=%q", elementLabel(e, opts.Detailed)),
			fmt.Sprintf("pos=%q", pos(b.Center())),
			fmt.Sprintf("width=%s", inches(b.Width)),
			fmt.Sprintf("height=%s", inches(b.Height)),
		}
		if e.Owner != "" || hasChildren(m, e.ID) {
			attrs = append(attrs, "labelloc=t")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", e.ID, strings.Join(attrs, ", "))
	}

	for _, r := range m.Relationships() {
		if !r.Path.Valid() {
			continue
		}
		writeRelationship(&buf, r, opts.Detailed)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// writeRelationship draws r as point nodes joined by undirected segments,
// with an arrowhead on the last one.
func writeRelationship(buf *bytes.Buffer, r diagram.Relationship, detailed bool) {
	buf.WriteString("\n")
	ids := make([]string, len(r.Path))
	for i, p := range r.Path {
		ids[i] = fmt.Sprintf("%s#%d", r.ID, i)
		fmt.Fprintf(buf, "  %q [shape=point, width=0.01, label=\"\", pos=%q];\n", ids[i], pos(p))
	}
	style := ""
	if r.IsManuallyLayouted {
		style = ", style=dashed"
	}
	last := len(ids) - 1
	for i := 0; i < last; i++ {
		attrs := "arrowhead=none" + style
		if i == last-1 {
			attrs = "arrowhead=normal" + style
		}
		if i == 0 {
			if label := relationshipLabel(r, detailed); label != "" {
				attrs += fmt.Sprintf(", xlabel=%q", label)
			}
		}
		fmt.Fprintf(buf, "  %q -> %q [%s];\n", ids[i], ids[i+1], attrs)
	}
}

func elementLabel(e diagram.Element, detailed bool) string {
	name := e.Name
	if name == "" {
		name = e.ID
	}
	if detailed && e.Type != "" {
		return fmt.Sprintf("«%s»\n%s", e.Type, name)
	}
	return name
}

func relationshipLabel(r diagram.Relationship, detailed bool) string {
	if detailed && r.Type != "" {
		if r.Name != "" {
			return r.Type + ": " + r.Name
		}
		return r.Type
	}
	return r.Name
}

// byDepth orders elements by owner-chain depth, then by id.
func byDepth(m *diagram.Model) []diagram.Element {
	elements := m.Elements()
	depth := make(map[string]int, len(elements))
	var walk func(id string) int
	walk = func(id string) int {
		if d, ok := depth[id]; ok {
			return d
		}
		e, ok := m.Element(id)
		if !ok || e.Owner == "" {
			depth[id] = 0
			return 0
		}
		depth[id] = 0 // guards against ownership cycles
		depth[id] = walk(e.Owner) + 1
		return depth[id]
	}
	buckets := map[int][]diagram.Element{}
	maxDepth := 0
	for _, e := range elements {
		d := walk(e.ID)
		buckets[d] = append(buckets[d], e)
		maxDepth = max(maxDepth, d)
	}
	out := make([]diagram.Element, 0, len(elements))
	for d := 0; d <= maxDepth; d++ {
		out = append(out, buckets[d]...)
	}
	return out
}

func hasChildren(m *diagram.Model, id string) bool {
	for _, e := range m.Elements() {
		if e.Owner == id {
			return true
		}
	}
	return false
}

func pos(p geometry.Point) string {
	return fmt.Sprintf("%s,%s!", num(p.X), num(-p.Y))
}

func inches(v float64) string {
	return num(v / pointsPerInch)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders DOT source to SVG using the neato engine, which honours
// pinned positions.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed-size svg tag with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
