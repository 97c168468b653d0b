package engine

import "github.com/matzehuels/relink/pkg/geometry"

// ContainerRenderer computes diagram bounds for the given content.
type ContainerRenderer interface {
	Fit(current, content geometry.Bounds) geometry.Bounds
}

// GrowToFit enlarges the diagram to enclose its content plus Margin. It never
// shrinks the diagram.
type GrowToFit struct {
	Margin float64
}

// Fit returns current if it already encloses content.
func (g GrowToFit) Fit(current, content geometry.Bounds) geometry.Bounds {
	if current.Encloses(content) {
		return current
	}
	return current.Union(content.Inset(g.Margin))
}
