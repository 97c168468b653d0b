package engine_test

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relink/pkg/diagram"
	"github.com/matzehuels/relink/pkg/engine"
	"github.com/matzehuels/relink/pkg/geometry"
)

func ExampleEngine_Handle() {
	m := diagram.New(geometry.Bounds{X: -100, Y: -100, Width: 1000, Height: 1000})
	_ = m.AddElement(diagram.Element{ID: "A", Bounds: geometry.Bounds{X: 10, Width: 50, Height: 50}})
	_ = m.AddElement(diagram.Element{ID: "B", Bounds: geometry.Bounds{X: 200, Width: 50, Height: 50}})
	_ = m.AddRelationship(diagram.Relationship{
		ID:     "R",
		Source: diagram.Endpoint{Element: "A", Direction: geometry.Down},
		Target: diagram.Endpoint{Element: "B", Direction: geometry.Up},
		Path:   geometry.Path{{X: 25, Y: 50}, {X: 25, Y: 125}, {X: 225, Y: 125}, {X: 225, Y: 0}},
	})

	e := engine.New(engine.DefaultConfig(), nil, log.New(io.Discard))
	res := e.Handle(context.Background(), m, engine.Editor{}, engine.Move{
		IDs:   []string{"A"},
		Delta: geometry.Point{X: 10},
	})
	for _, a := range res.Actions {
		if la, ok := a.(engine.LayoutAction); ok {
			fmt.Println(la.Kind(), la.ID, la.Path.First())
		}
	}
	// Output: layout R (35,50)
}
