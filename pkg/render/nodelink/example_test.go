package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/relink/pkg/diagram"
	"github.com/matzehuels/relink/pkg/geometry"
	"github.com/matzehuels/relink/pkg/render/nodelink"
)

func ExampleToDOT() {
	m := diagram.New(geometry.Bounds{Width: 200, Height: 100})
	_ = m.AddElement(diagram.Element{ID: "app", Bounds: geometry.Bounds{Width: 72, Height: 36}})

	dot := nodelink.ToDOT(m, nodelink.Options{})
	for _, line := range strings.Split(dot, "\n") {
		if strings.HasPrefix(line, `  "app"`) {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// "app" [label="app", pos="36,-18!", width=1, height=0.5];
}
