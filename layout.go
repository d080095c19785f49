package grafanarama

import (
	"errors"
	"fmt"
)

// AutoLayout assigns grid positions to panels, placing them left-to-right in
// the 24-column grid and wrapping to a new row when a panel would cross the
// right edge.
//
// Every panel receives the same width and height. Panels with a zero ID are
// given sequential IDs starting at 1; existing IDs are kept. The input slice
// is not modified.
//
// Example:
//
//	panels, err := grafanarama.AutoLayout([]grafanarama.Panel{
//	    {Type: "timeseries", Title: "Requests"},
//	    {Type: "timeseries", Title: "Errors"},
//	    {Type: "text", Title: "Notes"},
//	}, 12, 8)
//	// Requests at (0,0), Errors at (12,0), Notes wraps to (0,8)
func AutoLayout(panels []Panel, panelWidth, panelHeight int) ([]Panel, error) {
	if panelWidth < 1 || panelWidth > GridColumns {
		return nil, fmt.Errorf("panel width must be between 1 and %d, got %d", GridColumns, panelWidth)
	}
	if panelHeight < 1 {
		return nil, errors.New("panel height must be positive")
	}

	out := make([]Panel, len(panels))
	copy(out, panels)

	x, y := 0, 0
	nextID := 1
	for i := range out {
		if x+panelWidth > GridColumns {
			x = 0
			y += panelHeight
		}
		out[i].GridPos = GridPos{X: x, Y: y, W: panelWidth, H: panelHeight}
		x += panelWidth

		if out[i].ID == 0 {
			out[i].ID = nextID
		}
		nextID = out[i].ID + 1
	}

	return out, nil
}
