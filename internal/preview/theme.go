package preview

import "github.com/wcharczuk/go-chart/v2/drawing"

// palette holds the colors a theme applies to the rendered chart.
type palette struct {
	Background drawing.Color
	Canvas     drawing.Color
	Text       drawing.Color
	Stroke     drawing.Color
}

// themePalette maps a theme name to its palette. Unknown names fall back to
// the plain light theme, matching the runtime's behavior of ignoring
// unrecognized themes.
func themePalette(theme string) palette {
	switch theme {
	case "streamlit":
		return palette{
			Background: drawing.ColorWhite,
			Canvas:     drawing.ColorWhite,
			Text:       drawing.Color{R: 49, G: 51, B: 63, A: 255},
			Stroke:     drawing.Color{R: 255, G: 75, B: 75, A: 255},
		}
	case "dark_minimal", "carbon", "night_sky":
		return palette{
			Background: drawing.Color{R: 32, G: 38, B: 43, A: 255},
			Canvas:     drawing.Color{R: 32, G: 38, B: 43, A: 255},
			Text:       drawing.Color{R: 230, G: 230, B: 230, A: 255},
			Stroke:     drawing.Color{R: 114, G: 158, B: 206, A: 255},
		}
	default:
		return palette{
			Background: drawing.ColorWhite,
			Canvas:     drawing.ColorWhite,
			Text:       drawing.ColorBlack,
			Stroke:     drawing.Color{R: 31, G: 119, B: 180, A: 255},
		}
	}
}
