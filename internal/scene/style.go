package scene

// Color is an SVG colour value.
type Color string

// Palette.
const (
	White  Color = "#FFFFFF"
	Black  Color = "#000000"
	Red    Color = "#FC6255"
	Yellow Color = "#FFFF00"
	Blue   Color = "#58C4DD"
	BlueB  Color = "#9CDCEB"
	Green  Color = "#83C167"
	Orange Color = "#FF862F"
	Gold   Color = "#F0AC5F"
	Grey   Color = "#888888"
)

// Style is the paint applied to a shape.
type Style struct {
	Stroke      Color   `json:"stroke,omitempty"`
	Fill        Color   `json:"fill,omitempty"`
	FillOpacity float64 `json:"fill_opacity,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	FontSize    float64 `json:"font_size,omitempty"`
}

// Stroked is an outline-only style.
func Stroked(c Color) Style {
	return Style{Stroke: c, StrokeWidth: 4}
}

// Filled is an outlined shape filled with the same colour.
func Filled(c Color, opacity float64) Style {
	return Style{Stroke: c, Fill: c, FillOpacity: opacity, StrokeWidth: 4}
}

// WithStroke returns s with a different outline.
func (s Style) WithStroke(c Color, width float64) Style {
	s.Stroke = c
	s.StrokeWidth = width
	return s
}
