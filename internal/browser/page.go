package browser

// PageSize is a paper size in centimeters.
type PageSize struct {
	Width  float64
	Height float64
}

// Paper sizes used for printed statements.
var (
	Letter = PageSize{Width: 21.59, Height: 27.94}
	A4     = PageSize{Width: 21.0, Height: 29.7}
)

// Margin holds page margins in centimeters.
type Margin struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// UniformMargin returns a Margin with the same value on all sides.
func UniformMargin(cm float64) Margin {
	return Margin{Top: cm, Right: cm, Bottom: cm, Left: cm}
}

// PageConfig controls how [Browser.PrintHTML] lays out the PDF.
// Zero-value fields fall back to [DefaultPageConfig].
type PageConfig struct {
	Size            PageSize
	Margin          Margin
	Scale           float64
	PrintBackground bool
}

// DefaultPageConfig returns US Letter with 1.5 cm margins at scale 1.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Size:            Letter,
		Margin:          UniformMargin(1.5),
		Scale:           1.0,
		PrintBackground: true,
	}
}

func (p *PageConfig) resolved() PageConfig {
	d := DefaultPageConfig()
	if p == nil {
		return d
	}
	r := *p
	if r.Size == (PageSize{}) {
		r.Size = d.Size
	}
	if r.Scale <= 0 {
		r.Scale = d.Scale
	}
	if r.Margin == (Margin{}) {
		r.Margin = d.Margin
	}
	return r
}

func cmToInches(cm float64) float64 {
	return cm / 2.54
}
