package render

// Letter is the default page size in points
var Letter = PageSize{Width: 612, Height: 792}

// PageSize is a page size in points
type PageSize struct {
	Width, Height float64
}

// Options configures a Renderer. Zero values select the defaults.
type Options struct {
	// PageSize defaults to US Letter
	PageSize PageSize
	// Margin is the left, right and top margin in points, default 50
	Margin float64
	// MaxImageWidth caps the drawn width of images in points, default 360.
	// Images are never drawn wider than the content area.
	MaxImageWidth float64
}

const (
	defaultMargin        = 50.0
	defaultMaxImageWidth = 5 * 72.0
)

func (o Options) withDefaults() Options {
	if o.PageSize.Width <= 0 || o.PageSize.Height <= 0 {
		o.PageSize = Letter
	}
	if o.Margin <= 0 {
		o.Margin = defaultMargin
	}
	if o.MaxImageWidth <= 0 {
		o.MaxImageWidth = defaultMaxImageWidth
	}
	return o
}
