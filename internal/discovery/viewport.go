package discovery

import (
	"math"
	"time"
)

const (
	DefaultFitPadding        = 50
	DefaultAnimationDuration = 1000 * time.Millisecond
	DefaultMaxZoom           = 16.0
	FocusZoom                = 14.0

	tileSize  = 512.0
	maxLat    = 85.051129
	minWidth  = 1
	minHeight = 1
)

var (
	DefaultCenter    = Coordinates{Lng: -74.006, Lat: 40.7128}
	DefaultZoom      = 11.0
	DefaultContainer = Size{Width: 1024, Height: 768}
)

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Bounds struct {
	MinLng float64 `json:"min_lng"`
	MinLat float64 `json:"min_lat"`
	MaxLng float64 `json:"max_lng"`
	MaxLat float64 `json:"max_lat"`
}

func (b Bounds) Contains(c Coordinates) bool {
	return c.Lng >= b.MinLng && c.Lng <= b.MaxLng && c.Lat >= b.MinLat && c.Lat <= b.MaxLat
}

// Viewport is the map camera. It is always derived, never edited by hand.
type Viewport struct {
	Bounds Bounds      `json:"bounds"`
	Center Coordinates `json:"center"`
	Zoom   float64     `json:"zoom"`
}

// BoundingBox returns the smallest box that contains every studio. ok is
// false for an empty slice.
func BoundingBox(studios []*Studio) (b Bounds, ok bool) {
	for _, s := range studios {
		c := s.Coordinates
		if !ok {
			b = Bounds{MinLng: c.Lng, MaxLng: c.Lng, MinLat: c.Lat, MaxLat: c.Lat}
			ok = true
			continue
		}
		b.MinLng = math.Min(b.MinLng, c.Lng)
		b.MaxLng = math.Max(b.MaxLng, c.Lng)
		b.MinLat = math.Min(b.MinLat, c.Lat)
		b.MaxLat = math.Max(b.MaxLat, c.Lat)
	}
	return b, ok
}

// FitterOptions configures a Fitter. Zero values take the defaults.
type FitterOptions struct {
	PaddingPx         int
	MaxZoom           float64
	AnimationDuration time.Duration
	Container         Size
}

func (o FitterOptions) withDefaults() FitterOptions {
	if o.PaddingPx <= 0 {
		o.PaddingPx = DefaultFitPadding
	}
	if o.MaxZoom <= 0 {
		o.MaxZoom = DefaultMaxZoom
	}
	if o.AnimationDuration <= 0 {
		o.AnimationDuration = DefaultAnimationDuration
	}
	if o.Container.Width <= 0 || o.Container.Height <= 0 {
		o.Container = DefaultContainer
	}
	return o
}

// Fitter frames the visible studios. It refits only when the ordered id list
// changes and keeps the last non-empty fit when the set becomes empty.
type Fitter struct {
	opts    FitterOptions
	current Viewport
	lastIDs []string
	fitted  bool
}

func NewFitter(opts FitterOptions) *Fitter {
	f := &Fitter{opts: opts.withDefaults()}
	f.current = f.solve(DefaultCenter, DefaultZoom)
	return f
}

func (f *Fitter) Viewport() Viewport { return f.current }

func (f *Fitter) AnimationDuration() time.Duration { return f.opts.AnimationDuration }

func (f *Fitter) Container() Size { return f.opts.Container }

// Fit returns the camera for studios and whether it moved.
func (f *Fitter) Fit(studios []*Studio) (Viewport, bool) {
	if len(studios) == 0 {
		return f.current, false
	}
	ids := studioIDs(studios)
	if f.fitted && sameIDs(ids, f.lastIDs) {
		return f.current, false
	}
	box, _ := BoundingBox(studios)
	next := f.fitBox(box)
	f.lastIDs = ids
	f.fitted = true
	moved := next != f.current
	f.current = next
	return f.current, moved
}

// Resize changes the container and refits the last framed set.
func (f *Fitter) Resize(size Size, studios []*Studio) (Viewport, bool) {
	if size.Width < minWidth || size.Height < minHeight || size == f.opts.Container {
		return f.current, false
	}
	f.opts.Container = size
	if !f.fitted || len(studios) == 0 {
		prev := f.current
		f.current = f.solve(f.current.Center, f.current.Zoom)
		return f.current, prev != f.current
	}
	f.lastIDs = nil
	return f.Fit(studios)
}

// Focus centers the camera on one studio at FocusZoom, as after a marker
// click. The fitted id list is kept so the next identical set does not refit.
func (f *Fitter) Focus(s *Studio) Viewport {
	if s == nil {
		return f.current
	}
	f.current = f.solve(s.Coordinates, math.Min(FocusZoom, f.opts.MaxZoom))
	return f.current
}

func (f *Fitter) fitBox(box Bounds) Viewport {
	x0, y0 := project(Coordinates{Lng: box.MinLng, Lat: box.MaxLat})
	x1, y1 := project(Coordinates{Lng: box.MaxLng, Lat: box.MinLat})
	center := unproject((x0+x1)/2, (y0+y1)/2)

	pad := float64(2 * f.opts.PaddingPx)
	availW := math.Max(float64(f.opts.Container.Width)-pad, minWidth)
	availH := math.Max(float64(f.opts.Container.Height)-pad, minHeight)

	zoom := f.opts.MaxZoom
	dx, dy := x1-x0, y1-y0
	if dx > 0 || dy > 0 {
		scale := math.Inf(1)
		if dx > 0 {
			scale = availW / (dx * tileSize)
		}
		if dy > 0 {
			scale = math.Min(scale, availH/(dy*tileSize))
		}
		zoom = math.Min(math.Log2(scale), f.opts.MaxZoom)
	}
	zoom = math.Max(zoom, 0)
	return f.solve(center, zoom)
}

// solve derives the visible bounds of a camera at center and zoom.
func (f *Fitter) solve(center Coordinates, zoom float64) Viewport {
	world := tileSize * math.Exp2(zoom)
	cx, cy := project(center)
	halfW := float64(f.opts.Container.Width) / 2 / world
	halfH := float64(f.opts.Container.Height) / 2 / world
	nw := unproject(cx-halfW, cy-halfH)
	se := unproject(cx+halfW, cy+halfH)
	return Viewport{
		Bounds: Bounds{MinLng: nw.Lng, MaxLng: se.Lng, MinLat: se.Lat, MaxLat: nw.Lat},
		Center: roundCoordinates(center),
		Zoom:   round(zoom, 4),
	}
}

// project maps a position to Web Mercator world coordinates in [0,1].
func project(c Coordinates) (x, y float64) {
	lat := math.Max(-maxLat, math.Min(maxLat, c.Lat)) * math.Pi / 180
	x = (c.Lng + 180) / 360
	y = (1 - math.Log(math.Tan(lat)+1/math.Cos(lat))/math.Pi) / 2
	return x, y
}

func unproject(x, y float64) Coordinates {
	lng := x*360 - 180
	n := math.Pi * (1 - 2*y)
	lat := math.Atan(math.Sinh(n)) * 180 / math.Pi
	return Coordinates{Lng: lng, Lat: lat}
}

func roundCoordinates(c Coordinates) Coordinates {
	return Coordinates{Lng: round(c.Lng, 6), Lat: round(c.Lat, 6)}
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
