package discovery

import "fmt"

type ViewMode string

const (
	ViewSplit ViewMode = "split"
	ViewList  ViewMode = "list"
	ViewMap   ViewMode = "map"
)

const DefaultBreakpoint = 768

func ParseViewMode(raw string) (ViewMode, error) {
	switch ViewMode(raw) {
	case ViewSplit, ViewList, ViewMap:
		return ViewMode(raw), nil
	}
	return "", fmt.Errorf("unknown view mode %q", raw)
}

// WidthClass buckets container widths around the breakpoint.
type WidthClass int

const (
	WidthMobile WidthClass = iota
	WidthDesktop
)

func ClassifyWidth(widthPx, breakpoint int) WidthClass {
	if widthPx < breakpoint {
		return WidthMobile
	}
	return WidthDesktop
}

// Resolve picks the rendered mode for a width and an optional explicit
// choice ("" for none). Mobile is list unless the map was requested; desktop
// is split unless list or map was chosen.
func Resolve(widthPx int, override ViewMode) ViewMode {
	return resolve(ClassifyWidth(widthPx, DefaultBreakpoint), override)
}

func resolve(class WidthClass, override ViewMode) ViewMode {
	if class == WidthMobile {
		if override == ViewMap {
			return ViewMap
		}
		return ViewList
	}
	if override == ViewList || override == ViewMap {
		return override
	}
	return ViewSplit
}

// ViewModeController keeps the override for the current width class and
// drops it whenever the container crosses the breakpoint.
type ViewModeController struct {
	breakpoint int
	class      WidthClass
	override   ViewMode
}

func NewViewModeController(breakpoint, widthPx int) *ViewModeController {
	if breakpoint <= 0 {
		breakpoint = DefaultBreakpoint
	}
	return &ViewModeController{
		breakpoint: breakpoint,
		class:      ClassifyWidth(widthPx, breakpoint),
	}
}

func (c *ViewModeController) Mode() ViewMode {
	return resolve(c.class, c.override)
}

func (c *ViewModeController) Class() WidthClass { return c.class }

// Resize reports the new mode and whether it changed.
func (c *ViewModeController) Resize(widthPx int) (ViewMode, bool) {
	before := c.Mode()
	if class := ClassifyWidth(widthPx, c.breakpoint); class != c.class {
		c.class = class
		c.override = ""
	}
	mode := c.Mode()
	return mode, mode != before
}

// Override records an explicit user choice within the current class.
func (c *ViewModeController) Override(mode ViewMode) (ViewMode, bool) {
	before := c.Mode()
	switch mode {
	case ViewSplit:
		c.override = ""
	case ViewList, ViewMap:
		c.override = mode
	}
	after := c.Mode()
	return after, after != before
}
