package discovery

import "fmt"

// SelectionSource is the surface that last wrote the selection.
type SelectionSource string

const (
	SourceNone SelectionSource = "none"
	SourceList SelectionSource = "list"
	SourceMap  SelectionSource = "map"
)

func ParseSelectionSource(raw string) (SelectionSource, error) {
	switch SelectionSource(raw) {
	case SourceList, SourceMap:
		return SelectionSource(raw), nil
	case SourceNone, "":
		return SourceNone, nil
	}
	return SourceNone, fmt.Errorf("unknown selection source %q", raw)
}

// Origin is the interaction that produced a selection.
type Origin string

const (
	OriginNone  Origin = "none"
	OriginHover Origin = "hover"
	OriginClick Origin = "click"
)

// Selection is the single highlighted-studio slot shared by the list and
// the map. An empty StudioID means nothing is selected.
type Selection struct {
	StudioID string          `json:"studio_id,omitempty"`
	Source   SelectionSource `json:"source"`
	Origin   Origin          `json:"origin"`
}

func (s Selection) Empty() bool { return s.StudioID == "" }

var noSelection = Selection{Source: SourceNone, Origin: OriginNone}

// SelectionCoordinator owns the selection slot. Both surfaces write through
// it and read from it; neither touches the other directly.
//
// A click selection holds until it is replaced by another click, cleared, or
// its studio leaves the visible set. Hovers only apply while no click
// selection is held, and ending a hover clears only the hover it started.
type SelectionCoordinator struct {
	current Selection
}

func NewSelectionCoordinator() *SelectionCoordinator {
	return &SelectionCoordinator{current: noSelection}
}

func (c *SelectionCoordinator) Current() Selection { return c.current }

// Select writes the slot and reports whether it changed.
func (c *SelectionCoordinator) Select(id string, source SelectionSource, origin Origin) bool {
	if id == "" {
		return false
	}
	next := Selection{StudioID: id, Source: source, Origin: origin}
	switch origin {
	case OriginClick:
	case OriginHover:
		if c.current.Origin == OriginClick {
			return false
		}
	default:
		return false
	}
	return c.set(next)
}

func (c *SelectionCoordinator) Hover(id string, source SelectionSource) bool {
	return c.Select(id, source, OriginHover)
}

func (c *SelectionCoordinator) Click(id string, source SelectionSource) bool {
	return c.Select(id, source, OriginClick)
}

// HoverEnd releases a hover selection on id. Click selections are kept.
func (c *SelectionCoordinator) HoverEnd(id string) bool {
	if c.current.Origin != OriginHover || c.current.StudioID != id {
		return false
	}
	return c.set(noSelection)
}

func (c *SelectionCoordinator) Clear() bool {
	return c.set(noSelection)
}

// Reconcile clears the selection when its studio is no longer visible.
func (c *SelectionCoordinator) Reconcile(visible []*Studio) bool {
	if c.current.Empty() {
		return false
	}
	for _, s := range visible {
		if s.ID == c.current.StudioID {
			return false
		}
	}
	return c.set(noSelection)
}

func (c *SelectionCoordinator) set(next Selection) bool {
	if next == c.current {
		return false
	}
	c.current = next
	return true
}
