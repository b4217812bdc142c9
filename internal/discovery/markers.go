package discovery

import "strconv"

// Marker is the handle of one studio pin on the map.
type Marker struct {
	StudioID string      `json:"studio_id"`
	Position Coordinates `json:"position"`
	Label    string      `json:"label"`
	Selected bool        `json:"selected"`
}

// MarkerDiff is what the map surface has to do to match the visible set.
type MarkerDiff struct {
	Added   []Marker `json:"added"`
	Removed []string `json:"removed"`
	Updated []Marker `json:"updated"`
}

func (d MarkerDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Updated) == 0
}

// merge folds a later diff into d.
func (d MarkerDiff) merge(later MarkerDiff) MarkerDiff {
	out := MarkerDiff{
		Added:   append([]Marker{}, d.Added...),
		Removed: append([]string{}, d.Removed...),
		Updated: append([]Marker{}, d.Updated...),
	}
	out.Added = append(out.Added, later.Added...)
	out.Removed = append(out.Removed, later.Removed...)
	out.Updated = append(out.Updated, later.Updated...)
	return out
}

// MarkerSet keeps marker handles keyed by studio id. Handles for studios
// that stay visible are never recreated, only updated.
type MarkerSet struct {
	markers map[string]*Marker
	order   []string
}

func NewMarkerSet() *MarkerSet {
	return &MarkerSet{markers: make(map[string]*Marker)}
}

func MarkerLabel(price float64) string {
	return "$" + strconv.FormatFloat(price, 'f', -1, 64)
}

// Reconcile adds markers for new ids, removes markers for ids that left and
// updates in place the ones whose position, label or highlight changed.
// Running it twice with the same input yields an empty diff the second time.
func (m *MarkerSet) Reconcile(visible []*Studio, selectedID string) MarkerDiff {
	var diff MarkerDiff
	keep := make(map[string]bool, len(visible))
	order := make([]string, 0, len(visible))
	for _, s := range visible {
		if keep[s.ID] {
			continue
		}
		keep[s.ID] = true
		order = append(order, s.ID)

		label := MarkerLabel(s.PricePerHour)
		selected := s.ID == selectedID
		mk, ok := m.markers[s.ID]
		if !ok {
			mk = &Marker{StudioID: s.ID, Position: s.Coordinates, Label: label, Selected: selected}
			m.markers[s.ID] = mk
			diff.Added = append(diff.Added, *mk)
			continue
		}
		if mk.Position != s.Coordinates || mk.Label != label || mk.Selected != selected {
			mk.Position = s.Coordinates
			mk.Label = label
			mk.Selected = selected
			diff.Updated = append(diff.Updated, *mk)
		}
	}
	for _, id := range m.order {
		if !keep[id] {
			delete(m.markers, id)
			diff.Removed = append(diff.Removed, id)
		}
	}
	m.order = order
	return diff
}

// Highlight marks the marker for selectedID and unmarks the others, by id.
func (m *MarkerSet) Highlight(selectedID string) MarkerDiff {
	var diff MarkerDiff
	for _, id := range m.order {
		mk := m.markers[id]
		want := id == selectedID
		if mk.Selected != want {
			mk.Selected = want
			diff.Updated = append(diff.Updated, *mk)
		}
	}
	return diff
}

// Markers returns the current handles in visible order.
func (m *MarkerSet) Markers() []Marker {
	out := make([]Marker, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.markers[id])
	}
	return out
}

func (m *MarkerSet) Len() int { return len(m.order) }
