package discovery

import (
	"math"
	"strings"
)

const (
	PriceFloor   = 0.0
	PriceCeiling = 500.0
	PriceStep    = 10.0

	CapacityCeiling = 500
)

// EquipmentOptions and CapacityOptions are the facet choices offered in the
// filter panel.
var (
	EquipmentOptions = []string{
		"Microphones",
		"Mixing Console",
		"Monitors",
		"Keyboard",
		"Drums",
		"Guitar Amps",
		"Bass Amps",
		"Synth",
		"DAW",
		"Outboard Gear",
	}
	CapacityOptions = []int{1, 2, 4, 6, 10, 15}
)

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether price lies in the closed range.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

func (r PriceRange) narrowed() bool {
	return r.Min > PriceFloor || r.Max < PriceCeiling
}

// FilterState is the facet selection of one search session.
// PriceRange.Min <= PriceRange.Max always holds for values produced by Apply.
type FilterState struct {
	PriceRange  PriceRange `json:"price_range"`
	Equipment   []string   `json:"equipment"`
	Capacity    *int       `json:"capacity"`
	InstantBook bool       `json:"instant_book"`
}

func DefaultFilters() FilterState {
	return FilterState{
		PriceRange: PriceRange{Min: PriceFloor, Max: PriceCeiling},
		Equipment:  []string{},
	}
}

// Equal compares by value. Equipment is compared as a case-insensitive set.
func (f FilterState) Equal(o FilterState) bool {
	if f.PriceRange != o.PriceRange || f.InstantBook != o.InstantBook {
		return false
	}
	if (f.Capacity == nil) != (o.Capacity == nil) {
		return false
	}
	if f.Capacity != nil && *f.Capacity != *o.Capacity {
		return false
	}
	if len(f.Equipment) != len(o.Equipment) {
		return false
	}
	for _, tag := range f.Equipment {
		if indexTag(o.Equipment, tag) < 0 {
			return false
		}
	}
	return true
}

// ActiveFilterCount counts facet categories that differ from the defaults,
// one per category regardless of how many tags are selected.
func ActiveFilterCount(f FilterState) int {
	n := 0
	if len(f.Equipment) > 0 {
		n++
	}
	if f.Capacity != nil {
		n++
	}
	if f.InstantBook {
		n++
	}
	if f.PriceRange.narrowed() {
		n++
	}
	return n
}

// FilterAction is a user intent on the filter panel. Build one with the
// constructors below and feed it to Apply.
type FilterAction interface {
	apply(FilterState) FilterState
}

type setPriceMax struct{ max float64 }

type setPriceRange struct{ min, max float64 }

type toggleEquipment struct{ tag string }

type setCapacity struct{ capacity *int }

type toggleCapacity struct{ capacity int }

type setInstantBook struct{ on bool }

type clearFilters struct{}

func SetPriceMax(max float64) FilterAction        { return setPriceMax{max} }
func SetPriceRange(min, max float64) FilterAction { return setPriceRange{min, max} }
func ToggleEquipment(tag string) FilterAction     { return toggleEquipment{tag} }
func SetInstantBook(on bool) FilterAction         { return setInstantBook{on} }
func ClearFilters() FilterAction                  { return clearFilters{} }
func ToggleCapacity(capacity int) FilterAction    { return toggleCapacity{capacity} }

// SetCapacity sets the minimum capacity. A nil capacity removes the facet.
func SetCapacity(capacity *int) FilterAction {
	if capacity == nil {
		return setCapacity{}
	}
	c := *capacity
	return setCapacity{&c}
}

// Apply returns the state after action. It never fails: numeric input is
// clamped to [PriceFloor, PriceCeiling] and the input state is not modified.
func Apply(state FilterState, action FilterAction) FilterState {
	next := state.clone()
	if action == nil {
		return next
	}
	return action.apply(next)
}

func (a setPriceMax) apply(f FilterState) FilterState {
	f.PriceRange.Max = clampPrice(a.max)
	if f.PriceRange.Min > f.PriceRange.Max {
		f.PriceRange.Min = f.PriceRange.Max
	}
	return f
}

func (a setPriceRange) apply(f FilterState) FilterState {
	f.PriceRange = PriceRange{Min: clampPrice(a.min), Max: clampPrice(a.max)}
	if f.PriceRange.Min > f.PriceRange.Max {
		f.PriceRange.Min = f.PriceRange.Max
	}
	return f
}

func (a toggleEquipment) apply(f FilterState) FilterState {
	tag := strings.TrimSpace(a.tag)
	if tag == "" {
		return f
	}
	if i := indexTag(f.Equipment, tag); i >= 0 {
		f.Equipment = append(f.Equipment[:i], f.Equipment[i+1:]...)
		return f
	}
	f.Equipment = append(f.Equipment, tag)
	return f
}

func (a setCapacity) apply(f FilterState) FilterState {
	if a.capacity == nil {
		f.Capacity = nil
		return f
	}
	c := clampCapacity(*a.capacity)
	f.Capacity = &c
	return f
}

func (a toggleCapacity) apply(f FilterState) FilterState {
	c := clampCapacity(a.capacity)
	if f.Capacity != nil && *f.Capacity == c {
		f.Capacity = nil
		return f
	}
	f.Capacity = &c
	return f
}

func (a setInstantBook) apply(f FilterState) FilterState {
	f.InstantBook = a.on
	return f
}

func (clearFilters) apply(FilterState) FilterState {
	return DefaultFilters()
}

func (f FilterState) clone() FilterState {
	out := f
	out.Equipment = append(make([]string, 0, len(f.Equipment)), f.Equipment...)
	if f.Capacity != nil {
		c := *f.Capacity
		out.Capacity = &c
	}
	return out
}

func clampPrice(v float64) float64 {
	if math.IsNaN(v) {
		return PriceFloor
	}
	return math.Min(PriceCeiling, math.Max(PriceFloor, v))
}

func clampCapacity(v int) int {
	if v < 0 {
		return 0
	}
	if v > CapacityCeiling {
		return CapacityCeiling
	}
	return v
}

func indexTag(tags []string, tag string) int {
	for i, t := range tags {
		if strings.EqualFold(t, tag) {
			return i
		}
	}
	return -1
}

// FilterStore holds the filter state of a session and notifies a listener
// after every action that changed it.
type FilterStore struct {
	state    FilterState
	listener func(FilterState)
}

func NewFilterStore(listener func(FilterState)) *FilterStore {
	return &FilterStore{state: DefaultFilters(), listener: listener}
}

func (s *FilterStore) State() FilterState {
	return s.state.clone()
}

// Dispatch applies action and reports whether the state changed.
func (s *FilterStore) Dispatch(action FilterAction) bool {
	next := Apply(s.state, action)
	if next.Equal(s.state) {
		return false
	}
	s.state = next
	if s.listener != nil {
		s.listener(next.clone())
	}
	return true
}
