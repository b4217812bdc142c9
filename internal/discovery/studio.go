// Package discovery is the search and view-synchronization engine behind the
// studio search page. It owns filter and query state, derives the visible
// result set and keeps the list, the map markers, the camera and the
// highlighted studio consistent with each other.
//
// Everything in this package except Engine is a plain value or a
// single-writer state holder with no I/O. Engine funnels all mutation for one
// search session and is the only type that talks to the catalog.
package discovery

import (
	"encoding/json"
	"fmt"
	"strings"
)

const placeholderImage = "/images/studio-placeholder.jpg"

// Coordinates is a WGS84 position in degrees. JSON form is [lng, lat].
type Coordinates struct {
	Lng float64
	Lat float64
}

func (c Coordinates) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lng, c.Lat})
}

func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coordinates: expected [lng,lat]: %w", err)
	}
	c.Lng, c.Lat = pair[0], pair[1]
	return nil
}

// Studio is a rentable studio as delivered by the catalog. The engine keeps
// pointers to the catalog's values and never modifies them.
type Studio struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Location     string      `json:"location"`
	Coordinates  Coordinates `json:"coordinates"`
	PricePerHour float64     `json:"price_per_hour"`
	Rating       float64     `json:"rating"`
	ReviewCount  int         `json:"review_count"`
	Equipment    []string    `json:"equipment"`
	MaxCapacity  int         `json:"max_capacity"`
	Images       []string    `json:"images"`
}

// CoverImage returns the first image or a placeholder.
func (s *Studio) CoverImage() string {
	if len(s.Images) == 0 || s.Images[0] == "" {
		return placeholderImage
	}
	return s.Images[0]
}

// HasEquipment reports whether the studio lists tag, ignoring case.
func (s *Studio) HasEquipment(tag string) bool {
	for _, e := range s.Equipment {
		if strings.EqualFold(e, tag) {
			return true
		}
	}
	return false
}

// studioIDs returns the ids of studios in order.
func studioIDs(studios []*Studio) []string {
	ids := make([]string, len(studios))
	for i, s := range studios {
		ids[i] = s.ID
	}
	return ids
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
