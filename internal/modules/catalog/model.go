package catalog

import (
	"strings"
	"time"

	"studiofinder/internal/discovery"

	"gorm.io/gorm"
)

// Studio is the persisted catalog row.
type Studio struct {
	ID           string         `gorm:"primaryKey;size:64" json:"id"`
	Position     int            `gorm:"index" json:"-"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Location     string         `gorm:"size:255;index" json:"location"`
	Longitude    float64        `json:"longitude"`
	Latitude     float64        `json:"latitude"`
	PricePerHour float64        `gorm:"not null;default:0" json:"price_per_hour"`
	Rating       float64        `gorm:"default:0" json:"rating"`
	ReviewCount  int            `gorm:"default:0" json:"review_count"`
	MaxCapacity  int            `gorm:"default:0" json:"max_capacity"`
	Images       []string       `gorm:"serializer:json" json:"images"`
	Equipment    []Equipment    `gorm:"foreignKey:StudioID;constraint:OnDelete:CASCADE" json:"equipment"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Studio) TableName() string { return "studios" }

// Equipment is one tag listed by a studio.
type Equipment struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	StudioID string `gorm:"size:64;index;not null" json:"studio_id"`
	Name     string `gorm:"size:100;not null" json:"name"`
}

func (Equipment) TableName() string { return "studio_equipment" }

// ToDiscovery converts the row into the engine's read-only record.
func (s *Studio) ToDiscovery() *discovery.Studio {
	tags := make([]string, 0, len(s.Equipment))
	for _, e := range s.Equipment {
		tags = append(tags, e.Name)
	}
	images := s.Images
	if images == nil {
		images = []string{}
	}
	return &discovery.Studio{
		ID:           s.ID,
		Name:         s.Name,
		Location:     s.Location,
		Coordinates:  discovery.Coordinates{Lng: s.Longitude, Lat: s.Latitude},
		PricePerHour: s.PricePerHour,
		Rating:       s.Rating,
		ReviewCount:  s.ReviewCount,
		Equipment:    tags,
		MaxCapacity:  s.MaxCapacity,
		Images:       images,
	}
}

// FromDiscovery builds a row from a studio record. Blank equipment tags are
// dropped.
func FromDiscovery(d *discovery.Studio, position int) *Studio {
	s := &Studio{
		ID:           d.ID,
		Position:     position,
		Name:         d.Name,
		Location:     d.Location,
		Longitude:    d.Coordinates.Lng,
		Latitude:     d.Coordinates.Lat,
		PricePerHour: d.PricePerHour,
		Rating:       d.Rating,
		ReviewCount:  d.ReviewCount,
		MaxCapacity:  d.MaxCapacity,
		Images:       append([]string{}, d.Images...),
	}
	for _, tag := range d.Equipment {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		s.Equipment = append(s.Equipment, Equipment{StudioID: d.ID, Name: tag})
	}
	return s
}

func toDiscovery(rows []Studio) []*discovery.Studio {
	out := make([]*discovery.Studio, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDiscovery()
	}
	return out
}
