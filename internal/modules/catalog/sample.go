package catalog

import (
	"fmt"

	"studiofinder/internal/discovery"
)

// SampleStudios returns the eight New York studios used to seed a local
// catalog.
func SampleStudios() []*discovery.Studio {
	studios := []*discovery.Studio{
		{ID: "1", Name: "Neon Sound Studio", Location: "Brooklyn, NY", Coordinates: discovery.Coordinates{Lng: -73.9442, Lat: 40.6782}, PricePerHour: 35, Rating: 4.9, ReviewCount: 128, Equipment: []string{"Pro Tools", "Neumann Mics", "Yamaha Monitors", "SSL Console"}, MaxCapacity: 6},
		{ID: "2", Name: "Midnight Sessions", Location: "Manhattan, NY", Coordinates: discovery.Coordinates{Lng: -73.9857, Lat: 40.7484}, PricePerHour: 75, Rating: 4.8, ReviewCount: 96, Equipment: []string{"SSL Console", "U87", "Genelec", "Pro Tools HD"}, MaxCapacity: 10},
		{ID: "3", Name: "The Sonic Lab", Location: "Queens, NY", Coordinates: discovery.Coordinates{Lng: -73.7949, Lat: 40.7282}, PricePerHour: 35, Rating: 4.7, ReviewCount: 64, Equipment: []string{"Logic Pro", "Rode Mics", "KRK Monitors"}, MaxCapacity: 4},
		{ID: "4", Name: "Bassment Studio", Location: "Williamsburg, NY", Coordinates: discovery.Coordinates{Lng: -73.9574, Lat: 40.7081}, PricePerHour: 55, Rating: 5.0, ReviewCount: 42, Equipment: []string{"Ableton", "SM7B", "Adam Audio", "Moog Synth"}, MaxCapacity: 8},
		{ID: "5", Name: "Echo Chamber", Location: "Greenpoint, NY", Coordinates: discovery.Coordinates{Lng: -73.9442, Lat: 40.73}, PricePerHour: 60, Rating: 4.8, ReviewCount: 87, Equipment: []string{"Reason", "AKG Mics", "Dynaudio", "Outboard Gear"}, MaxCapacity: 5},
		{ID: "6", Name: "Frequency Studios", Location: "Astoria, NY", Coordinates: discovery.Coordinates{Lng: -73.9186, Lat: 40.7644}, PricePerHour: 40, Rating: 4.6, ReviewCount: 53, Equipment: []string{"Cubase", "Shure Mics", "JBL Monitors"}, MaxCapacity: 6},
		{ID: "7", Name: "The Loft", Location: "Soho, NY", Coordinates: discovery.Coordinates{Lng: -74.0019, Lat: 40.7233}, PricePerHour: 95, Rating: 4.9, ReviewCount: 156, Equipment: []string{"Neve Console", "U47", "PMC Monitors", "Pro Tools HDX"}, MaxCapacity: 15},
		{ID: "8", Name: "Rhythm House", Location: "Harlem, NY", Coordinates: discovery.Coordinates{Lng: -73.9465, Lat: 40.8176}, PricePerHour: 38, Rating: 4.5, ReviewCount: 41, Equipment: []string{"FL Studio", "Audio Technica", "KRK", "Drum Kit"}, MaxCapacity: 8},
	}
	for _, s := range studios {
		s.Images = []string{fmt.Sprintf("/images/studios/%s.jpg", s.ID)}
	}
	return studios
}
