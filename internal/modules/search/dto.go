package search

import (
	"errors"
	"strings"

	"studiofinder/internal/discovery"
)

type CreateSessionRequest struct {
	Location string `json:"location" validate:"max=255"`
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Width    int    `json:"width" validate:"omitempty,gte=1,lte=10000"`
	Height   int    `json:"height" validate:"omitempty,gte=1,lte=10000"`
}

func (r CreateSessionRequest) query() discovery.QueryParams {
	return QueryRequest{Location: r.Location, Date: r.Date}.query()
}

type QueryRequest struct {
	Location string `json:"location" validate:"max=255"`
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (r QueryRequest) query() discovery.QueryParams {
	return discovery.QueryParams{
		Location: strings.TrimSpace(r.Location),
		Date:     discovery.ParseDate(r.Date),
	}
}

const (
	FilterSetPriceMax     = "set_price_max"
	FilterSetPriceRange   = "set_price_range"
	FilterToggleEquipment = "toggle_equipment"
	FilterSetCapacity     = "set_capacity"
	FilterToggleCapacity  = "toggle_capacity"
	FilterSetInstantBook  = "set_instant_book"
	FilterClear           = "clear"
)

// FilterRequest carries one filter action. Which value fields are required
// depends on Type.
type FilterRequest struct {
	Type        string   `json:"type" validate:"required,oneof=set_price_max set_price_range toggle_equipment set_capacity toggle_capacity set_instant_book clear"`
	Min         *float64 `json:"min"`
	Max         *float64 `json:"max"`
	Equipment   string   `json:"equipment" validate:"max=100"`
	Capacity    *int     `json:"capacity" validate:"omitempty,gte=0"`
	InstantBook *bool    `json:"instant_book"`
}

var errMissingValue = errors.New("missing value for filter type")

func (r FilterRequest) Action() (discovery.FilterAction, error) {
	switch r.Type {
	case FilterSetPriceMax:
		if r.Max == nil {
			return nil, errMissingValue
		}
		return discovery.SetPriceMax(*r.Max), nil
	case FilterSetPriceRange:
		if r.Min == nil || r.Max == nil {
			return nil, errMissingValue
		}
		return discovery.SetPriceRange(*r.Min, *r.Max), nil
	case FilterToggleEquipment:
		if strings.TrimSpace(r.Equipment) == "" {
			return nil, errMissingValue
		}
		return discovery.ToggleEquipment(r.Equipment), nil
	case FilterSetCapacity:
		return discovery.SetCapacity(r.Capacity), nil
	case FilterToggleCapacity:
		if r.Capacity == nil {
			return nil, errMissingValue
		}
		return discovery.ToggleCapacity(*r.Capacity), nil
	case FilterSetInstantBook:
		if r.InstantBook == nil {
			return nil, errMissingValue
		}
		return discovery.SetInstantBook(*r.InstantBook), nil
	case FilterClear:
		return discovery.ClearFilters(), nil
	}
	return nil, errors.New("unknown filter type")
}

type SortRequest struct {
	Key string `json:"key" validate:"required,oneof=none price_asc price_desc rating name"`
}

const (
	SelectHover    = "hover"
	SelectHoverEnd = "hover_end"
	SelectClick    = "click"
	SelectClear    = "clear"
)

type SelectionRequest struct {
	Type     string `json:"type" validate:"required,oneof=hover hover_end click clear"`
	StudioID string `json:"studio_id" validate:"required_unless=Type clear,max=64"`
	Source   string `json:"source" validate:"omitempty,oneof=list map"`
}

type ViewportRequest struct {
	Width  int `json:"width" validate:"required,gte=1,lte=10000"`
	Height int `json:"height" validate:"required,gte=1,lte=10000"`
}

type ViewModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=split list map"`
}

type SessionResponse struct {
	SessionID string             `json:"session_id"`
	Token     string             `json:"token"`
	ExpiresIn int64              `json:"expires_in"` // idle seconds before the session ends
	Snapshot  discovery.Snapshot `json:"snapshot"`
}

type PriceBounds struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

type FacetsResponse struct {
	Equipment []string             `json:"equipment"`
	Capacity  []int                `json:"capacity"`
	Price     PriceBounds          `json:"price"`
	SortKeys  []discovery.SortKey  `json:"sort_keys"`
	ViewModes []discovery.ViewMode `json:"view_modes"`
}

func facets() FacetsResponse {
	return FacetsResponse{
		Equipment: append([]string{}, discovery.EquipmentOptions...),
		Capacity:  append([]int{}, discovery.CapacityOptions...),
		Price:     PriceBounds{Min: discovery.PriceFloor, Max: discovery.PriceCeiling, Step: discovery.PriceStep},
		SortKeys:  append([]discovery.SortKey{}, discovery.SortKeys...),
		ViewModes: []discovery.ViewMode{discovery.ViewSplit, discovery.ViewList, discovery.ViewMap},
	}
}
