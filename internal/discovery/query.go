package discovery

import (
	"net/url"
	"strings"
	"time"
)

const (
	QueryKeyLocation = "location"
	QueryKeyDate     = "date"

	DateLayout = "2006-01-02"
)

// QueryParams is the search-bar input. Both fields are optional.
type QueryParams struct {
	Location string     `json:"location,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
}

// ParseQuery reads location and date from a querystring. A missing or
// malformed date leaves Date unset.
func ParseQuery(values url.Values) QueryParams {
	q := QueryParams{Location: strings.TrimSpace(values.Get(QueryKeyLocation))}
	q.Date = ParseDate(values.Get(QueryKeyDate))
	return q
}

// ParseDate parses a calendar date in DateLayout and returns nil when raw is
// empty or invalid.
func ParseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil
	}
	return &d
}

// Values is the inverse of ParseQuery. Unset fields are omitted.
func (q QueryParams) Values() url.Values {
	v := url.Values{}
	if loc := strings.TrimSpace(q.Location); loc != "" {
		v.Set(QueryKeyLocation, loc)
	}
	if q.Date != nil {
		v.Set(QueryKeyDate, q.Date.Format(DateLayout))
	}
	return v
}

func (q QueryParams) Encode() string {
	return q.Values().Encode()
}

func (q QueryParams) Equal(o QueryParams) bool {
	if strings.TrimSpace(q.Location) != strings.TrimSpace(o.Location) {
		return false
	}
	if (q.Date == nil) != (o.Date == nil) {
		return false
	}
	return q.Date == nil || q.Date.Equal(*o.Date)
}

// Headline is the results title for the list column.
func (q QueryParams) Headline() string {
	if loc := strings.TrimSpace(q.Location); loc != "" {
		return "Studios in " + loc
	}
	return "All Studios"
}

func (q QueryParams) Subheadline() string {
	if q.Date != nil {
		return "Available on " + q.Date.Format("Jan 2, 2006")
	}
	return "Showing all available studios"
}
