package models

import (
	"fmt"
	"strings"
)

// Resource identifies one Weather Underground data feature
type Resource int

const (
	Conditions Resource = iota
	HourlyForecast
	HourlyTenDayForecast
	Forecast
	Almanac
	Yesterday
	Geolookup
	Astronomy
	Alerts
	History
)

var resourceNames = map[Resource]string{
	Conditions:           "conditions",
	HourlyForecast:       "hourly",
	HourlyTenDayForecast: "hourly10day",
	Forecast:             "forecast",
	Almanac:              "almanac",
	Yesterday:            "yesterday",
	Geolookup:            "geolookup",
	Astronomy:            "astronomy",
	Alerts:               "alerts",
	History:              "history",
}

// String returns the feature name used by the API
func (r Resource) String() string {
	if name, ok := resourceNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Resource(%d)", int(r))
}

// Token returns the URL path segment for the resource.
// History is parameterised by date, see HistoryToken.
func (r Resource) Token() string {
	return r.String() + "/"
}

// HistoryToken returns the path segment for a history lookup on a YYYYMMDD date
func HistoryToken(date string) string {
	return "history_" + date + "/"
}

// ParseResource maps a feature name ("conditions", "hourly", ...) to its Resource.
// History is not selectable by name since its segment carries a date.
func ParseResource(name string) (Resource, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == History.String() {
		return 0, fmt.Errorf("resource %q needs a date and cannot be selected as a feature", name)
	}
	for r, n := range resourceNames {
		if n == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown resource %q", name)
}

// ParseResources parses a comma separated feature list, keeping order and duplicates
func ParseResources(list string) ([]Resource, error) {
	var resources []Resource
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		r, err := ParseResource(part)
		if err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, nil
}

// ContainsResource reports whether r appears in resources
func ContainsResource(resources []Resource, r Resource) bool {
	for _, candidate := range resources {
		if candidate == r {
			return true
		}
	}
	return false
}
