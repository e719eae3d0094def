package domain

import (
	"encoding/json"
	"fmt"
)

// HazardPoint marks a location with a modeled landslide probability.
// Points are loaded once from a bundled resource and never change for the
// process lifetime.
type HazardPoint struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Probability float64 `json:"probability"`
}

// ParseHazardPoints decodes the bundled hazard map. The resource is a JSON
// object whose keys are arbitrary point names and whose values carry
// latitude, longitude, and a probability in [0,1]. Points with a
// probability outside that range are rejected; the resource is trusted
// enough that a malformed file is an error rather than a partial load.
func ParseHazardPoints(data []byte) ([]HazardPoint, error) {
	var byName map[string]HazardPoint
	if err := json.Unmarshal(data, &byName); err != nil {
		return nil, fmt.Errorf("parse hazard points: %w", err)
	}

	points := make([]HazardPoint, 0, len(byName))
	for name, p := range byName {
		if p.Probability < 0 || p.Probability > 1 {
			return nil, fmt.Errorf("hazard point %q: probability %g out of range", name, p.Probability)
		}
		points = append(points, p)
	}
	return points, nil
}
