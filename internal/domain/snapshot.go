package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SensorSnapshot is the typed form of one "sensor_readings" delivery.
// Nil metric pointers mean the field was absent or malformed in the raw
// snapshot ("unknown"), which is distinct from a measured zero.
type SensorSnapshot struct {
	Rainfall     *float64 `json:"rainfall,omitempty"`
	SoilMoisture *float64 `json:"soil_moisture,omitempty"`
	Vibration    *float64 `json:"vibration,omitempty"`
	GPS          *Geo     `json:"gps,omitempty"`
	AlertActive  bool     `json:"alert_active"`
}

// DecodeSensorSnapshot converts a raw realtime-database value into a
// SensorSnapshot. Decoding is total: a missing field, a field of the wrong
// shape, or a raw value that is not an object all map to sentinels, never
// to a failed decode. Sibling fields are decoded independently.
func DecodeSensorSnapshot(raw any) SensorSnapshot {
	fields, ok := raw.(map[string]any)
	if !ok {
		return SensorSnapshot{}
	}

	snap := SensorSnapshot{
		Rainfall:     decodeNumber(fields["rain_sensor"]),
		SoilMoisture: decodeNumber(fields["soil_moisture"]),
		Vibration:    decodeNumber(fields["vibration"]),
	}

	lat := decodeNumber(fields["gps_latitude"])
	lon := decodeNumber(fields["gps_longitude"])
	if lat != nil && lon != nil {
		snap.GPS = &Geo{Lat: *lat, Lon: *lon}
	}

	if active, ok := fields["alert"].(bool); ok {
		snap.AlertActive = active
	}

	return snap
}

// decodeNumber accepts the numeric encodings seen across sensor firmware
// revisions: JSON numbers, integers, json.Number, and numeric strings.
// Anything else (including the "N/A" placeholder some units publish) is
// treated as unknown.
func decodeNumber(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return &f
		}
		return nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}

// FormatMetric renders an optional metric for display, substituting "N/A"
// for the unknown sentinel.
func FormatMetric(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
