// Package domain models the landslide early-warning data that the sync
// layer consumes and produces.
//
// # Data Source
//
// Telemetry originates from a field-deployed sensor unit (rain gauge, soil
// moisture probe, vibration sensor, GPS module) whose ingestion pipeline
// writes the latest readings to the realtime database under the
// "sensor_readings" path. Every write replaces the whole value; the client
// never receives partial patches.
//
// # Snapshot Conventions
//
// Raw snapshots arrive as loosely-typed JSON objects:
//
//	rain_sensor    number or numeric string, percent of gauge capacity
//	soil_moisture  number or numeric string, percent saturation
//	vibration      number or numeric string, raw accelerometer magnitude
//	gps_latitude   number, WGS-84 degrees
//	gps_longitude  number, WGS-84 degrees
//	alert          boolean, true while the server-side alert flag is set
//
// Sensor firmware revisions disagree on numeric encoding (some publish
// strings), so decoding accepts both. A missing or malformed field decodes
// to its unknown sentinel rather than failing the snapshot; consumers must
// treat "unknown" distinctly from zero. See [DecodeSensorSnapshot].
//
// # Content Records
//
// Forum posts and incident reports are append-only records keyed by a
// server-assigned id. Timestamps use the sortable layout "2006-01-02 15:04"
// (the format the ingestion side already writes), so display ordering is
// createdAt descending with id descending as the deterministic tiebreak.
//
// # Alert Channel
//
// The "alerts" path holds the current human-readable alert message. It is
// paired with the boolean alert flag inside "sensor_readings": the flag
// decides whether an alert is active, the message only describes it.
package domain
