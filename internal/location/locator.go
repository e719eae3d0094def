// Package location resolves the device's last known position. Absence of a
// position (no fix yet, permission withheld) is an expected outcome, never
// an error that stops the caller.
package location

import (
	"context"

	"github.com/an-gr-hh1/landslide-sync/internal/domain"
	"github.com/an-gr-hh1/landslide-sync/internal/feed"
)

// Locator reports the last known position if one is available.
type Locator interface {
	LastKnown(ctx context.Context) (domain.Geo, bool)
}

// Static returns a fixed position from configuration, the deployment-site
// equivalent of a granted location permission.
type Static struct {
	Pos domain.Geo
}

func (s Static) LastKnown(context.Context) (domain.Geo, bool) {
	return s.Pos, true
}

// Denied models a withheld location permission: no position, ever. Callers
// report the absence to the user and carry on.
type Denied struct{}

func (Denied) LastKnown(context.Context) (domain.Geo, bool) {
	return domain.Geo{}, false
}

// Telemetry derives the position from the GPS fields of the latest sensor
// snapshot. No position is reported until the feed has delivered a snapshot
// with a fix.
type Telemetry struct {
	Merger *feed.Merger[domain.SensorSnapshot]
}

func (t Telemetry) LastKnown(context.Context) (domain.Geo, bool) {
	snap := t.Merger.Latest()
	if snap.GPS == nil {
		return domain.Geo{}, false
	}
	return *snap.GPS, true
}
