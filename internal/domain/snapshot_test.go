package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSensorSnapshot(t *testing.T) {
	t.Run("complete snapshot", func(t *testing.T) {
		raw := map[string]any{
			"rain_sensor":   72.5,
			"soil_moisture": 41.0,
			"vibration":     0.3,
			"gps_latitude":  9.6615,
			"gps_longitude": 76.7644,
			"alert":         true,
		}
		snap := DecodeSensorSnapshot(raw)

		require.NotNil(t, snap.Rainfall)
		assert.Equal(t, 72.5, *snap.Rainfall)
		require.NotNil(t, snap.SoilMoisture)
		assert.Equal(t, 41.0, *snap.SoilMoisture)
		require.NotNil(t, snap.Vibration)
		assert.Equal(t, 0.3, *snap.Vibration)
		require.NotNil(t, snap.GPS)
		assert.Equal(t, Geo{Lat: 9.6615, Lon: 76.7644}, *snap.GPS)
		assert.True(t, snap.AlertActive)
	})

	t.Run("numeric strings from older firmware", func(t *testing.T) {
		raw := map[string]any{
			"rain_sensor":   "55",
			"soil_moisture": " 12.5 ",
		}
		snap := DecodeSensorSnapshot(raw)

		require.NotNil(t, snap.Rainfall)
		assert.Equal(t, 55.0, *snap.Rainfall)
		require.NotNil(t, snap.SoilMoisture)
		assert.Equal(t, 12.5, *snap.SoilMoisture)
	})

	t.Run("missing fields decode to unknown, not zero", func(t *testing.T) {
		snap := DecodeSensorSnapshot(map[string]any{"rain_sensor": 10.0})

		assert.Nil(t, snap.SoilMoisture)
		assert.Nil(t, snap.Vibration)
		assert.Nil(t, snap.GPS)
		assert.False(t, snap.AlertActive)
	})

	t.Run("malformed field falls back alone", func(t *testing.T) {
		raw := map[string]any{
			"rain_sensor":   "N/A",
			"soil_moisture": 33.0,
			"vibration":     []any{"bogus"},
			"alert":         "yes", // wrong shape, not a bool
		}
		snap := DecodeSensorSnapshot(raw)

		assert.Nil(t, snap.Rainfall)
		require.NotNil(t, snap.SoilMoisture)
		assert.Equal(t, 33.0, *snap.SoilMoisture)
		assert.Nil(t, snap.Vibration)
		assert.False(t, snap.AlertActive)
	})

	t.Run("half a GPS fix is no fix", func(t *testing.T) {
		snap := DecodeSensorSnapshot(map[string]any{"gps_latitude": 9.0})
		assert.Nil(t, snap.GPS)
	})

	t.Run("json.Number values", func(t *testing.T) {
		snap := DecodeSensorSnapshot(map[string]any{"vibration": json.Number("1.75")})
		require.NotNil(t, snap.Vibration)
		assert.Equal(t, 1.75, *snap.Vibration)
	})

	t.Run("non-object raw decodes to the unknown record", func(t *testing.T) {
		for _, raw := range []any{nil, "garbage", 42.0, []any{1, 2}} {
			snap := DecodeSensorSnapshot(raw)
			assert.Equal(t, SensorSnapshot{}, snap)
		}
	})
}

func TestFormatMetric(t *testing.T) {
	assert.Equal(t, "N/A", FormatMetric(nil))

	v := 72.5
	assert.Equal(t, "72.5", FormatMetric(&v))

	zero := 0.0
	assert.Equal(t, "0", FormatMetric(&zero))
}
