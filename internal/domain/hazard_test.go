package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHazardPoints(t *testing.T) {
	t.Run("named points", func(t *testing.T) {
		data := []byte(`{
			"zone_a": {"latitude": 9.66, "longitude": 76.76, "probability": 0.82},
			"zone_b": {"latitude": 9.71, "longitude": 76.80, "probability": 0.35}
		}`)
		points, err := ParseHazardPoints(data)
		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.Contains(t, points, HazardPoint{Latitude: 9.66, Longitude: 76.76, Probability: 0.82})
	})

	t.Run("probability out of range", func(t *testing.T) {
		data := []byte(`{"bad": {"latitude": 1, "longitude": 2, "probability": 1.5}}`)
		_, err := ParseHazardPoints(data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})

	t.Run("malformed resource", func(t *testing.T) {
		_, err := ParseHazardPoints([]byte(`[1,2,3]`))
		require.Error(t, err)
	})
}

func TestDecodeUserProfile(t *testing.T) {
	t.Run("valid record", func(t *testing.T) {
		p := DecodeUserProfile(map[string]any{
			"name":     "Asha",
			"email":    "asha@example.com",
			"location": "Idukki",
			"contact":  "12345",
		})
		assert.Equal(t, "Asha", p.Name)
		assert.Equal(t, "Idukki", p.Location)
	})

	t.Run("non-object raw decodes to zero profile", func(t *testing.T) {
		assert.Equal(t, UserProfile{}, DecodeUserProfile(nil))
		assert.Equal(t, UserProfile{}, DecodeUserProfile("guest"))
	})
}
