package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		delta                  float64
	}{
		{name: "Same point", lat1: 37.5665, lon1: 126.9780, lat2: 37.5665, lon2: 126.9780, want: 0, delta: 1e-9},
		{name: "One degree of latitude", lat1: 0, lon1: 0, lat2: 1, lon2: 0, want: 111.19, delta: 0.01},
		{name: "London to Paris", lat1: 51.5074, lon1: -0.1278, lat2: 48.8566, lon2: 2.3522, want: 343.5, delta: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestCalculateDistance_Symmetric(t *testing.T) {
	a := CalculateDistance(40.7128, -74.0060, 34.0522, -118.2437)
	b := CalculateDistance(34.0522, -118.2437, 40.7128, -74.0060)
	assert.InDelta(t, a, b, 1e-9)
}

func TestBoxAround(t *testing.T) {
	box := BoxAround(10, 20, 11.1)
	assert.InDelta(t, 9.9, box.MinLat, 1e-9)
	assert.InDelta(t, 10.1, box.MaxLat, 1e-9)
	assert.InDelta(t, 19.9, box.MinLng, 1e-9)
	assert.InDelta(t, 20.1, box.MaxLng, 1e-9)
}

func TestRoundTo1(t *testing.T) {
	assert.Equal(t, 4.3, RoundTo1(4.25))
	assert.Equal(t, 4.3, RoundTo1(4.3333))
	assert.Equal(t, 3.0, RoundTo1(3.0))
	assert.Equal(t, 0.0, RoundTo1(0))
	assert.Equal(t, 2.7, RoundTo1(2.66))
}
