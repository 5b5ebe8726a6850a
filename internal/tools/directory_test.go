package tools

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firstaidguide/firstaid-api/pkg/logging"
)

func TestEmergencyNumbers(t *testing.T) {
	d := NewDirectory(nil, 0, logging.Default())

	tests := []struct {
		name          string
		country       string
		wantCountry   string
		wantAmbulance string
	}{
		{"sri lanka", "LK", "LK", "1990"},
		{"united states", "US", "US", "911"},
		{"empty defaults to EU", "", "EU", "112"},
		{"unknown falls back to EU numbers", "ZZ", "ZZ", "112"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.EmergencyNumbers(context.Background(), tt.country)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCountry, got.Country)
			assert.Equal(t, tt.wantAmbulance, got.Numbers["AMBULANCE"])
		})
	}
}

func TestEmergencyNumbersCachesInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	d := NewDirectory(rdb, time.Hour, logging.Default())

	_, err := d.EmergencyNumbers(context.Background(), "LK")
	require.NoError(t, err)

	assert.True(t, mr.Exists("directory:numbers:LK"))

	// A second lookup is served from the cache.
	got, err := d.EmergencyNumbers(context.Background(), "LK")
	require.NoError(t, err)
	assert.Equal(t, "1990", got.Numbers["AMBULANCE"])
}

func TestEmergencyNumbersSurvivesCorruptCache(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("directory:numbers:US", "not json"))
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	d := NewDirectory(rdb, time.Hour, logging.Default())

	got, err := d.EmergencyNumbers(context.Background(), "US")
	require.NoError(t, err)
	assert.Equal(t, "911", got.Numbers["POLICE"])
}

func TestNearestFacility(t *testing.T) {
	d := NewDirectory(nil, 0, logging.Default())

	got, err := d.NearestFacility(context.Background(), "hospital near me")
	require.NoError(t, err)
	assert.Equal(t, "hospital near me", got.Query)
	assert.InDelta(t, 6.9271, got.Lat, 0.0001)
	assert.InDelta(t, 79.8612, got.Lng, 0.0001)
	assert.InDelta(t, 0.7, got.Confidence, 0.0001)
}
