package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmaps "googlemaps.github.io/maps"
)

// fakeMaps routes Maps web service paths to canned JSON bodies.
func fakeMaps(t *testing.T, routes map[string]string) *Service {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		for suffix, body := range routes {
			if strings.HasSuffix(r.URL.Path, suffix) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
				return
			}
		}
		t.Errorf("unexpected request %s", r.URL.Path)
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	s, err := NewService("test-key", "", gmaps.WithBaseURL(srv.URL))
	require.NoError(t, err)
	return s
}

func TestNotConfigured(t *testing.T) {
	s, err := NewService("", "en")
	require.NoError(t, err)
	assert.False(t, s.Configured())

	ctx := context.Background()
	_, err = s.SearchPlace(ctx, "coffee", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = s.GeocodeAddress(ctx, "x", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = s.ReverseGeocode(ctx, 1, 2, "")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = s.GetDirections(ctx, "a", "b", "", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = s.FindNearbyPlaces(ctx, "x", "", 0, "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSearchPlace(t *testing.T) {
	s := fakeMaps(t, map[string]string{
		"/place/textsearch/json": `{"status":"OK","results":[
			{"name":"Blue Bottle","formatted_address":"1 Main St","rating":4.5,"user_ratings_total":120,
			 "geometry":{"location":{"lat":37.5,"lng":-122.25}},"types":["cafe","food","store","establishment"]},
			{"name":"No Rating Cafe","formatted_address":"2 Main St","geometry":{"location":{"lat":1,"lng":2}}}
		]}`,
	})

	out, err := s.SearchPlace(context.Background(), "coffee", "en")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"Found 2 places:\n",
		"1. Blue Bottle",
		"   Address: 1 Main St",
		"   Rating: 4.5 (120 reviews)",
		"   Coordinates: 37.5, -122.25",
		"   Types: cafe, food, store",
		"",
		"2. No Rating Cafe",
		"   Address: 2 Main St",
		"   Rating: N/A (0 reviews)",
		"   Coordinates: 1, 2",
		"",
	}, "\n"), out)
}

func TestSearchPlace_Empty(t *testing.T) {
	s := fakeMaps(t, map[string]string{"/place/textsearch/json": `{"status":"ZERO_RESULTS","results":[]}`})

	out, err := s.SearchPlace(context.Background(), "unicorn stables", "")
	require.NoError(t, err)
	assert.Equal(t, "No places found for 'unicorn stables'.", out)
}

func TestSearchPlace_VendorError(t *testing.T) {
	s := fakeMaps(t, map[string]string{
		"/place/textsearch/json": `{"status":"REQUEST_DENIED","error_message":"key invalid"}`,
	})

	_, err := s.SearchPlace(context.Background(), "coffee", "")
	require.Error(t, err)
	var mapsErr *Error
	require.True(t, errors.As(err, &mapsErr))
	assert.True(t, strings.HasPrefix(err.Error(), "Search failed: "), err.Error())
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestGeocodeAddress(t *testing.T) {
	s := fakeMaps(t, map[string]string{
		"/geocode/json": `{"status":"OK","results":[{
			"formatted_address":"Beijing, China",
			"geometry":{"location":{"lat":39.9042,"lng":116.4074}},
			"address_components":[
				{"long_name":"Beijing","short_name":"BJ","types":["locality","political"]}
			]
		}]}`,
	})

	out, err := s.GeocodeAddress(context.Background(), "北京", "")
	require.NoError(t, err)
	assert.Equal(t, "Address: Beijing, China\nCoordinates: 39.9042, 116.4074\n\nDetails:\n  Beijing (locality, political)", out)
}

func TestReverseGeocode(t *testing.T) {
	s := fakeMaps(t, map[string]string{
		"/geocode/json": `{"status":"OK","results":[{"formatted_address":"1600 Amphitheatre Pkwy"}]}`,
	})

	out, err := s.ReverseGeocode(context.Background(), 37.422, -122.084, "")
	require.NoError(t, err)
	assert.Equal(t, "Address: 1600 Amphitheatre Pkwy", out)
}

func TestReverseGeocode_NoResult(t *testing.T) {
	s := fakeMaps(t, map[string]string{"/geocode/json": `{"status":"ZERO_RESULTS","results":[]}`})

	out, err := s.ReverseGeocode(context.Background(), 0.5, 1.25, "")
	require.NoError(t, err)
	assert.Equal(t, "Unable to find address for coordinates (0.5, 1.25)", out)
}

func TestGetDirections(t *testing.T) {
	s := fakeMaps(t, map[string]string{
		"/directions/json": `{"status":"OK","routes":[{"legs":[{
			"start_address":"A St","end_address":"B Ave",
			"distance":{"text":"5.2 km","value":5200},
			"duration":{"text":"12 mins","value":720},
			"steps":[
				{"html_instructions":"Head <b>north</b><div style=\"font-size:0.9em\">Toll road</div>",
				 "distance":{"text":"1.0 km","value":1000},"duration":{"text":"3 mins","value":180}}
			]
		}]}]}`,
	})

	out, err := s.GetDirections(context.Background(), "A", "B", "WALK", "")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"From A St",
		"To B Ave\n",
		"Distance: 5.2 km",
		"Duration: 12 mins",
		"Travel mode: walking\n",
		"Directions:",
		"1. Head north - Toll road",
		"   Distance: 1.0 km, Duration: 3 mins",
	}, "\n"), out)
}

func TestGetDirections_NoRoute(t *testing.T) {
	s := fakeMaps(t, map[string]string{"/directions/json": `{"status":"ZERO_RESULTS","routes":[]}`})

	out, err := s.GetDirections(context.Background(), "Boston", "Paris", "driving", "")
	require.NoError(t, err)
	assert.Equal(t, "Unable to find route from Boston to Paris", out)
}

func TestGetDirections_BadMode(t *testing.T) {
	s := fakeMaps(t, nil)
	_, err := s.GetDirections(context.Background(), "A", "B", "teleport", "")
	assert.ErrorContains(t, err, "unsupported travel mode")
}

func TestFindNearbyPlaces(t *testing.T) {
	s := fakeMaps(t, map[string]string{
		"/geocode/json": `{"status":"OK","results":[{"formatted_address":"X","geometry":{"location":{"lat":10,"lng":20}}}]}`,
		"/place/nearbysearch/json": `{"status":"OK","results":[
			{"name":"Noodle Bar","vicinity":"3 Side St","rating":4.2,
			 "geometry":{"location":{"lat":10.001,"lng":20.002}},"opening_hours":{"open_now":true}},
			{"name":"Late Diner","vicinity":"4 Side St","opening_hours":{}}
		]}`,
	})

	out, err := s.FindNearbyPlaces(context.Background(), "Downtown", "", 0, "")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"Found 2 restaurant near Downtown:\n",
		"1. Noodle Bar",
		"   Address: 3 Side St",
		"   Rating: 4.2",
		"   Coordinates: 10.001, 20.002",
		"   Status: Open",
		"",
		"2. Late Diner",
		"   Address: 4 Side St",
		"   Rating: N/A",
		"   Status: Closed",
		"",
	}, "\n"), out)
}

func TestFindNearbyPlaces_UnknownLocation(t *testing.T) {
	s := fakeMaps(t, map[string]string{"/geocode/json": `{"status":"ZERO_RESULTS","results":[]}`})

	out, err := s.FindNearbyPlaces(context.Background(), "Atlantis", "cafe", 500, "")
	require.NoError(t, err)
	assert.Equal(t, "Unable to recognize location: Atlantis", out)
}

func TestFindNearbyPlaces_NoneFound(t *testing.T) {
	s := fakeMaps(t, map[string]string{
		"/geocode/json":            `{"status":"OK","results":[{"geometry":{"location":{"lat":1,"lng":1}}}]}`,
		"/place/nearbysearch/json": `{"status":"ZERO_RESULTS","results":[]}`,
	})

	out, err := s.FindNearbyPlaces(context.Background(), "Field", "hospital", 2000, "")
	require.NoError(t, err)
	assert.Equal(t, "No hospital found within 2000 meters of Field", out)
}

func TestParseMode(t *testing.T) {
	tests := map[string]gmaps.Mode{
		"":          gmaps.TravelModeDriving,
		"DRIVE":     gmaps.TravelModeDriving,
		"walking":   gmaps.TravelModeWalking,
		"BICYCLE":   gmaps.TravelModeBicycling,
		" transit ": gmaps.TravelModeTransit,
	}
	for in, want := range tests {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "1 min", humanDuration(10*time.Second))
	assert.Equal(t, "25 mins", humanDuration(25*time.Minute))
	assert.Equal(t, "1 hour", humanDuration(time.Hour))
	assert.Equal(t, "2 hours 5 mins", humanDuration(2*time.Hour+5*time.Minute))
	assert.Equal(t, "1 day 3 hours", humanDuration(27*time.Hour+10*time.Minute))
}
