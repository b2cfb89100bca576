package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gmaps "googlemaps.github.io/maps"
)

// DefaultLanguage is used when neither the caller nor the configuration
// picks a result language.
const DefaultLanguage = "zh-CN"

// Defaults for findNearbyPlaces.
const (
	DefaultRadius    = 1000
	MaxRadius        = 50000
	DefaultPlaceType = "restaurant"
)

// maxListed bounds how many places a listing prints.
const maxListed = 10

// ErrNotConfigured is returned by every operation when no API key is set.
var ErrNotConfigured = errors.New("google maps API key not configured")

// NotConfiguredMessage is what tools answer with while ErrNotConfigured holds.
const NotConfiguredMessage = "Error: Google Maps API not configured. Please set GOOGLE_MAPS_API_KEY."

// Error reports a failed vendor call.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return e.Op + " failed: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Service wraps a Maps client. A Service without an API key is valid and
// answers every call with ErrNotConfigured.
type Service struct {
	client   *gmaps.Client
	language string
}

// NewService creates a Service. opts are appended after the API key, so
// callers can redirect the base URL in tests.
func NewService(apiKey, language string, opts ...gmaps.ClientOption) (*Service, error) {
	if language == "" {
		language = DefaultLanguage
	}
	s := &Service{language: language}
	if apiKey == "" {
		return s, nil
	}

	client, err := gmaps.NewClient(append([]gmaps.ClientOption{gmaps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Maps client: %w", err)
	}
	s.client = client
	return s, nil
}

// Configured reports whether an API key was supplied.
func (s *Service) Configured() bool {
	return s != nil && s.client != nil
}

func (s *Service) lang(language string) string {
	if language != "" {
		return language
	}
	return s.language
}

// SearchPlace runs a text search such as "Starbucks in Beijing".
func (s *Service) SearchPlace(ctx context.Context, query, language string) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}

	resp, err := s.client.TextSearch(ctx, &gmaps.TextSearchRequest{Query: query, Language: s.lang(language)})
	if err != nil {
		return "", &Error{Op: "Search", Err: err}
	}
	if len(resp.Results) == 0 {
		return fmt.Sprintf("No places found for '%s'.", query), nil
	}
	return formatPlaces(resp.Results), nil
}

// GeocodeAddress resolves an address to coordinates and components.
func (s *Service) GeocodeAddress(ctx context.Context, address, language string) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}

	results, err := s.client.Geocode(ctx, &gmaps.GeocodingRequest{Address: address, Language: s.lang(language)})
	if err != nil {
		return "", &Error{Op: "Geocoding", Err: err}
	}
	if len(results) == 0 {
		return "Unable to geocode address: " + address, nil
	}
	return formatGeocode(results[0]), nil
}

// ReverseGeocode resolves coordinates to the most specific address.
func (s *Service) ReverseGeocode(ctx context.Context, lat, lng float64, language string) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}

	results, err := s.client.ReverseGeocode(ctx, &gmaps.GeocodingRequest{
		LatLng:   &gmaps.LatLng{Lat: lat, Lng: lng},
		Language: s.lang(language),
	})
	if err != nil {
		return "", &Error{Op: "Reverse geocoding", Err: err}
	}
	if len(results) == 0 {
		return fmt.Sprintf("Unable to find address for coordinates (%v, %v)", lat, lng), nil
	}
	return "Address: " + results[0].FormattedAddress, nil
}

// GetDirections routes from origin to destination, departing now.
func (s *Service) GetDirections(ctx context.Context, origin, destination, mode, language string) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}

	travelMode, err := ParseMode(mode)
	if err != nil {
		return "", err
	}

	routes, _, err := s.client.Directions(ctx, &gmaps.DirectionsRequest{
		Origin:        origin,
		Destination:   destination,
		Mode:          travelMode,
		Language:      s.lang(language),
		DepartureTime: "now",
	})
	if err != nil {
		return "", &Error{Op: "Directions query", Err: err}
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return fmt.Sprintf("Unable to find route from %s to %s", origin, destination), nil
	}
	return formatDirections(routes[0].Legs[0], travelMode), nil
}

// FindNearbyPlaces geocodes location and lists places of placeType within
// radius meters of it.
func (s *Service) FindNearbyPlaces(ctx context.Context, location, placeType string, radius int, language string) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}
	if placeType == "" {
		placeType = DefaultPlaceType
	}
	if radius <= 0 {
		radius = DefaultRadius
	}
	if radius > MaxRadius {
		radius = MaxRadius
	}
	lang := s.lang(language)

	geo, err := s.client.Geocode(ctx, &gmaps.GeocodingRequest{Address: location, Language: lang})
	if err != nil {
		return "", &Error{Op: "Nearby search", Err: err}
	}
	if len(geo) == 0 {
		return "Unable to recognize location: " + location, nil
	}

	center := geo[0].Geometry.Location
	resp, err := s.client.NearbySearch(ctx, &gmaps.NearbySearchRequest{
		Location: &center,
		Radius:   uint(radius),
		Type:     parsePlaceType(placeType),
		Language: lang,
	})
	if err != nil {
		return "", &Error{Op: "Nearby search", Err: err}
	}
	if len(resp.Results) == 0 {
		return fmt.Sprintf("No %s found within %d meters of %s", placeType, radius, location), nil
	}
	return formatNearby(resp.Results, placeType, location), nil
}

// ParseMode maps a travel mode name to the Directions API mode. Empty means
// driving; the Routes API spellings DRIVE, WALK, BICYCLE and TRANSIT are
// accepted too.
func ParseMode(mode string) (gmaps.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "driving", "drive":
		return gmaps.TravelModeDriving, nil
	case "walking", "walk":
		return gmaps.TravelModeWalking, nil
	case "bicycling", "bicycle", "bike":
		return gmaps.TravelModeBicycling, nil
	case "transit":
		return gmaps.TravelModeTransit, nil
	default:
		return "", fmt.Errorf("unsupported travel mode %q, use driving, walking, bicycling or transit", mode)
	}
}

func parsePlaceType(placeType string) gmaps.PlaceType {
	if pt, err := gmaps.ParsePlaceType(placeType); err == nil {
		return pt
	}
	return gmaps.PlaceType(strings.ToLower(placeType))
}
