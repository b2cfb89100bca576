package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the free developer endpoint.
const DefaultBaseURL = "https://devapi.qweather.com/v7"

// RequestTimeout bounds every QWeather call.
const RequestTimeout = 10 * time.Second

const customHostMarker = "qweatherapi.com"

// ErrNotConfigured is returned when no usable API key is set.
var ErrNotConfigured = errors.New("weather API key not configured")

// ErrCityNotFound is returned when a name cannot be resolved to a location.
var ErrCityNotFound = errors.New("city not found")

// NotConfiguredMessage is what the getWeather tool answers while
// ErrNotConfigured holds.
const NotConfiguredMessage = "Error: Weather service not configured. Please set WEATHER_API_KEY."

// APIError reports a non-"200" code in a QWeather response body.
type APIError struct {
	Code string
}

var errorMessages = map[string]string{
	"400": "bad request, check the parameters",
	"401": "authentication failed, invalid API key",
	"402": "request quota exceeded or insufficient balance",
	"403": "access denied",
	"404": "requested data does not exist",
	"429": "too many requests",
	"500": "server error",
}

func (e *APIError) Error() string {
	if msg, ok := errorMessages[e.Code]; ok {
		return fmt.Sprintf("weather API error %s: %s", e.Code, msg)
	}
	return fmt.Sprintf("weather API error: unknown code %s", e.Code)
}

// Settings is the parsed form of WEATHER_API_KEY.
type Settings struct {
	BaseURL string
	APIKey  string
	// CustomHost is set for dedicated qweatherapi.com hosts, which also
	// serve the city lookup API.
	CustomHost bool
}

// ParseAPIKey interprets WEATHER_API_KEY. A dedicated host given without a
// key yields Settings with an empty APIKey.
func ParseAPIKey(raw string) Settings {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Settings{BaseURL: DefaultBaseURL}
	}
	if !strings.Contains(raw, customHostMarker) {
		return Settings{BaseURL: DefaultBaseURL, APIKey: raw}
	}

	host, key, found := strings.Cut(raw, ",")
	host = strings.TrimSpace(host)
	s := Settings{BaseURL: "https://" + host + "/v7", CustomHost: true}
	if found {
		s.APIKey = strings.TrimSpace(key)
	}
	return s
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBaseURL overrides the endpoint derived from the key.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.settings.BaseURL = strings.TrimRight(base, "/") }
}

// Client talks to QWeather.
type Client struct {
	settings Settings
	http     *http.Client
}

// NewClient creates a client from the raw WEATHER_API_KEY value.
func NewClient(rawKey string, opts ...Option) *Client {
	c := &Client{
		settings: ParseAPIKey(rawKey),
		http:     &http.Client{Timeout: RequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether requests can be authenticated.
func (c *Client) Configured() bool {
	return c != nil && c.settings.APIKey != ""
}

// Settings returns the parsed configuration.
func (c *Client) Settings() Settings {
	return c.settings
}

// ResolveCity maps a city name to a location id: the built-in table first,
// then the GeoAPI lookup on dedicated hosts. Numeric location ids and
// "lon,lat" coordinates pass through unchanged.
func (c *Client) ResolveCity(ctx context.Context, name string) (string, error) {
	if id, ok := LookupCity(name); ok {
		return id, nil
	}
	name = strings.TrimSpace(name)
	if isLocation(name) {
		return name, nil
	}
	if !c.settings.CustomHost {
		return "", fmt.Errorf("%w: %s", ErrCityNotFound, name)
	}

	var resp struct {
		Code     string `json:"code"`
		Location []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"location"`
	}
	if err := c.get(ctx, "/city/lookup", name, &resp); err != nil {
		return "", fmt.Errorf("city lookup for %q failed: %w", name, err)
	}
	if len(resp.Location) == 0 {
		return "", fmt.Errorf("%w: %s", ErrCityNotFound, name)
	}
	return resp.Location[0].ID, nil
}

// isLocation reports whether s is already something QWeather accepts as a
// location: a numeric id or a "lon,lat" pair.
func isLocation(s string) bool {
	parts := strings.Split(s, ",")
	if len(parts) > 2 || s == "" {
		return false
	}
	for _, p := range parts {
		if _, err := strconv.ParseFloat(strings.TrimSpace(p), 64); err != nil {
			return false
		}
	}
	return true
}

// Now is the current observation block of /weather/now.
type Now struct {
	Temp      string `json:"temp"`
	FeelsLike string `json:"feelsLike"`
	Text      string `json:"text"`
	Humidity  string `json:"humidity"`
	WindDir   string `json:"windDir"`
	WindScale string `json:"windScale"`
	Pressure  string `json:"pressure"`
}

// Daily is one day of /weather/3d.
type Daily struct {
	FxDate    string `json:"fxDate"`
	TempMax   string `json:"tempMax"`
	TempMin   string `json:"tempMin"`
	TextDay   string `json:"textDay"`
	TextNight string `json:"textNight"`
	Humidity  string `json:"humidity"`
}

// CurrentWeather returns formatted current conditions for city.
func (c *Client) CurrentWeather(ctx context.Context, city string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	id, err := c.ResolveCity(ctx, city)
	if err != nil {
		return "", err
	}

	var resp struct {
		Code       string `json:"code"`
		UpdateTime string `json:"updateTime"`
		Now        Now    `json:"now"`
	}
	if err := c.get(ctx, "/weather/now", id, &resp); err != nil {
		return "", err
	}
	return formatNow(city, resp.Now, resp.UpdateTime), nil
}

// Forecast returns the formatted three-day forecast for city.
func (c *Client) Forecast(ctx context.Context, city string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	id, err := c.ResolveCity(ctx, city)
	if err != nil {
		return "", err
	}

	var resp struct {
		Code  string  `json:"code"`
		Daily []Daily `json:"daily"`
	}
	if err := c.get(ctx, "/weather/3d", id, &resp); err != nil {
		return "", err
	}
	return formatForecast(city, resp.Daily), nil
}

// get issues a GET for path with location and decodes the body into out.
// out must expose a "code" field; anything other than "200" is an APIError.
func (c *Client) get(ctx context.Context, path, location string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("location", location)
	q.Set("lang", "zh")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.settings.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-QW-Api-Key", c.settings.APIKey)

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API returned HTTP %d", res.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode weather response: %w", err)
	}
	var status struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(raw, &status); err != nil {
		return fmt.Errorf("failed to decode weather response: %w", err)
	}
	if status.Code != "200" {
		return &APIError{Code: status.Code}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode weather response: %w", err)
	}
	return nil
}
