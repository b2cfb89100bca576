// Package weather reads current conditions and short forecasts from the
// QWeather v7 API.
//
// The WEATHER_API_KEY setting takes one of two shapes:
//
//	YOUR_KEY                          free developer endpoint devapi.qweather.com
//	abc123.re.qweatherapi.com,KEY     dedicated API host
//
// City names are resolved against a built-in table of Chinese and major
// international cities first. Dedicated hosts additionally support the
// GeoAPI city lookup.
package weather
