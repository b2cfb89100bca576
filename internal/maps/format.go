package maps

import (
	"fmt"
	"strings"
	"time"

	gmaps "googlemaps.github.io/maps"
)

var instructionCleaner = strings.NewReplacer(
	"<b>", "",
	"</b>", "",
	`<div style="font-size:0.9em">`, " - ",
	"</div>", "",
)

func rating(r float32) string {
	if r == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%v", r)
}

func formatPlaces(results []gmaps.PlacesSearchResult) string {
	lines := []string{fmt.Sprintf("Found %d places:\n", len(results))}
	for i, place := range results {
		if i == maxListed {
			break
		}
		loc := place.Geometry.Location
		lines = append(lines,
			fmt.Sprintf("%d. %s", i+1, orDefault(place.Name, "Unknown")),
			"   Address: "+orDefault(place.FormattedAddress, "Address unknown"),
			fmt.Sprintf("   Rating: %s (%d reviews)", rating(place.Rating), place.UserRatingsTotal),
			fmt.Sprintf("   Coordinates: %v, %v", loc.Lat, loc.Lng),
		)
		if len(place.Types) > 0 {
			types := place.Types
			if len(types) > 3 {
				types = types[:3]
			}
			lines = append(lines, "   Types: "+strings.Join(types, ", "))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func formatGeocode(result gmaps.GeocodingResult) string {
	loc := result.Geometry.Location
	lines := []string{
		"Address: " + result.FormattedAddress,
		fmt.Sprintf("Coordinates: %v, %v", loc.Lat, loc.Lng),
	}
	if len(result.AddressComponents) > 0 {
		lines = append(lines, "\nDetails:")
		for _, c := range result.AddressComponents {
			lines = append(lines, fmt.Sprintf("  %s (%s)", c.LongName, strings.Join(c.Types, ", ")))
		}
	}
	return strings.Join(lines, "\n")
}

func formatDirections(leg *gmaps.Leg, mode gmaps.Mode) string {
	lines := []string{
		"From " + leg.StartAddress,
		"To " + leg.EndAddress + "\n",
		"Distance: " + leg.Distance.HumanReadable,
		"Duration: " + humanDuration(leg.Duration),
		fmt.Sprintf("Travel mode: %s\n", mode),
		"Directions:",
	}
	for i, step := range leg.Steps {
		lines = append(lines,
			fmt.Sprintf("%d. %s", i+1, instructionCleaner.Replace(step.HTMLInstructions)),
			fmt.Sprintf("   Distance: %s, Duration: %s", step.Distance.HumanReadable, humanDuration(step.Duration)),
		)
	}
	return strings.Join(lines, "\n")
}

func formatNearby(results []gmaps.PlacesSearchResult, placeType, location string) string {
	lines := []string{fmt.Sprintf("Found %d %s near %s:\n", len(results), placeType, location)}
	for i, place := range results {
		if i == maxListed {
			break
		}
		lines = append(lines,
			fmt.Sprintf("%d. %s", i+1, orDefault(place.Name, "Unknown")),
			"   Address: "+orDefault(place.Vicinity, "Address unknown"),
			"   Rating: "+rating(place.Rating),
		)
		if loc := place.Geometry.Location; loc.Lat != 0 || loc.Lng != 0 {
			lines = append(lines, fmt.Sprintf("   Coordinates: %v, %v", loc.Lat, loc.Lng))
		}
		if place.OpeningHours != nil {
			status := "Closed"
			if place.OpeningHours.OpenNow != nil && *place.OpeningHours.OpenNow {
				status = "Open"
			}
			lines = append(lines, "   Status: "+status)
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// humanDuration renders d the way the Directions API text fields do,
// e.g. "1 hour 5 mins".
func humanDuration(d time.Duration) string {
	mins := int((d + 30*time.Second) / time.Minute)
	if mins < 1 {
		mins = 1
	}
	days, hours := mins/(24*60), (mins/60)%24
	mins %= 60

	var parts []string
	add := func(n int, unit string) {
		if n == 0 {
			return
		}
		if n > 1 {
			unit += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, unit))
	}
	add(days, "day")
	add(hours, "hour")
	if days == 0 {
		add(mins, "min")
	}
	if len(parts) == 0 {
		return "1 min"
	}
	return strings.Join(parts, " ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
