package weather

import (
	"fmt"
	"strings"
)

func na(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func formatNow(city string, now Now, updated string) string {
	return fmt.Sprintf(`Current Weather in %s

Temperature: %s°C (feels like %s°C)
Condition: %s
Humidity: %s%%
Wind: %s Level %s
Pressure: %s hPa

Last Update: %s`,
		city,
		na(now.Temp), na(now.FeelsLike),
		na(now.Text),
		na(now.Humidity),
		na(now.WindDir), na(now.WindScale),
		na(now.Pressure),
		updated,
	)
}

func formatForecast(city string, days []Daily) string {
	if len(days) == 0 {
		return "No forecast data available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weather Forecast for %s (Next 3 Days)\n\n", city)
	for _, d := range days {
		fmt.Fprintf(&b, "\nDate: %s\nTemperature: %s°C ~ %s°C\nDay: %s | Night: %s\nHumidity: %s%%\n---\n",
			na(d.FxDate), na(d.TempMin), na(d.TempMax), na(d.TextDay), na(d.TextNight), na(d.Humidity))
	}
	return strings.TrimSpace(b.String())
}
