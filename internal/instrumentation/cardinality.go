package instrumentation

import "strings"

// ExtractUserDomain reduces an email to its domain for metric labels and
// anonymized logs. Anything unparsable becomes "unknown".
func ExtractUserDomain(email string) string {
	_, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return "unknown"
	}
	return domain
}

// Operation label values for upstream API metrics.
const (
	OperationList      = "list"
	OperationGet       = "get"
	OperationCreate    = "create"
	OperationUpdate    = "update"
	OperationSend      = "send"
	OperationSearch    = "search"
	OperationGeocode   = "geocode"
	OperationReverse   = "reverse_geocode"
	OperationDirection = "directions"
	OperationNearby    = "nearby"
	OperationLookup    = "lookup"
	OperationCurrent   = "current"
	OperationForecast  = "forecast"
	OperationCompute   = "compute"
)
