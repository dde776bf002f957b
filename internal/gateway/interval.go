package gateway

// intervalCorrections maps common mistakes to the provider's interval codes.
var intervalCorrections = map[string]string{
	"1w":    "1wk",
	"3m":    "3mo",
	"day":   "1d",
	"week":  "1wk",
	"month": "1mo",
}

// NormalizeInterval corrects common interval aliases; unknown values pass
// through unchanged for the provider to accept or reject.
func NormalizeInterval(interval string) string {
	if interval == "" {
		return "1d"
	}
	if fixed, ok := intervalCorrections[interval]; ok {
		return fixed
	}
	return interval
}
