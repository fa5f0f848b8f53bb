package utils

import "strings"

// RegionTimezones maps US state codes to their primary IANA zone
var RegionTimezones = map[string]string{
	"AL": "America/Chicago", "AK": "America/Anchorage", "AZ": "America/Phoenix", "AR": "America/Chicago",
	"CA": "America/Los_Angeles", "CO": "America/Denver", "CT": "America/New_York", "DE": "America/New_York",
	"FL": "America/New_York", "GA": "America/New_York", "HI": "Pacific/Honolulu", "ID": "America/Denver",
	"IL": "America/Chicago", "IN": "America/New_York", "IA": "America/Chicago", "KS": "America/Chicago",
	"KY": "America/New_York", "LA": "America/Chicago", "ME": "America/New_York", "MD": "America/New_York",
	"MA": "America/New_York", "MI": "America/New_York", "MN": "America/Chicago", "MS": "America/Chicago",
	"MO": "America/Chicago", "MT": "America/Denver", "NE": "America/Chicago", "NV": "America/Los_Angeles",
	"NH": "America/New_York", "NJ": "America/New_York", "NM": "America/Denver", "NY": "America/New_York",
	"NC": "America/New_York", "ND": "America/Chicago", "OH": "America/New_York", "OK": "America/Chicago",
	"OR": "America/Los_Angeles", "PA": "America/New_York", "RI": "America/New_York", "SC": "America/New_York",
	"SD": "America/Chicago", "TN": "America/Chicago", "TX": "America/Chicago", "UT": "America/Denver",
	"VT": "America/New_York", "VA": "America/New_York", "WA": "America/Los_Angeles", "WV": "America/New_York",
	"WI": "America/Chicago", "WY": "America/Denver",
}

// NormalizeRegion upper-cases and trims a region code
func NormalizeRegion(region string) string {
	return strings.ToUpper(strings.TrimSpace(region))
}

// TimezoneForRegion returns the zone for a region code, or "" when unknown
func TimezoneForRegion(region string) string {
	return RegionTimezones[NormalizeRegion(region)]
}

// ResolveTimezone picks an explicit zone first, then the region's zone, then fallback
func ResolveTimezone(explicit, region, fallback string) string {
	if tz := strings.TrimSpace(explicit); tz != "" {
		return tz
	}
	if tz := TimezoneForRegion(region); tz != "" {
		return tz
	}
	if fallback != "" {
		return fallback
	}
	return DefaultTimezone
}
