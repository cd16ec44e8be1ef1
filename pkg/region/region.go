package region

import "strings"

// Region identifies the geographic deployment zone of a hosted Teamcraft
// project. The zone determines which vendor API host serves the project's
// resources.
type Region string

const (
	// US is the default region. Projects with no declared location, or a
	// location the resolver does not recognize, are served from here.
	US Region = "US"

	// Europe serves projects in the European deployment zone.
	Europe Region = "EUROPE"

	// APAC serves projects in the Asia-Pacific deployment zone.
	APAC Region = "APAC"
)

// hosts is the fixed region-to-endpoint table. It is never mutated at
// runtime; deployments that need different hosts override resolution at
// the client layer, not here.
var hosts = map[Region]string{
	US:     "https://api.teamcraft.io",
	Europe: "https://api-eu.teamcraft.io",
	APAC:   "https://api-apac.teamcraft.io",
}

// aliases maps accepted lowercase spellings to canonical regions.
var aliases = map[string]Region{
	"us":     US,
	"europe": Europe,
	"eu":     Europe,
	"apac":   APAC,
	"asia":   APAC,
}

// Parse maps a declared project location to a canonical Region.
// Matching is case-insensitive and ignores surrounding whitespace.
// Unknown or empty input falls back to US; Parse never fails.
func Parse(s string) Region {
	if r, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return r
	}
	return US
}

// Host returns the API endpoint host for the region. Regions outside the
// table fall back to the US host, so resolution is total.
func (r Region) Host() string {
	if h, ok := hosts[r]; ok {
		return h
	}
	return hosts[US]
}

// Valid reports whether r is one of the canonical regions.
func (r Region) Valid() bool {
	_, ok := hosts[r]
	return ok
}

// Resolve maps a raw location string directly to an endpoint host.
// Equivalent to Parse(s).Host().
func Resolve(s string) string {
	return Parse(s).Host()
}

// All returns the canonical regions in stable display order.
func All() []Region {
	return []Region{US, Europe, APAC}
}
