// Meridian is a regional API proxy for browser-embedded SaaS
// extensions.
//
// It fronts the vendor's regional REST surface on behalf of a frontend
// extension, providing:
//   - Region-aware routing to the US, EUROPE, and APAC vendor hosts
//   - Bearer credential carriage without persistence
//   - Retry with exponential backoff and windowed batch throttling
//   - Host-platform event ingestion (token refresh, commands)
//   - Extension manifest serving with hot reload
//
// Usage:
//
//	# Start the gateway with default configuration
//	meridian run
//
//	# Start with a custom configuration file
//	meridian run --config /path/to/config.yaml
//
//	# Show version information
//	meridian version
//
//	# Validate the extension manifest
//	meridian manifest validate
//
//	# List regions and their vendor hosts
//	meridian regions
//
//	# Probe regional host reachability
//	meridian check
package main

func main() {
	Execute()
}
