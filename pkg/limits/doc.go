// Package limits provides request admission control for the gateway.
//
// The Limiter combines a token bucket (sustained rate with bursts) and
// an optional concurrency cap. The usage subpackage keeps daily
// per-region call counters in SQLite for the stats surface.
package limits
