// Package health provides liveness and readiness probes for Meridian.
//
// The package implements the standard probe endpoints for Kubernetes
// and other orchestration systems, plus a version endpoint:
//
//   - /health and /health/live: liveness, process is responding
//   - /health/ready: readiness, all registered component checks pass
//   - /version: build information (version, commit, build time)
//
// Components register checks by name:
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("manifest", func(ctx context.Context) error {
//	    if svc.Current() == nil {
//	        return errors.New("manifest not loaded")
//	    }
//	    return nil
//	})
//	health.Mount(mux, checker, version, commit, buildTime)
//
// Readiness runs all checks concurrently under a per-check timeout and
// answers 503 when any component is unhealthy.
package health
