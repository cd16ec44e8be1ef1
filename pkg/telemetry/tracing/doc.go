// Package tracing provides distributed tracing for Meridian using
// OpenTelemetry.
//
// Spans are exported over OTLP gRPC to a collector. W3C Trace Context
// propagation is configured globally so inbound traceparent headers are
// honored and forwarded upstream.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "upstream.execute")
//	span.SetAttributes(
//	    tracing.Region("EUROPE"),
//	    tracing.ResourcePath("/projects/p1/files"),
//	)
//	defer span.End()
//
// Sampling strategies are "always", "never", and "ratio" (the default,
// keeping SampleRatio of root traces). All strategies are parent-based:
// child spans follow the sampling decision of their parent.
package tracing
