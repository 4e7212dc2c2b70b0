// Package observability provides OpenTelemetry metrics and tracing over
// OTLP/HTTP, managed as a lifecycle component.
//
//	comp := observability.NewComponent("eventhub", version, env, cfg.Observability)
//	registry.Register(comp)
//
// Instrumented code uses the global providers, so it works unchanged whether
// export is enabled or not:
//
//	meter := observability.Meter("eventhub/hub")
//	ctx, span := observability.StartSpan(ctx, "hub.publish")
package observability
