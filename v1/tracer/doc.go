// Package tracer provides distributed tracing functionality based on OpenTelemetry.
//
// The tracer package wraps the OpenTelemetry SDK behind a small API for
// creating spans around store operations, recording errors on them, and
// annotating them with attributes. It integrates with the fx dependency
// injection framework for lifecycle management.
//
// # Direct Usage (Without FX)
//
// For simple applications or tests, create a tracer directly:
//
//	import "github.com/Aleph-Alpha/recordstore/v1/tracer"
//
//	tracerClient := tracer.NewClient(tracer.Config{
//	    ServiceName:  "document-store",
//	    AppEnv:       "development",
//	    EnableExport: false,
//	}, log)
//
//	ctx, span := tracerClient.StartSpan(ctx, "pgvector.upsert")
//	defer span.End()
//
// # FX Module Integration
//
// The FXModule provides the tracer to the dependency injection container and
// registers a shutdown hook that flushes pending spans:
//
//	app := fx.New(
//	    logger.FXModule,
//	    tracer.FXModule,
//	    fx.Provide(func() tracer.Config {
//	        return tracer.Config{ServiceName: "document-store", EnableExport: true}
//	    }),
//	)
//
// When export is enabled, spans are shipped via OTLP over HTTP to the endpoint
// configured through the standard OTEL_EXPORTER_OTLP_* environment variables.
package tracer
