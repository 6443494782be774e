package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanReload   = "registry.reload"
	SpanDiscover = "registry.discover"
	SpanBuild    = "registry.build"
	SpanDispatch = "registry.dispatch"
)

// Span attribute keys.
const (
	AttrBuildID       = "build.id"
	AttrSourceDir     = "build.source_dir"
	AttrResourceCount = "build.resources"
	AttrURI           = "dispatch.uri"
	AttrHandler       = "dispatch.handler"
	AttrCacheHit      = "dispatch.cache_hit"
	AttrErrorType     = "error.type"
)

// CountAttr is the attribute key for the number of artifacts of a role.
func CountAttr(role string) attribute.Key {
	return attribute.Key("build.count." + role)
}

// RecordError marks span as failed. err may be nil.
func RecordError(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String(AttrErrorType, errorType(err)))
}

func errorType(err error) string {
	return fmt.Sprintf("%T", err)
}
