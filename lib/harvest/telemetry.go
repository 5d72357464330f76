package harvest

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("uiharvest.lib.harvest")
