package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/ornamently/jewelify/internal/constants"
)

var Tracer = otel.Tracer(constants.AppCartService)
