// Package schema describes the API with OpenAPI 3.
package schema

import (
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/swaggest/rest/openapi"
)

// Service info of the OpenAPI document.
const (
	Title   = "NeuroLearn API"
	Version = "0.1.0"
)

// NewOpenAPICollector creates a collector with service info.
func NewOpenAPICollector() *openapi.Collector {
	apiSchema := openapi.Collector{}
	serviceInfo := openapi3.Info{}
	serviceInfo.
		WithTitle(Title).
		WithDescription("API for NeuroLearn - A learning platform for neurodivergent individuals").
		WithVersion(Version)

	apiSchema.Reflector().SpecEns().WithInfo(serviceInfo)

	return &apiSchema
}
