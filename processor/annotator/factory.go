package annotator

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the annotator processor component with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "annotator",
		Factory:     NewComponent,
		Schema:      annotatorSchema,
		Type:        "processor",
		Protocol:    "nats",
		Domain:      "annotate",
		Description: "Document graph annotator producing token views",
		Version:     "0.1.0",
	})
}
