package syncer

import "github.com/gofiber/fiber/v2"

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
}

// NewFeature creates the sync feature around an existing service.
func NewFeature(service *Service, allowMutations bool) *Feature {
	return &Feature{handler: NewHandler(service, allowMutations)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "sync"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.handler.service != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
