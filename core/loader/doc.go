// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which defines its route
// registration logic.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager struct holds the registry of available features. It handles:
//   - Registration of features via Register()
//   - Loading of enabled features via LoadAll()
//
// The sync and validate features are registered this way by the start command.
package loader
