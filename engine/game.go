package engine

// Game is what an application hands to the engine: its configuration and
// optional hooks around the engine lifetime.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	// FnInitialize runs at the end of New, typically to push layers.
	FnInitialize Initialize
	// FnShutdown runs from Engine.Shutdown before the GPU is released.
	FnShutdown Shutdown
}

type Initialize func(e *Engine) error
type Shutdown func() error
