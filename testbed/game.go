package testbed

import (
	"github.com/spaghettifunk/tessera/engine"
	"github.com/spaghettifunk/tessera/engine/core"
)

type gameState struct {
	world *WorldLayer
	debug *DebugLayer
}

// NewTestGame builds the demo: a world layer under a debug overlay layer.
func NewTestGame(config *engine.ApplicationConfig) *engine.Game {
	state := &gameState{}
	g := &engine.Game{
		ApplicationConfig: config,
		State:             state,
	}
	g.FnInitialize = func(e *engine.Engine) error {
		cfg := e.Config()
		state.world = NewWorldLayer(int(cfg.StartWidth), int(cfg.StartHeight), e.Alpha)
		state.debug = NewDebugLayer(e, state.world.Camera())
		e.PushLayer(state.world)
		e.PushLayer(state.debug)
		return e.Preload(crateImage)
	}
	g.FnShutdown = func() error {
		core.LogInfo("testbed shutting down")
		return nil
	}
	return g
}
