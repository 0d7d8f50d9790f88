/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spaghettifunk/tessera/engine"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/platform"
	"github.com/spaghettifunk/tessera/engine/renderer"
	"github.com/spaghettifunk/tessera/engine/renderer/vulkan"
	"github.com/spaghettifunk/tessera/testbed"
)

func main() {
	config, err := engine.LoadConfig("tessera.toml")
	if err != nil {
		core.LogFatal("loading configuration: %s", err)
	}

	e, err := engine.New(testbed.NewTestGame(config), engine.WithBackend(func() renderer.RendererBackend {
		return vulkan.New()
	}))
	if err != nil {
		core.LogFatal("creating engine: %s", err)
	}

	host := platform.New()
	if err := e.Resume(host); err != nil {
		core.LogFatal("starting engine: %s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Stop(sigCh)

	// the engine is driven from the main thread only; the signal goroutine
	// flags the request and wakes the loop so it is seen even when minimized
	var interrupted atomic.Bool
	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		core.LogInfo("received %s, closing", sig)
		interrupted.Store(true)
		host.Wake()
	}()

	runErr := host.Run(func(ev core.HostEvent) error {
		if interrupted.Load() {
			e.RequestClose()
		}
		return e.DispatchEvent(ev)
	})
	if err := e.Shutdown(); err != nil {
		core.LogError("shutting down: %s", err)
	}
	host.Terminate()
	if runErr != nil {
		core.LogFatal("engine stopped: %s", runErr)
	}
}
