package engine

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spaghettifunk/tessera/engine/assets"
	"github.com/spaghettifunk/tessera/engine/assets/loaders"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

type Stage uint8

const (
	// Engine has no window and no GPU resources yet
	EngineStageUninitialized Stage = iota
	// Engine owns a window and renders
	EngineStageRunning
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageRunning:
		return "running"
	}
	return "unknown"
}

// Host is the windowing event loop driving the engine.
type Host interface {
	CreateWindow(config *ApplicationConfig) (core.Window, error)
	// RequestRedraw asks for a HOST_EVENT_REDRAW_REQUESTED to be delivered.
	RequestRedraw()
	// Exit stops the host loop after the current event.
	Exit()
}

// BackendFactory creates an uninitialized renderer backend.
type BackendFactory func() renderer.RendererBackend

type Option func(*Engine)

func WithBackend(factory BackendFactory) Option {
	return func(e *Engine) { e.newBackend = factory }
}

func WithDecoder(decoder renderer.ImageDecoder) Option {
	return func(e *Engine) { e.decoder = decoder }
}

func WithFonts(fonts renderer.FontLoader) Option {
	return func(e *Engine) { e.fonts = fonts }
}

func WithOverlay(overlay renderer.Overlay) Option {
	return func(e *Engine) { e.overlay = overlay }
}

// WithClock replaces the wall clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// appState is either *uninitializedState or *runningState.
type appState interface {
	stage() Stage
	layerStack() *core.LayerStack
}

type uninitializedState struct {
	layers *core.LayerStack
}

func (s *uninitializedState) stage() Stage                 { return EngineStageUninitialized }
func (s *uninitializedState) layerStack() *core.LayerStack { return s.layers }

type runningState struct {
	host     Host
	window   core.Window
	layers   *core.LayerStack
	backend  renderer.RendererBackend
	surface  *renderer.SurfaceManager
	renderer *renderer.Renderer
	input    *core.InputState
	clock    *core.FrameClock
	metrics  *core.FrameMetrics
	watcher  *assets.AssetWatcher
}

func (s *runningState) stage() Stage                 { return EngineStageRunning }
func (s *runningState) layerStack() *core.LayerStack { return s.layers }

type Engine struct {
	game   *Game
	config *ApplicationConfig
	state  appState

	newBackend BackendFactory
	decoder    renderer.ImageDecoder
	fonts      renderer.FontLoader
	overlay    renderer.Overlay
	now        func() time.Time

	// preloader is created by the first Preload call
	preloader *assets.Preloader

	closeRequested bool
	exited         bool
}

// New creates an engine in the uninitialized stage. Nothing touching the
// window or the GPU happens before Resume.
func New(g *Game, opts ...Option) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		return nil, err
	}
	level, _ := core.ParseLogLevel(g.ApplicationConfig.LogLevel)
	core.SetLogLevel(level)

	e := &Engine{
		game:   g,
		config: g.ApplicationConfig,
		state:  &uninitializedState{layers: core.NewLayerStack()},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.decoder == nil {
		e.decoder = loaders.NewImageLoader(e.config.AssetsDir, metadata.ImageParams{})
	}
	if e.fonts == nil {
		e.fonts = &loaders.BitmapFontLoader{ResourcePath: e.config.AssetsDir}
	}

	if g.FnInitialize != nil {
		if err := g.FnInitialize(e); err != nil {
			return nil, fmt.Errorf("game initialize: %w", err)
		}
	}
	return e, nil
}

func (e *Engine) Stage() Stage {
	return e.state.stage()
}

func (e *Engine) Config() *ApplicationConfig {
	return e.config
}

// Exited reports whether the close sequence ran.
func (e *Engine) Exited() bool {
	return e.exited
}

// PushLayer appends l to the stack. Once running, l is attached at once.
func (e *Engine) PushLayer(l core.Layer) {
	e.state.layerStack().Push(l)
	if _, ok := e.state.(*runningState); ok {
		l.OnAttach()
	}
}

// Resume creates the window and every GPU resource, attaches the layers
// pushed so far and moves the engine to the running stage. It must be called
// exactly once; a failure leaves the engine uninitialized.
func (e *Engine) Resume(host Host) error {
	s, ok := e.state.(*uninitializedState)
	if !ok {
		panic(fmt.Errorf("%w: Resume called while %s", core.ErrInvalidTransition, e.state.stage()))
	}
	running, err := e.resume(s, host)
	if err != nil {
		return err
	}
	e.state = running
	running.layers.Attach()
	core.LogInfo("engine running with %d layers", running.layers.Len())
	return nil
}

func (e *Engine) resume(s *uninitializedState, host Host) (*runningState, error) {
	if e.newBackend == nil {
		return nil, core.ErrNoBackend
	}
	window, err := host.CreateWindow(e.config)
	if err != nil {
		return nil, fmt.Errorf("%w: window: %v", core.ErrResourceCreation, err)
	}

	backend := e.newBackend()
	backendConfig := &metadata.RendererBackendConfig{
		ApplicationName: e.config.Name,
		Validation:      e.config.Validation,
		VSync:           e.config.VSync,
		ShaderDir:       filepath.Join(e.config.AssetsDir, "shaders"),
	}
	if err := backend.Initialize(window, backendConfig); err != nil {
		if serr := backend.Shutdown(); serr != nil {
			core.LogError("releasing a partially initialized backend: %s", serr)
		}
		return nil, fmt.Errorf("%w: backend: %v", core.ErrResourceCreation, err)
	}

	r, err := renderer.NewRenderer(backend, renderer.RendererConfig{
		ClearColour: e.config.clearColour(),
		Decoder:     e.decoder,
		Fonts:       e.fonts,
	})
	if err != nil {
		backend.Shutdown()
		return nil, err
	}
	if e.overlay != nil {
		r.SetOverlay(e.overlay)
	}

	running := &runningState{
		host:     host,
		window:   window,
		layers:   s.layers,
		backend:  backend,
		surface:  renderer.NewSurfaceManager(window, backend),
		renderer: r,
		input:    core.NewInputState(),
		clock:    e.config.newFrameClock(),
		metrics:  core.NewFrameMetrics(),
	}
	if e.config.WatchAssets {
		w, err := assets.NewAssetWatcher(e.config.AssetsDir)
		if err != nil {
			// hot reload is a convenience, the engine runs without it
			core.LogWarn("asset watcher disabled: %s", err)
		} else {
			running.watcher = w
		}
	}
	running.clock.Start(e.now())
	return running, nil
}

// Preload decodes images in the background. They are uploaded to the texture
// cache by the first tick after their decode finished, so the first draw does
// not stall on the file.
func (e *Engine) Preload(paths ...string) error {
	if e.preloader == nil {
		p, err := assets.NewPreloader(e.decoder, e.config.PreloadWorkers, len(paths))
		if err != nil {
			return err
		}
		e.preloader = p
	}
	for _, path := range paths {
		if err := e.preloader.Submit(path); err != nil {
			return fmt.Errorf("preload %s: %w", path, err)
		}
	}
	return nil
}

// RequestClose runs the close sequence once the current event or tick is
// done. Layers call it to quit.
func (e *Engine) RequestClose() {
	e.closeRequested = true
}

// DispatchEvent translates a host event: input is updated first, then the
// normalized event goes to the overlay and the layers top down.
func (e *Engine) DispatchEvent(ev core.HostEvent) error {
	s, ok := e.state.(*runningState)
	if !ok || e.exited {
		return nil
	}
	defer e.closeIfRequested(s)

	switch ev.Code {
	case core.HOST_EVENT_RESIZED:
		s.surface.MarkResized()
		e.dispatch(s, core.EventContext{
			Type: core.EVENT_CODE_RESIZED,
			Data: &core.SystemEvent{WindowWidth: ev.Width, WindowHeight: ev.Height},
		})
	case core.HOST_EVENT_CLOSE_REQUESTED:
		e.close(s)
	case core.HOST_EVENT_KEY:
		s.input.ProcessKey(ev.Key, ev.Pressed)
		code := core.EVENT_CODE_KEY_RELEASED
		if ev.Pressed {
			code = core.EVENT_CODE_KEY_PRESSED
		}
		e.dispatch(s, core.EventContext{Type: code, Data: &core.KeyEvent{KeyCode: ev.Key, Repeat: ev.Repeat}})
	case core.HOST_EVENT_BUTTON:
		s.input.ProcessButton(ev.Button, ev.Pressed)
		code := core.EVENT_CODE_BUTTON_RELEASED
		if ev.Pressed {
			code = core.EVENT_CODE_BUTTON_PRESSED
		}
		x, y := s.input.MousePosition()
		e.dispatch(s, core.EventContext{Type: code, Data: &core.MouseEvent{Button: ev.Button, PosX: x, PosY: y}})
	case core.HOST_EVENT_MOUSE_MOVED:
		s.input.ProcessMouseMove(ev.X, ev.Y)
		e.dispatch(s, core.EventContext{Type: core.EVENT_CODE_MOUSE_MOVED, Data: &core.MouseEvent{PosX: ev.X, PosY: ev.Y}})
	case core.HOST_EVENT_MOUSE_WHEEL:
		x, y := s.input.MousePosition()
		e.dispatch(s, core.EventContext{
			Type: core.EVENT_CODE_MOUSE_WHEEL,
			Data: &core.MouseEvent{PosX: x, PosY: y, ScrollX: ev.ScrollX, ScrollY: ev.ScrollY},
		})
	case core.HOST_EVENT_REDRAW_REQUESTED:
		return e.redraw(s)
	case core.HOST_EVENT_ABOUT_TO_IDLE:
		e.tick(s, s.clock.Sample(e.now()))
		if !e.closeRequested {
			s.host.RequestRedraw()
		}
	default:
		core.LogWarn("ignoring host event %d", ev.Code)
	}
	return nil
}

func (e *Engine) dispatch(s *runningState, event core.EventContext) {
	if e.overlay != nil && e.overlay.HandleEvent(event) {
		return
	}
	s.layers.Dispatch(event)
}

// Tick runs the fixed steps owed for elapsed seconds and one variable update.
func (e *Engine) Tick(elapsed float64) {
	s, ok := e.state.(*runningState)
	if !ok || e.exited {
		return
	}
	defer e.closeIfRequested(s)
	e.tick(s, elapsed)
}

func (e *Engine) tick(s *runningState, elapsed float64) {
	if s.watcher != nil {
		s.watcher.Drain(func(path string) {
			e.invalidateAsset(s, path)
		})
	}
	if e.preloader != nil {
		e.preloader.Drain(func(r assets.DecodeResult) {
			e.insertPreloaded(s, r)
		})
	}

	steps := s.clock.Advance(elapsed)
	for i := 0; i < steps; i++ {
		s.layers.PhysicsUpdate(s.clock.FixedStep())
	}
	s.layers.Update(elapsed, s.input)

	s.input.Update()
	s.surface.MarkCommandsStale()
	s.metrics.Update(elapsed)
}

// invalidateAsset maps a changed file back to the path layers draw it with.
func (e *Engine) invalidateAsset(s *runningState, changed string) {
	path := changed
	if rel, err := filepath.Rel(s.watcher.Root(), changed); err == nil {
		path = rel
	}
	core.LogDebug("asset changed: %s", path)
	s.renderer.Textures().Invalidate(path)
}

func (e *Engine) insertPreloaded(s *runningState, r assets.DecodeResult) {
	if r.Err != nil {
		// DrawImage retries the decode and reports the error to the layer
		return
	}
	if _, err := s.renderer.Textures().Insert(r.Path, r.Image); err != nil {
		core.LogWarn("uploading preloaded %s: %s", r.Path, err)
	}
}

func (e *Engine) redraw(s *runningState) error {
	ready, err := s.surface.BeginFrame()
	if err != nil {
		return err
	}
	if !ready {
		return nil
	}
	s.renderer.BeginFrame()
	s.layers.Render(s.renderer)
	if err := s.renderer.EndFrame(); err != nil {
		s.surface.AbortFrame()
		return err
	}
	return s.surface.EndFrame()
}

func (e *Engine) closeIfRequested(s *runningState) {
	if e.closeRequested && !e.exited {
		e.close(s)
	}
}

// close runs the close sequence: OnClose in stack order, clear, then exit.
func (e *Engine) close(s *runningState) {
	if e.exited {
		return
	}
	e.exited = true
	core.LogInfo("closing %d layers", s.layers.Len())
	s.layers.Close()
	s.layers.Clear()
	s.host.Exit()
}

// Shutdown releases the workers, the watcher and the GPU once the host loop
// returned.
func (e *Engine) Shutdown() error {
	if e.preloader != nil {
		e.preloader.Close()
		e.preloader = nil
	}
	s, ok := e.state.(*runningState)
	if !ok {
		return nil
	}
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			core.LogWarn("closing asset watcher: %s", err)
		}
		s.watcher = nil
	}
	if err := s.backend.WaitIdle(); err != nil {
		core.LogError("waiting for the GPU: %s", err)
	}
	s.renderer.Release()
	if e.game.FnShutdown != nil {
		if err := e.game.FnShutdown(); err != nil {
			core.LogError("game shutdown: %s", err)
		}
	}
	return s.backend.Shutdown()
}

// Renderer is nil until the engine is running.
func (e *Engine) Renderer() *renderer.Renderer {
	if s, ok := e.state.(*runningState); ok {
		return s.renderer
	}
	return nil
}

func (e *Engine) Metrics() *core.FrameMetrics {
	if s, ok := e.state.(*runningState); ok {
		return s.metrics
	}
	return nil
}

// Extent returns the current swapchain size, zero before the first frame.
func (e *Engine) Extent() (uint32, uint32) {
	if s, ok := e.state.(*runningState); ok {
		return s.surface.Extent()
	}
	return 0, 0
}

// Alpha is the fraction of a fixed step waiting in the accumulator, zero
// unless the engine is running.
func (e *Engine) Alpha() float64 {
	if s, ok := e.state.(*runningState); ok {
		return s.clock.Alpha()
	}
	return 0
}

// Input is nil until the engine is running.
func (e *Engine) Input() core.InputReader {
	if s, ok := e.state.(*runningState); ok {
		return s.input
	}
	return nil
}
