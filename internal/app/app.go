package app

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"famicore/internal/bus"
	"famicore/internal/input"
	"famicore/internal/ppu"
)

// App drives the console through Ebitengine's game loop: one emulated
// frame per Update, uploaded to a texture and drawn scaled.
type App struct {
	bus    *bus.Bus
	config *Config

	frameImage *ebiten.Image
	pixels     []byte

	player1Keys map[ebiten.Key]input.Button
	player2Keys map[ebiten.Key]input.Button
}

// New creates the frontend around an already constructed console.
func New(console *bus.Bus, config *Config) (*App, error) {
	p1, err := buildKeymap(config.Input.Player1Keys)
	if err != nil {
		return nil, fmt.Errorf("player 1 keys: %w", err)
	}
	p2, err := buildKeymap(config.Input.Player2Keys)
	if err != nil {
		return nil, fmt.Errorf("player 2 keys: %w", err)
	}

	return &App{
		bus:         console,
		config:      config,
		frameImage:  ebiten.NewImage(ppu.FrameWidth, ppu.FrameHeight),
		pixels:      make([]byte, ppu.FrameWidth*ppu.FrameHeight*4),
		player1Keys: p1,
		player2Keys: p2,
	}, nil
}

// Run opens the window and blocks inside the game loop until the user
// closes it.
func (a *App) Run() error {
	ebiten.SetWindowTitle(a.config.Window.Title)
	ebiten.SetWindowSize(
		ppu.FrameWidth*a.config.Window.Scale,
		ppu.FrameHeight*a.config.Window.Scale,
	)
	ebiten.SetVsyncEnabled(a.config.Video.VSync)
	if a.config.Window.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	log.Printf("starting display at %dx scale", a.config.Window.Scale)
	return ebiten.RunGame(a)
}

// RunHeadless emulates the given number of frames without a window,
// for benchmarks and automation.
func (a *App) RunHeadless(frames int) {
	for i := 0; i < frames; i++ {
		a.bus.RunFrame()
	}
	log.Printf("headless run finished after %d frames", frames)
}

// Update implements ebiten.Game. It polls the keyboard, runs one
// emulated frame and uploads it.
func (a *App) Update() error {
	a.bus.SetButtons(0, pollButtons(a.player1Keys))
	a.bus.SetButtons(1, pollButtons(a.player2Keys))

	frame := a.bus.RunFrame()
	for i, c := range frame {
		a.pixels[i*4] = uint8(c >> 16)
		a.pixels[i*4+1] = uint8(c >> 8)
		a.pixels[i*4+2] = uint8(c)
		a.pixels[i*4+3] = 0xFF
	}
	a.frameImage.WritePixels(a.pixels)

	return nil
}

// Draw implements ebiten.Game.
func (a *App) Draw(screen *ebiten.Image) {
	screen.DrawImage(a.frameImage, nil)
}

// Layout implements ebiten.Game; Ebitengine scales the logical
// 256x240 surface to the window.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.FrameWidth, ppu.FrameHeight
}

func pollButtons(keymap map[ebiten.Key]input.Button) uint8 {
	var mask uint8
	for key, button := range keymap {
		if ebiten.IsKeyPressed(key) {
			mask |= uint8(button)
		}
	}
	return mask
}

func buildKeymap(mapping KeyMapping) (map[ebiten.Key]input.Button, error) {
	bindings := []struct {
		name   string
		button input.Button
	}{
		{mapping.Up, input.ButtonUp},
		{mapping.Down, input.ButtonDown},
		{mapping.Left, input.ButtonLeft},
		{mapping.Right, input.ButtonRight},
		{mapping.A, input.ButtonA},
		{mapping.B, input.ButtonB},
		{mapping.Start, input.ButtonStart},
		{mapping.Select, input.ButtonSelect},
	}

	keymap := make(map[ebiten.Key]input.Button, len(bindings))
	for _, b := range bindings {
		key, err := parseKey(b.name)
		if err != nil {
			return nil, err
		}
		keymap[key] = b.button
	}
	return keymap, nil
}

// parseKey resolves a config key name to an Ebitengine key.
func parseKey(name string) (ebiten.Key, error) {
	var key ebiten.Key
	if err := key.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("unknown key %q", name)
	}
	return key, nil
}
