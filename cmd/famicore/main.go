// Package main implements the famicore NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"famicore/internal/app"
	"famicore/internal/bus"
	"famicore/internal/version"
)

func main() {
	var (
		romFile     = flag.String("rom", "", "Path to an iNES ROM file")
		configFile  = flag.String("config", "famicore.json", "Path to the configuration file")
		headless    = flag.Bool("headless", false, "Run without a window")
		frames      = flag.Int("frames", 600, "Frames to emulate in headless mode")
		scale       = flag.Int("scale", 0, "Window scale factor, overrides the config file")
		showVersion = flag.Bool("version", false, "Print version information and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if *romFile == "" {
		fmt.Fprintln(os.Stderr, "usage: famicore -rom <file.nes> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	config, err := app.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *scale > 0 {
		config.Window.Scale = *scale
	}
	if *headless {
		config.Video.Headless = true
	}

	console := bus.New()
	if err := console.LoadCartridgeFile(*romFile); err != nil {
		log.Fatalf("loading ROM %s: %v", *romFile, err)
	}
	cart := console.Cartridge()
	log.Printf("loaded %s (mapper %d, battery=%t, CHR RAM=%t)",
		*romFile, cart.MapperID(), cart.HasBattery(), cart.HasCHRRAM())

	frontend, err := app.New(console, config)
	if err != nil {
		log.Fatalf("initializing frontend: %v", err)
	}

	if config.Video.Headless {
		frontend.RunHeadless(*frames)
		return
	}

	if err := frontend.Run(); err != nil {
		log.Fatalf("display loop: %v", err)
	}
}
