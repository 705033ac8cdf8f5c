/*
This is an example of application that will use the
engine package to expand fractal scenes
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anima-fractals/engine"
	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/testbed"
)

func main() {
	assetDir := flag.String("assets", "assets", "root of the asset tree")
	scene := flag.String("scene", "sierpinski", "scene to load from <assets>/scenes")
	logLevel := flag.String("log-level", "debug", "debug, info, warn, error or fatal")
	frames := flag.Uint64("frames", 0, "stop after this many frames (0 runs until interrupted)")
	exportDebug := flag.String("export-debug-texture", "", "write the generated debug texture to this PNG path")
	flag.Parse()

	tb := testbed.NewTestGame(*assetDir, *scene)
	level, err := core.ParseLogLevel(*logLevel)
	if err != nil {
		panic(err)
	}
	tb.ApplicationConfig.LogLevel = level
	tb.ApplicationConfig.MaxFrames = *frames
	tb.DebugTextureExport = *exportDebug

	engine, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}

	if err := engine.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		engine.Stop()
	}()

	// run engine
	runErr := engine.Run()
	if err := engine.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if runErr != nil {
		os.Exit(1)
	}
}
