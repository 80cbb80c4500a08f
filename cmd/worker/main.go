// cn-worker-core - CryptoNight family proof-of-work mining engine
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tos-network/cn-worker-core/internal/api"
	"github.com/tos-network/cn-worker-core/internal/bridge"
	"github.com/tos-network/cn-worker-core/internal/config"
	"github.com/tos-network/cn-worker-core/internal/profiling"
	"github.com/tos-network/cn-worker-core/internal/telemetry"
	"github.com/tos-network/cn-worker-core/internal/util"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("cn-worker-core v%s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := util.InitLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	util.Infof("cn-worker-core v%s starting", version)

	pub, err := telemetry.NewPublisher(&cfg.Telemetry)
	if err != nil {
		util.Fatalf("Failed to start telemetry publisher: %v", err)
	}

	var apiServer *api.Server
	var pprofServer *profiling.Server

	var b *bridge.Bridge
	onData := func(name string, values map[string]string) {
		if apiServer != nil {
			apiServer.Broadcast(name, values)
		}
		pub.Publish(name, values)
	}
	onComplete := func() {
		util.Info("engine closed")
	}
	onError := func(description string) {
		util.Errorf("engine error: %s", description)
	}

	b = bridge.Start(onData, onComplete, onError, bridge.Options{})

	if cfg.API.Enabled {
		apiServer = api.NewServer(&cfg.API, b)
		if err := apiServer.Start(); err != nil {
			util.Fatalf("Failed to start control API: %v", err)
		}
	}

	if cfg.Profiling.Enabled {
		pprofServer = profiling.NewServer(&cfg.Profiling)
		if err := pprofServer.Start(); err != nil {
			util.Errorf("Failed to start pprof server: %v", err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	util.Info("worker started successfully. Press Ctrl+C to stop.")

	<-sigChan
	util.Info("shutting down...")

	b.Close()
	b.Wait()

	if apiServer != nil {
		apiServer.Stop()
	}
	if pprofServer != nil {
		pprofServer.Stop()
	}
	if pub != nil {
		pub.Close()
	}

	util.Info("worker stopped")
}
