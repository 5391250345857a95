// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command ttgateway runs one gateway process: a radio bridge talking to
// the local LoRa module, and a decision engine consuming whatever the
// bridge receives. The two are connected only through the bus, exactly
// as spec.md §5 describes — the bridge never calls the engine directly.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	"golang.org/x/sync/errgroup"

	"github.com/treetalker/ttcloud/internal/engine"
	"github.com/treetalker/ttcloud/internal/httpserver"
	"github.com/treetalker/ttcloud/internal/radiobridge"
	"github.com/treetalker/ttcloud/internal/runtimeEnv"
	"github.com/treetalker/ttcloud/internal/ttbus"
	"github.com/treetalker/ttcloud/internal/ttconfig"
	"github.com/treetalker/ttcloud/pkg/log"
)

// shutdownTimeout bounds how long the debug HTTP server waits for
// in-flight requests during a graceful stop.
const shutdownTimeout = 10 * time.Second

var errBusDisconnected = errors.New("bus connection lost")

func main() {
	var flagConfigFile, flagEnvFile string
	var flagGops bool
	flag.StringVar(&flagConfigFile, "config", "./config.json", "Path to the gateway config file")
	flag.StringVar(&flagEnvFile, "env", "./.env", "Path to an optional .env file")
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.Parse()

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	if err := runtimeEnv.LoadEnv(flagEnvFile); err != nil && !os.IsNotExist(err) {
		log.Fatalf("parsing '%s' failed: %s", flagEnvFile, err.Error())
	}

	cfg, err := ttconfig.LoadGateway(flagConfigFile)
	if err != nil {
		log.Fatal(err)
	}

	if err := ttbus.Init(cfg.Nats); err != nil {
		log.Fatal(err)
	}
	bus, err := ttbus.NewClient(nil)
	if err != nil {
		log.Fatalf("bus connect failed: %s", err.Error())
	}
	defer bus.Close()

	store, err := cfg.Store.Build()
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	radio, err := radiobridge.OpenSerialRadio(cfg.RadioDevice, cfg.RadioBaud)
	if err != nil {
		log.Fatalf("opening radio device '%s' failed: %s", cfg.RadioDevice, err.Error())
	}
	defer radio.Close()

	gwName := cfg.Address.String()
	bridge := radiobridge.New(radio, bus, gwName)
	eng := engine.New(engine.NewState(cfg.Address), store, bus)

	if err := bus.Subscribe(ttbus.Command(gwName), bridge.HandleCommand(context.Background())); err != nil {
		log.Fatal(err)
	}

	// Inbound packets go through a single channel drained by one
	// goroutine; engMu serializes that goroutine with the helo-response
	// and baseline callbacks, which run on the bus client's goroutines.
	// Engine.State is never touched from more than one goroutine at a time.
	var engMu sync.Mutex
	inbound := make(chan []byte, 256)
	if err := bus.Subscribe(ttbus.Receive(gwName), func(_ string, data []byte) {
		inbound <- data
	}); err != nil {
		log.Fatal(err)
	}
	if err := bus.Subscribe(ttbus.HeloResponse(gwName), func(_ string, data []byte) {
		engMu.Lock()
		defer engMu.Unlock()
		if err := eng.HandleHeloResponse(data); err != nil {
			log.Errorf("ttgateway: helo response handling failed: %v", err)
		}
	}); err != nil {
		log.Fatal(err)
	}
	if err := bus.Subscribe(ttbus.GlobalMovement, func(_ string, data []byte) {
		engMu.Lock()
		defer engMu.Unlock()
		if err := eng.HandleGlobalMovement(data); err != nil {
			log.Errorf("ttgateway: global movement handling failed: %v", err)
		}
	}); err != nil {
		log.Fatal(err)
	}
	if err := bus.Subscribe(ttbus.GlobalTemperature, func(_ string, data []byte) {
		engMu.Lock()
		defer engMu.Unlock()
		if err := eng.HandleGlobalTemperature(data); err != nil {
			log.Errorf("ttgateway: global temperature handling failed: %v", err)
		}
	}); err != nil {
		log.Fatal(err)
	}

	httpAddr := cfg.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8090"
	}
	srv := httpserver.New(httpAddr, func() error {
		if !bus.IsConnected() {
			return errBusDisconnected
		}
		return nil
	})
	srv.Start()

	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return bridge.Run(gctx)
	})
	group.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case raw := <-inbound:
				engMu.Lock()
				if err := eng.HandleInbound(gctx, raw); err != nil {
					log.Errorf("ttgateway: inbound packet handling failed: %v", err)
				}
				engMu.Unlock()
			}
		}
	})

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	runtimeEnv.SystemdNotifiy(true, "running")
	log.Infof("ttgateway: %s listening on %s, radio %s", gwName, httpAddr, cfg.RadioDevice)

	<-sigs
	runtimeEnv.SystemdNotifiy(false, "shutting down")
	cancel()
	_ = group.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Errorf("ttgateway: http server shutdown: %v", err)
	}
	log.Info("ttgateway: shutdown complete")
}
