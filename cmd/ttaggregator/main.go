// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command ttaggregator runs the periodic fleet-wide baseline job: every
// Interval it recomputes the movement and stem-temperature baselines
// over the short analysis window and publishes them for every gateway
// to pick up.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gops/agent"

	"github.com/treetalker/ttcloud/internal/aggregator"
	"github.com/treetalker/ttcloud/internal/httpserver"
	"github.com/treetalker/ttcloud/internal/runtimeEnv"
	"github.com/treetalker/ttcloud/internal/ttbus"
	"github.com/treetalker/ttcloud/internal/ttconfig"
	"github.com/treetalker/ttcloud/pkg/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var flagConfigFile, flagEnvFile string
	var flagGops bool
	flag.StringVar(&flagConfigFile, "config", "./config.json", "Path to the aggregator config file")
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

	cfg, err := ttconfig.LoadAggregator(flagConfigFile)
	if err != nil {
		log.Fatal(err)
	}

	interval, err := cfg.IntervalOrDefault()
	if err != nil {
		log.Fatalf("parsing aggregator interval failed: %s", err.Error())
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

	agg := aggregator.New(store, bus)
	if err := agg.Start(context.Background(), interval); err != nil {
		log.Fatalf("starting aggregator schedule failed: %s", err.Error())
	}

	httpAddr := cfg.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8092"
	}
	srv := httpserver.New(httpAddr, func() error {
		if !bus.IsConnected() {
			return errors.New("bus connection lost")
		}
		return nil
	})
	srv.Start()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	runtimeEnv.SystemdNotifiy(true, "running")
	log.Infof("ttaggregator: listening on %s, running every %s", httpAddr, interval)

	<-sigs
	runtimeEnv.SystemdNotifiy(false, "shutting down")
	if err := agg.Stop(); err != nil {
		log.Errorf("ttaggregator: scheduler shutdown: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Errorf("ttaggregator: http server shutdown: %v", err)
	}
	log.Info("ttaggregator: shutdown complete")
}
