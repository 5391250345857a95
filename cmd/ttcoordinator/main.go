// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command ttcoordinator runs the single-instance talker-assignment
// service: it subscribes to helo/request and answers every gateway's
// claim, keeping exactly one gateway per talker fleet-wide.
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

	"github.com/treetalker/ttcloud/internal/coordinator"
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
	flag.StringVar(&flagConfigFile, "config", "./config.json", "Path to the coordinator config file")
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

	cfg, err := ttconfig.LoadCoordinator(flagConfigFile)
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

	coord := coordinator.New(bus)
	if err := bus.Subscribe(ttbus.HeloRequest, func(_ string, data []byte) {
		if err := coord.HandleClaim(data); err != nil {
			log.Errorf("ttcoordinator: claim handling failed: %v", err)
		}
	}); err != nil {
		log.Fatal(err)
	}

	httpAddr := cfg.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8091"
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
	log.Infof("ttcoordinator: listening on %s", httpAddr)

	<-sigs
	runtimeEnv.SystemdNotifiy(false, "shutting down")
	log.Infof("ttcoordinator: %d talkers assigned at shutdown", coord.AssignmentCount())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Errorf("ttcoordinator: http server shutdown: %v", err)
	}
	log.Info("ttcoordinator: shutdown complete")
}
