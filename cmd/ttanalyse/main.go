// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command ttanalyse is the offline counterpart to a running gateway
// fleet: it replays a captured packet stream (JSONL, one
// internal/historical.Record per line) through the same anomaly
// policies the live decision engine uses, and writes anomalies.jsonl
// and critical.jsonl — the short-window and long-window hits,
// respectively. Unlike the live path it keeps its own in-memory store,
// built fresh from the capture file, since a batch run has no running
// fleet to query against.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/joho/godotenv"

	"github.com/treetalker/ttcloud/internal/historical"
	"github.com/treetalker/ttcloud/internal/ttconfig"
	"github.com/treetalker/ttcloud/internal/ttstore"
	"github.com/treetalker/ttcloud/pkg/log"
	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

func main() {
	var flagInput, flagOutput, flagFilter, flagConfigFile, flagEnvFile string
	var flagAppend bool
	flag.StringVar(&flagInput, "input", "", "Path to a captured JSONL packet stream")
	flag.StringVar(&flagOutput, "output", "./out", "Directory (or local fallback) to write anomalies.jsonl/critical.jsonl into")
	flag.StringVar(&flagFilter, "filter", "", "Optional expr-lang expression restricting which packets are analysed")
	flag.StringVar(&flagConfigFile, "config", "", "Optional config file carrying S3 archive settings")
	flag.StringVar(&flagEnvFile, "env", "", "Optional .env file (e.g. S3 credentials for -config's archive upload)")
	flag.BoolVar(&flagAppend, "append", false, "Append to existing anomalies.jsonl/critical.jsonl instead of truncating")
	flag.Parse()

	if flagInput == "" {
		log.Fatal("ttanalyse: -input is required")
	}

	// A batch CLI tool has no long-running process lifecycle to protect,
	// so it loads .env the ecosystem way rather than through
	// runtimeEnv.LoadEnv (reserved for the daemons in cmd/ttgateway,
	// cmd/ttcoordinator, cmd/ttaggregator).
	if flagEnvFile != "" {
		if err := godotenv.Load(flagEnvFile); err != nil {
			log.Fatalf("loading '%s' failed: %s", flagEnvFile, err.Error())
		}
	}

	var program *vm.Program
	if flagFilter != "" {
		p, err := expr.Compile(flagFilter, expr.AsBool())
		if err != nil {
			log.Fatalf("ttanalyse: compiling -filter failed: %s", err.Error())
		}
		program = p
	}

	in, err := os.Open(flagInput)
	if err != nil {
		log.Fatal(err)
	}
	defer in.Close()

	records, err := historical.ReadStream(in)
	if err != nil {
		log.Fatal(err)
	}

	store := ttstore.NewMemory()
	defer store.Close()
	analyzer := historical.NewAnalyzer(store)

	ctx := context.Background()
	anomaliesOut, err := newFindingsWriter(flagOutput, "anomalies.jsonl", flagAppend)
	if err != nil {
		log.Fatal(err)
	}
	defer anomaliesOut.Close()

	criticalOut, err := newFindingsWriter(flagOutput, "critical.jsonl", flagAppend)
	if err != nil {
		log.Fatal(err)
	}
	defer criticalOut.Close()

	var processed, dropped, anomalyCount, criticalCount int
	for _, rec := range records {
		pkt, _, err := rec.Decode()
		if err != nil {
			log.Warnf("ttanalyse: skipping unreadable record: %v", err)
			dropped++
			continue
		}

		if program != nil {
			match, err := expr.Run(program, packetFilterEnv(pkt))
			if err != nil {
				log.Fatalf("ttanalyse: evaluating -filter failed: %s", err.Error())
			}
			if ok := match.(bool); !ok {
				continue
			}
		}

		anomalies, critical, err := analyzer.Process(ctx, rec)
		if err != nil {
			log.Warnf("ttanalyse: processing record failed: %v", err)
			dropped++
			continue
		}
		processed++

		if anomalies != nil {
			if err := anomaliesOut.Write(anomalies); err != nil {
				log.Fatal(err)
			}
			anomalyCount++
		}
		if critical != nil {
			if err := criticalOut.Write(critical); err != nil {
				log.Fatal(err)
			}
			criticalCount++
		}
	}

	if err := anomaliesOut.Flush(); err != nil {
		log.Fatal(err)
	}
	if err := criticalOut.Flush(); err != nil {
		log.Fatal(err)
	}

	log.Infof("ttanalyse: processed %d records (%d dropped), %d anomalies, %d critical", processed, dropped, anomalyCount, criticalCount)

	if flagConfigFile != "" {
		cfg, err := ttconfig.LoadHistorical(flagConfigFile)
		if err != nil {
			log.Fatal(err)
		}
		uploadResults(ctx, cfg, flagOutput, anomaliesOut.path, criticalOut.path)
	}
}

// packetFilterEnv builds the environment an expr -filter expression runs
// against: sender, receiver, kind and (for data packets) air_temperature.
func packetFilterEnv(pkt ttpacket.Packet) map[string]any {
	env := map[string]any{
		"sender":          ttpacket.SenderAddress(pkt).String(),
		"receiver":        ttpacket.ReceiverAddress(pkt).String(),
		"kind":            pkt.Kind().String(),
		"air_temperature": float64(0),
	}
	switch p := pkt.(type) {
	case *ttpacket.DataRev31:
		env["air_temperature"] = float64(p.AirTemperature)
	case *ttpacket.DataRev32:
		env["air_temperature"] = float64(p.AirTemperature)
	}
	return env
}

// findingsWriter writes JSONL-encoded historical.Finding records, one per
// line and buffered, to one output file. The file is truncated on open
// unless appendExisting is set.
type findingsWriter struct {
	path string
	f    *os.File
	w    *bufio.Writer
}

func newFindingsWriter(dir, name string, appendExisting bool) (*findingsWriter, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, name)

	flags := os.O_CREATE | os.O_WRONLY
	if appendExisting {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o640)
	if err != nil {
		return nil, err
	}
	return &findingsWriter{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

func (fw *findingsWriter) Write(finding *historical.Finding) error {
	raw, err := json.Marshal(finding)
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	_, err = fw.w.Write(raw)
	return err
}

func (fw *findingsWriter) Flush() error {
	return fw.w.Flush()
}

func (fw *findingsWriter) Close() error {
	return fw.f.Close()
}

// uploadResults ships the two output files to the configured archive
// target once a run completes. A failed upload is logged, not fatal —
// the local files are still on disk for a manual retry.
func uploadResults(ctx context.Context, cfg ttconfig.Historical, localDir, anomaliesPath, criticalPath string) {
	target, err := cfg.BuildArchive(ctx, localDir)
	if err != nil {
		log.Errorf("ttanalyse: building archive target failed: %v", err)
		return
	}

	for _, path := range []string{anomaliesPath, criticalPath} {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Errorf("ttanalyse: reading %s for upload failed: %v", path, err)
			continue
		}
		if err := target.WriteFile(ctx, filepath.Base(path), data); err != nil {
			log.Errorf("ttanalyse: uploading %s failed: %v", path, err)
			continue
		}
		log.Infof("ttanalyse: uploaded %s", filepath.Base(path))
	}
}
