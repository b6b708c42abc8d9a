// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/myo_osc/internal/app"
	"github.com/relabs-tech/myo_osc/internal/config"
	"github.com/relabs-tech/myo_osc/internal/logging"
)

func usage() {
	fmt.Printf("\nusage: %s [IP address] <port>\n\n", os.Args[0])
	fmt.Println("myo_osc sends OSC output over UDP from the input of a Myo armband.")
	fmt.Print("IP address defaults to 127.0.0.1/localhost\n\n")
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "path to configuration file (KEY=VALUE or .toml)")
	flag.Usage = usage
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fatal(err)
		}
	}

	args := flag.Args()
	switch len(args) {
	case 0:
	case 1:
		port, err := config.ParsePort(args[0])
		if err != nil {
			fatal(err)
		}
		cfg.OSCHost, cfg.OSCPort = "127.0.0.1", port
	case 2:
		port, err := config.ParsePort(args[1])
		if err != nil {
			fatal(err)
		}
		cfg.OSCHost, cfg.OSCPort = args[0], port
	default:
		usage()
		os.Exit(0)
	}

	logging.Configure("myo_osc", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunBridge(ctx, cfg, os.Stdout); err != nil {
		stop()
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
