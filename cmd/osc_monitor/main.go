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
	"github.com/relabs-tech/myo_osc/internal/logging"
)

func main() {
	addr := flag.String("listen", ":7777", "UDP address to listen on")
	quiet := flag.Bool("quiet", false, "print only the per-second rate line")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	logging.Configure("osc_monitor", *level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.NewMonitor(os.Stdout, *quiet).Run(ctx, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
