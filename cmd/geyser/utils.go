// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	isatty "github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/gysr-io/core-go/log"
	"github.com/gysr-io/core-go/metrics"
)

var logger = log.WithContext("pkg", "main")

func fatal(args ...interface{}) {
	fmt.Fprint(os.Stderr, "Fatal: ")
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}

func initLogger(ctx *cli.Context) {
	var level slog.Level
	switch ctx.Int(verbosityFlag.Name) {
	case 0:
		level = slog.LevelError
	case 1:
		level = slog.LevelWarn
	case 2:
		level = slog.LevelInfo
	default:
		level = slog.LevelDebug
	}

	if ctx.Bool(jsonLogsFlag.Name) || !isatty.IsTerminal(os.Stderr.Fd()) {
		log.SetHandler(log.JSONHandler(os.Stderr, level))
		return
	}
	log.SetHandler(log.TerminalHandler(os.Stderr, level))
}

func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "err", err)
		}
	}()
	logger.Info("metrics server started", "addr", addr)
	return srv
}
