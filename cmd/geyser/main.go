// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/gysr-io/core-go/config"
	"github.com/gysr-io/core-go/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Geyser",
		Usage:     "GYSR staking and reward accounting sandbox",
		Copyright: "2026 The GYSR developers <https://www.gysr.io/>",
		Flags: []cli.Flag{
			scenarioFlag,
			feesFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAction(ctx *cli.Context) error {
	initLogger(ctx)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		srv := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		defer srv.Close()
	}

	fees := config.NewMemRegistry()
	if path := ctx.String(feesFlag.Name); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		fees = loaded
	}

	sc, err := loadScenario(ctx.String(scenarioFlag.Name))
	if err != nil {
		return err
	}
	return sc.run(os.Stdout, fees)
}
