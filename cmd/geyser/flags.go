// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	scenarioFlag = cli.StringFlag{
		Name:  "scenario",
		Value: "scenario.yaml",
		Usage: "path to the scenario file to execute",
	}
	feesFlag = cli.StringFlag{
		Name:  "fees",
		Usage: "path to a fee configuration file",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 2,
		Usage: "log verbosity (0=error, 1=warn, 2=info, 3=debug)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enable the prometheus metrics endpoint",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
)
