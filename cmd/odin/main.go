// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/odinvm/odin/api"
	"github.com/odinvm/odin/client"
	"github.com/odinvm/odin/log"
	"github.com/odinvm/odin/metrics"
	"github.com/odinvm/odin/runtime"
	"github.com/odinvm/odin/vm"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
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
		Name:      "Odin",
		Usage:     "Layered state node of the Odin VM",
		Copyright: "2025 The OdinVM developers",
		Flags: []cli.Flag{
			genesisFlag,
			apiAddrFlag,
			apiTimeoutFlag,
			enableAPILogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			verbosityFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	st, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	stateClient := client.New(runtime.New(&vm.TransferVM{}, st))
	defer func() { logger.Info("closing state client..."); stateClient.Close() }()

	var handler http.Handler = api.New(stateClient)
	if ctx.Bool(enableAPILogsFlag.Name) {
		handler = handlers.CombinedLoggingHandler(os.Stdout, handler)
	}
	timeout := time.Duration(ctx.Uint64(apiTimeoutFlag.Name)) * time.Millisecond
	handler = http.TimeoutHandler(handler, timeout, "request timeout")

	apiSrv, apiURL, err := startHTTPServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return errors.WithMessage(err, "start API server")
	}

	var metricsSrv *server
	if ctx.Bool(enableMetricsFlag.Name) {
		metricsSrv, _, err = startHTTPServer(ctx.String(metricsAddrFlag.Name), metrics.HTTPHandler())
		if err != nil {
			return errors.WithMessage(err, "start metrics server")
		}
	}

	printStartupMessage(apiURL)

	exitCtx := handleExitSignal()

	var group errgroup.Group
	group.Go(apiSrv.serve)
	if metricsSrv != nil {
		group.Go(metricsSrv.serve)
	}
	group.Go(func() error {
		<-exitCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		logger.Info("stopping API server...")
		apiSrv.shutdown(shutdownCtx)
		if metricsSrv != nil {
			logger.Info("stopping metrics server...")
			metricsSrv.shutdown(shutdownCtx)
		}
		return nil
	})
	return group.Wait()
}

func printStartupMessage(apiURL string) {
	fmt.Printf(`Starting %v
    Version     %v
    API portal  %v
`, "Odin", fullVersion(), apiURL)
}
