// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/odinvm/odin/genesis"
	"github.com/odinvm/odin/log"
	"github.com/odinvm/odin/state"
)

func initLogger(ctx *cli.Context) {
	logLevel := log.LevelInfo
	switch ctx.Uint64(verbosityFlag.Name) {
	case 0:
		logLevel = log.LevelError
	case 1:
		logLevel = log.LevelWarn
	case 2:
		logLevel = log.LevelInfo
	default:
		logLevel = log.LevelDebug
	}
	useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	log.Init(os.Stderr, logLevel, useColor)
}

func selectGenesis(ctx *cli.Context) (*state.LayeredState, error) {
	switch name := ctx.String(genesisFlag.Name); name {
	case "":
		return state.New(), nil
	case "devnet":
		return genesis.NewDevnet().Build()
	default:
		gen, err := genesis.Load(name)
		if err != nil {
			return nil, err
		}
		return gen.Build()
	}
}

type server struct {
	inner    *http.Server
	listener net.Listener
	url      string
}

func startHTTPServer(addr string, handler http.Handler) (*server, string, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", errors.WithMessagef(err, "listen [%v]", addr)
	}
	srv := &server{
		inner: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		listener: listener,
		url:      "http://" + listener.Addr().String() + "/",
	}
	return srv, srv.url, nil
}

func (s *server) serve() error {
	logger.Info("server started", "url", s.url)
	if err := s.inner.Serve(s.listener); err != http.ErrServerClosed {
		return errors.WithMessagef(err, "serve [%v]", s.url)
	}
	return nil
}

func (s *server) shutdown(ctx context.Context) {
	if err := s.inner.Shutdown(ctx); err != nil {
		logger.Warn("server shutdown", "url", s.url, "err", err)
	}
}

// handleExitSignal returns a context canceled on interrupt or term signal.
func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
