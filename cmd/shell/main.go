package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"syscall"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/blockfish/cache"
	"github.com/domino14/blockfish/config"
	"github.com/domino14/blockfish/shell"
)

var (
	GitVersion string
)

//go:embed blockfish.txt
var banner string

func main() {
	// Relative ruleset and shape table paths are resolved against the
	// executable's directory.
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)
	fmt.Println(banner)
	fmt.Println(GitVersion)

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.AdjustRelativePaths(exPath)
	cfg.SetupLogging(os.Stderr)
	log.Info().Interface("config", cfg.SanitizedSettings()).Msg("loaded-config")

	if cfg.GetString(config.ConfigCPUProfile) != "" {
		f, err := os.Create(cfg.GetString(config.ConfigCPUProfile))
		if err != nil {
			panic("could not create CPU profile: " + err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic("could not start CPU profile: " + err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	table, err := cache.ShapeTable(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("loading-shapetable")
	}
	sc, err := shell.NewShellController(cfg, table)
	if err != nil {
		log.Fatal().Err(err).Msg("starting-shell")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	idleConnsClosed := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("got quit signal...")
		cancel()
		close(idleConnsClosed)
	}()

	if args := cfg.Args(); len(args) > 0 {
		// One-shot mode: run the command given on the command line.
		line := shellquote.Join(args...)
		resp, err := sc.Execute(ctx, line)
		if err != nil {
			log.Error().Err(err).Str("line", line).Msg("command-failed")
		} else if resp != nil {
			fmt.Println(strings.TrimSpace(resp.String()))
		}
		sig <- syscall.SIGINT
	} else {
		go sc.Loop(ctx, sig)
	}

	<-idleConnsClosed
	log.Info().Msg("shell-exiting")
}
