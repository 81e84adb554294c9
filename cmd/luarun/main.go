// luarun runs Lua scripts against the blockfish module.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/domino14/blockfish/config"
	"github.com/domino14/blockfish/luamod"
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.SetupLogging(os.Stderr)
	scripts := cfg.Args()
	if len(scripts) == 0 {
		fmt.Fprintln(os.Stderr, "usage: luarun [flags] script.lua [script.lua ...]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	for _, path := range scripts {
		log.Debug().Str("script", path).Msg("running-script")
		if err := luamod.RunFile(ctx, path); err != nil {
			os.Exit(1)
		}
	}
}
