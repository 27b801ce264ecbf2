package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/devnotes/internal/buildinfo"
	"github.com/dmitrijs2005/devnotes/internal/logging"
	"github.com/dmitrijs2005/devnotes/internal/server"
	"github.com/dmitrijs2005/devnotes/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
