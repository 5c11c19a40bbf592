package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/capstone/internal/admin"
	"github.com/dmitrijs2005/capstone/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := admin.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	err = app.Run(ctx, admin.Positional(os.Args[1:]))
	if cerr := app.Close(); cerr != nil {
		log.Printf("close: %v", cerr)
	}
	if err != nil {
		if !errors.Is(err, admin.ErrUsage) {
			log.Printf("%v", err)
		}
		os.Exit(1)
	}
}
