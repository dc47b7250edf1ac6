// Command web serves the analyzer over HTTP: upload a price/volume table to
// POST /api/analyze and receive result.xlsx.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"pvcli/internal/app"
	"pvcli/internal/infrastructure"
	"pvcli/pkg/contracts"
)

func main() {
	configFile := flag.String("config", "", "configuration file (YAML)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	application, err := app.NewApplication(*configFile)
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	if err := application.Run(context.Background()); err != nil {
		application.Logger.Error("application error", slog.String("error", err.Error()))
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
}
