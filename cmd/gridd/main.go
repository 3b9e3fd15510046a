package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danmuck/gridd/internal/config"
	"github.com/danmuck/gridd/internal/gridd"
	"github.com/danmuck/gridd/internal/logging"
	"github.com/danmuck/gridd/internal/observability"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "gridd.toml", "path to the daemon config file")
	initNamespace := flag.String("init-namespace", "", "write a namespace file template to this path and exit")
	overwrite := flag.Bool("overwrite", false, "replace an existing file with -init-namespace")
	flag.Parse()

	logging.ConfigureRuntime()
	defer func() { _ = logging.Close() }()

	if *initNamespace != "" {
		if err := config.WriteNamespaceTemplate(*initNamespace, *overwrite); err != nil {
			fmt.Fprintf(os.Stderr, "gridd: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *initNamespace)
		return
	}

	cfg := gridd.DefaultServiceConfig()
	if fileExists(*configPath) {
		loaded, err := loadServiceConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "gridd: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		log.Warn().Str("path", *configPath).Msg("gridd config not found, using defaults")
	}
	cfg, err := applyEnv(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gridd: %v\n", err)
		os.Exit(1)
	}

	svc, err := gridd.NewService(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gridd: %v\n", err)
		os.Exit(1)
	}
	name, _ := svc.Namespace().Name()
	observability.InitLogger("gridd", name)

	if err := svc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "gridd: %v\n", err)
		os.Exit(1)
	}
}
