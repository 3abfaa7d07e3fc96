package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hollandkevint/ideally-sub002/internal/cli"
	"github.com/hollandkevint/ideally-sub002/internal/config"
	"github.com/hollandkevint/ideally-sub002/internal/intent"
	"github.com/hollandkevint/ideally-sub002/internal/logging"
	"github.com/hollandkevint/ideally-sub002/internal/orchestrator"
	"github.com/hollandkevint/ideally-sub002/internal/pathway"
	"github.com/hollandkevint/ideally-sub002/internal/store"
	"github.com/hollandkevint/ideally-sub002/internal/template"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	var source template.Source = template.BuiltinSource()
	if cfg.Templates.Dir != "" {
		source = template.NewFileSource(cfg.Templates.Dir)
	}
	templates := template.NewStore(source, log)

	storeDir := cfg.Store.Dir
	if storeDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving config directory: %v\n", err)
			return 1
		}
		storeDir = filepath.Join(base, "ideally", "sessions")
	}
	sessions, err := store.NewFileStore(storeDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening session store: %v\n", err)
		return 1
	}

	pathways := pathway.DefaultRegistry()
	router := intent.NewRouter(pathways, intent.Tuning{
		BaseScore:       cfg.Intent.BaseScore,
		MinTopScore:     cfg.Intent.MinTopScore,
		FloorThreshold:  cfg.Intent.FloorThreshold,
		ConfidenceFloor: cfg.Intent.ConfidenceFloor,
		ScoreCap:        cfg.Intent.ScoreCap,
	}, log)

	orch := orchestrator.New(pathways, templates, sessions, nil, nil, log, orchestrator.Config{
		AnalysisTimeout: cfg.Orchestrator.AnalysisTimeout,
		StorageTimeout:  cfg.Orchestrator.StorageTimeout,
	})

	app := &cli.App{
		Sessions: orch,
		Router:   router,
		Pathways: pathways,
	}
	return cli.Execute(app, os.Args[1:])
}
