// promptdeck - A terminal workbench for building and running prompts
// against OpenAI-compatible completion APIs.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/promptdeck/promptdeck-tui/internal/api"
	"github.com/promptdeck/promptdeck-tui/internal/config"
	"github.com/promptdeck/promptdeck-tui/internal/model"
	"github.com/promptdeck/promptdeck-tui/internal/storage"
	"github.com/promptdeck/promptdeck-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		showVersion    = flag.Bool("version", false, "print version and exit")
		configPath     = flag.String("config", "", "path to config file (TOML or JSON)")
		modelName      = flag.String("model", "", "model name, overrides config")
		dbPath         = flag.String("db", "", "path to the session database")
		importPresets  = flag.String("import-presets", "", "import presets from a JSON file and exit")
		exportPresets  = flag.String("export-presets", "", "export presets to a JSON file and exit")
		importToolSets = flag.String("import-toolsets", "", "import tool sets from a JSON file and exit")
		exportToolSets = flag.String("export-toolsets", "", "export tool sets to a JSON file and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("promptdeck %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	// Load configuration: explicit path, else the standard locations.
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *modelName != "" {
		cfg.API.Model = *modelName
	}
	if *dbPath != "" {
		cfg.Storage.DatabasePath = *dbPath
	}

	dbFile, err := cfg.DatabasePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving store path: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(dbFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening session store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if handled := runDataCommands(store, *importPresets, *exportPresets, *importToolSets, *exportToolSets); handled {
		return
	}

	sess := restoreSession(store, cfg)

	client := api.NewClient(&api.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		APIKey:  cfg.API.APIKey,
	})
	engine := api.NewEngine(client)

	m := chat.New(cfg, sess, store, engine)
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	m.BindProgram(p)

	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running promptdeck: %v\n", err)
		os.Exit(1)
	}

	// Persist whatever session was live when the user quit.
	if fm, ok := final.(chat.Model); ok {
		last := fm.Session()
		if err := store.SaveSession(last); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save session: %v\n", err)
		}
		if err := store.SetCurrentSessionID(last.ID); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record current session: %v\n", err)
		}
	}
}

// restoreSession loads the session the user last worked in, or creates
// a fresh one seeded from the configured API defaults.
func restoreSession(store *storage.Store, cfg *config.Config) *model.Session {
	if id, err := store.CurrentSessionID(); err == nil && id != "" {
		sess, err := store.LoadSession(id)
		if err == nil {
			return sess
		}
		if !errors.Is(err, storage.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "Warning: failed to restore session: %v\n", err)
		}
	}

	sess := model.NewSession("untitled")
	sess.Config = cfg.ModelConfig()
	return sess
}

// runDataCommands executes any requested import/export operations.
// Returns true when a command ran and the TUI should not start.
func runDataCommands(store *storage.Store, importP, exportP, importT, exportT string) bool {
	ran := false

	if importP != "" {
		n := store.ImportPresets(importP)
		fmt.Printf("Imported %d presets\n", n)
		ran = true
	}
	if exportP != "" {
		if err := store.ExportPresets(exportP); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting presets: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported presets to %s\n", exportP)
		ran = true
	}
	if importT != "" {
		n := store.ImportToolSets(importT)
		fmt.Printf("Imported %d tool sets\n", n)
		ran = true
	}
	if exportT != "" {
		if err := store.ExportToolSets(exportT); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting tool sets: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported tool sets to %s\n", exportT)
		ran = true
	}
	return ran
}
