// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

// Package cli sets up the command-line interface for ClipVault using the
// Cobra library. It defines the root command, subcommands (run, list,
// search, pin, paste, export, ...), flags, and the main entry point for
// execution.
package cli

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/toeirei/clipvault/internal/capture"
	"github.com/toeirei/clipvault/internal/clipboard"
	"github.com/toeirei/clipvault/internal/config"
	"github.com/toeirei/clipvault/internal/crypto"
	"github.com/toeirei/clipvault/internal/db"
	"github.com/toeirei/clipvault/internal/history"
	"github.com/toeirei/clipvault/internal/keystore"
	"github.com/toeirei/clipvault/internal/logging"
	"github.com/toeirei/clipvault/internal/policy"
)

var (
	cfgFile          string
	promptPassphrase bool

	appConfig config.Config
)

// services is the explicit service graph built once per invocation and
// handed to commands; nothing here is a global singleton.
type services struct {
	store   db.Store
	engine  *crypto.Engine
	repo    *history.Repository
	clip    clipboard.Clipboard
	monitor *capture.Monitor
}

func (s *services) close() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

var rootCmd = &cobra.Command{
	Use:   "clipvault",
	Short: "Encrypted clipboard history",
	Long: `ClipVault watches the system clipboard and keeps an encrypted,
deduplicated history with bounded retention. Content from credential
managers and probable secrets are never stored.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		var found bool
		appConfig, found, err = config.Load(cmd, cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		// No config file anywhere is expected on first run; write a
		// default one so subsequent runs have a file to inspect.
		if !found {
			if writeErr := config.WriteFile(&appConfig, false); writeErr != nil {
				logging.Warnf("could not write default config file: %v", writeErr)
			}
		}
		logging.SetDebug(appConfig.Debug)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&promptPassphrase, "prompt-passphrase", false, "prompt for the key-file passphrase instead of reading CLIPVAULT_PASSPHRASE")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(pasteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

// setupServices builds the service graph from the loaded configuration.
// A missing or unreachable secret store is fatal here: the vault cannot
// operate without its key.
func setupServices() (*services, error) {
	ks, err := openKeystore()
	if err != nil {
		return nil, err
	}
	engine := crypto.NewEngine(ks)
	if err := engine.Init(); err != nil {
		if errors.Is(err, keystore.ErrUnavailable) {
			return nil, fmt.Errorf("key store unavailable, cannot operate: %w", err)
		}
		return nil, err
	}

	store, err := db.New(appConfig.Database.Type, appConfig.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	repo := history.New(store, engine, appConfig.History.MaxUnpinnedItems)
	clip := clipboard.NewSystem()
	monitor := capture.NewMonitor(
		clip,
		clipboard.NoSourceApp{},
		clipboard.NewExtractor(appConfig.Capture.Rich, appConfig.Capture.Plain),
		policy.NewGate(appConfig.Filter.ExcludedAppIDs),
		policy.NewFilter(appConfig.Filter.Enabled),
		repo,
		time.Duration(appConfig.Capture.IntervalMS)*time.Millisecond,
	)

	return &services{
		store:   store,
		engine:  engine,
		repo:    repo,
		clip:    clip,
		monitor: monitor,
	}, nil
}

// openKeystore resolves the key file path and optional passphrase.
func openKeystore() (keystore.Store, error) {
	path := appConfig.Keystore.Path
	if path == "" {
		var err error
		path, err = keystore.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	passphrase := []byte(os.Getenv("CLIPVAULT_PASSPHRASE"))
	if promptPassphrase {
		fmt.Fprint(os.Stderr, "Key-file passphrase: ")
		entered, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("reading passphrase: %w", err)
		}
		passphrase = entered
	}
	if len(passphrase) == 0 {
		return keystore.NewFileStore(path, nil), nil
	}
	return keystore.NewFileStore(path, passphrase), nil
}
