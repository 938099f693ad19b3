// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for ClipVault.
//
// Usage:
//
//	go run . [command]
//	./clipvault run
//
// This launches the ClipVault CLI. See --help for commands and options.
package main

import (
	"os"

	"github.com/toeirei/clipvault/internal/cli"
	"github.com/toeirei/clipvault/internal/logging"
)

// version is set at build time using -ldflags, e.g.:
// go build -ldflags "-X main.version=1.2.3"
var version = "dev"

func main() {
	if os.Getenv("CLIPVAULT_SHOW_VERSION") == "1" {
		logging.Infof("ClipVault version: %s", version)
	}

	if err := cli.Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}
