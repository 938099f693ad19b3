// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toeirei/clipvault/internal/logging"
	"github.com/toeirei/clipvault/internal/model"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Monitor the clipboard and record history",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setupServices()
		if err != nil {
			return err
		}
		defer svc.close()

		// Stop the monitor before the store is torn down: Run returns
		// only after its ticker has stopped.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		svc.monitor.Run(ctx)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List history entries, pinned first",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setupServices()
		if err != nil {
			return err
		}
		defer svc.close()

		entries, err := svc.repo.List()
		if err != nil {
			return err
		}
		printEntries(cmd, svc, entries)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search decrypted history text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setupServices()
		if err != nil {
			return err
		}
		defer svc.close()

		entries, err := svc.repo.Search(args[0])
		if err != nil {
			return err
		}
		printEntries(cmd, svc, entries)
		return nil
	},
}

var pinCmd = &cobra.Command{
	Use:   "pin <id>",
	Short: "Toggle an entry's pin, exempting it from eviction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setupServices()
		if err != nil {
			return err
		}
		defer svc.close()

		pinned, err := svc.repo.TogglePin(args[0])
		if err != nil {
			return err
		}
		if pinned {
			cmd.Printf("pinned %s\n", args[0])
		} else {
			cmd.Printf("unpinned %s\n", args[0])
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setupServices()
		if err != nil {
			return err
		}
		defer svc.close()
		return svc.repo.Delete(args[0])
	},
}

var clearAll bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete unpinned entries (--all removes pinned ones too)",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setupServices()
		if err != nil {
			return err
		}
		defer svc.close()

		if clearAll {
			return svc.repo.ClearAll()
		}
		return svc.repo.ClearUnpinned()
	},
}

var pasteCmd = &cobra.Command{
	Use:   "paste <id>",
	Short: "Place an entry's content back onto the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setupServices()
		if err != nil {
			return err
		}
		defer svc.close()

		isRich, data, err := svc.repo.WriteOut(args[0])
		if err != nil {
			return err
		}
		if isRich {
			if err := svc.clip.WriteRich(data); err == nil {
				return nil
			}
			// Backend without rich support: fall back to the plain form.
			plain, err := svc.repo.PlainText(args[0])
			if err != nil {
				return err
			}
			return svc.clip.WritePlain(plain)
		}
		return svc.clip.WritePlain(string(data))
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write a compressed, still-encrypted history snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setupServices()
		if err != nil {
			return err
		}
		defer svc.close()

		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if err := svc.repo.Export(f); err != nil {
			return err
		}
		logging.Infof("exported history to %s", args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore entries from a snapshot, skipping existing ones",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setupServices()
		if err != nil {
			return err
		}
		defer svc.close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		n, err := svc.repo.Import(f)
		if err != nil {
			return err
		}
		logging.Infof("imported %d entries from %s", n, args[0])
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVar(&clearAll, "all", false, "also delete pinned entries")
}

// printEntries renders a compact listing with a short preview of each
// entry's decrypted text. Undecryptable entries are listed without a
// preview rather than hidden.
func printEntries(cmd *cobra.Command, svc *services, entries []model.Entry) {
	for _, e := range entries {
		marker := " "
		if e.Pinned {
			marker = "*"
		}
		preview, err := svc.repo.PlainText(e.ID)
		if err != nil {
			preview = "<undecryptable>"
		}
		preview = previewText(preview)
		if e.SourceApp != "" {
			cmd.Printf("%s %s  %s  [%s]  %s\n", marker, e.ID, e.LastSeenAt.Local().Format("2006-01-02 15:04"), e.SourceApp, preview)
		} else {
			cmd.Printf("%s %s  %s  %s\n", marker, e.ID, e.LastSeenAt.Local().Format("2006-01-02 15:04"), preview)
		}
	}
}

func previewText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	const max = 60
	r := []rune(s)
	if len(r) > max {
		return string(r[:max]) + "…"
	}
	return s
}
