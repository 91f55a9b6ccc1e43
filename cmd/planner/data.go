package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mmynk/planboard/internal/export"
	"github.com/mmynk/planboard/internal/rpc"
)

const (
	defaultBackupFile = "wedding_backup.json"
	defaultGuestsFile = "wedding_guest_list.csv"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Download a JSON backup of the whole document (\"-\" for stdout)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := documentClient().Export.CallUnary(cmd.Context(), connect.NewRequest(&rpc.ExportDocumentRequest{
			Path: cfg.Client.Path,
		}))
		if err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}
		return writeOutput(argOr(args, defaultBackupFile), []byte(resp.Msg.Data))
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Overwrite the shared document with a JSON backup (\"-\" for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read backup: %w", err)
		}

		// Reject locally first for a clearer message.
		if _, err := export.ImportJSON(bytes.NewReader(data)); err != nil {
			return err
		}

		resp, err := documentClient().Import.CallUnary(cmd.Context(), connect.NewRequest(&rpc.ImportDocumentRequest{
			Path:   cfg.Client.Path,
			Data:   string(data),
			Writer: uuid.NewString(),
		}))
		if err != nil {
			return fmt.Errorf("failed to import: %w", err)
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("Imported %s (revision %d)", args[0], resp.Msg.Revision)))
		return nil
	},
}

var guestsCSVCmd = &cobra.Command{
	Use:   "csv [file]",
	Short: "Export the guest list as CSV (\"-\" for stdout)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := fetchDocument(cmd.Context())
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := export.GuestsCSV(&buf, doc.Guests); err != nil {
			return err
		}
		return writeOutput(argOr(args, defaultGuestsFile), buf.Bytes())
	},
}

func init() {
	guestsCmd.AddCommand(guestsCSVCmd)
	rootCmd.AddCommand(exportCmd, importCmd)
}

func argOr(args []string, fallback string) string {
	if len(args) > 0 {
		return args[0]
	}
	return fallback
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Println(okStyle.Render("Saved " + path))
	return nil
}
