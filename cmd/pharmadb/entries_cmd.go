package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/pharmadb/internal/core"
	"github.com/JonMunkholm/pharmadb/internal/csvfile"
)

func newEntriesCmd(a *app) *cobra.Command {
	var export string

	cmd := &cobra.Command{
		Use:   "entries <subdomain>",
		Short: "Show the entry table of a subdomain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, rows, err := a.service.Entries(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			columns := core.Columns(rows)

			if export != "" {
				text := csvfile.Serialize(columns, recordRows(columns, rows))
				path, err := csvfile.SaveFile(filepath.Dir(export), filepath.Base(export), text)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Exported %d entries from %s to %s\n", len(rows), table, path)
				return nil
			}

			return a.output(rows, func() error {
				if len(rows) == 0 {
					fmt.Fprintf(os.Stderr, "No entries in %s\n", table)
					return nil
				}
				return printTable(os.Stdout, columns, recordRows(columns, rows))
			})
		},
	}

	cmd.Flags().StringVar(&export, "export", "", "Write the entries to this CSV file instead of printing")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <subdomain> column=value...",
		Short: "Add one entry to a subdomain",
		Long: "Add one entry to a subdomain. Blank values are dropped; at least one\n" +
			"column must have a value. Run `pharmadb template` to see the columns.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := a.service.NewWorkflow(args[0])
			if err != nil {
				return err
			}
			if err := wf.Open(); err != nil {
				return err
			}
			if err := wf.ChooseManual(); err != nil {
				return err
			}
			if err := setPairs(wf, args[1:]); err != nil {
				return err
			}

			rec, err := wf.Save(cmd.Context())
			if err != nil {
				return err
			}
			return a.output(rec, func() error {
				id, _ := rec.ID()
				fmt.Fprintf(os.Stdout, "Added entry %s to %s\n", id, wf.Table())
				return nil
			})
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var listID int

	cmd := &cobra.Command{
		Use:   "import <subdomain> <file.csv>",
		Short: "Import a CSV file into a subdomain",
		Long: "Import a CSV file into a subdomain. Rows are created one at a time and\n" +
			"failed rows are reported without stopping the import. With --list-id the\n" +
			"file is uploaded to that list in one request.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			var opts []core.WorkflowOption
			if listID > 0 {
				opts = append(opts, core.WithListScope(listID))
			}
			wf, err := a.service.NewWorkflow(args[0], opts...)
			if err != nil {
				return err
			}
			if err := wf.Open(); err != nil {
				return err
			}
			if err := wf.ChooseCSV(); err != nil {
				return err
			}
			if err := wf.SelectFile(filepath.Base(args[1]), content); err != nil {
				return err
			}

			res, err := wf.Upload(cmd.Context())
			if err != nil {
				return err
			}
			return a.output(res, func() error {
				fmt.Fprintln(os.Stdout, res.Message())
				for _, f := range res.Failures {
					fmt.Fprintf(os.Stderr, "  line %d: %s\n", f.Line, f.Reason)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&listID, "list-id", 0, "Upload into this list instead of row by row")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <subdomain> <id>...",
		Short: "Delete entries from a subdomain",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := args[1:]
			if err := a.service.DeleteRows(cmd.Context(), args[0], ids); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Deleted %s\n", entryCount(len(ids)))
			return nil
		},
	}
}

// setPairs stores column=value arguments on a manual workflow.
func setPairs(wf *core.Workflow, pairs []string) error {
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return fmt.Errorf("validation failed: %q is not column=value", kv)
		}
		if err := wf.Set(strings.TrimSpace(k), v); err != nil {
			return err
		}
	}
	return nil
}

func entryCount(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}
