package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/pharmadb/internal/core"
)

func newWatchCmd(a *app) *cobra.Command {
	var subdomain string
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch [domain]",
		Short: "Keep the dashboard or a domain view on screen, refreshing it",
		Long: "Without a domain, watch the dashboard. With one, watch its list requests\n" +
			"and, with --subdomain, its entries. Press Enter to refresh now; Ctrl-C stops.\n\n" +
			"While watching a subdomain, type:\n" +
			"  add column=value...        add one entry\n" +
			"  import <file.csv> [list]   import a CSV file, optionally into a list\n" +
			"  delete <id>...             delete entries\n" +
			"Refreshing pauses while an add or import runs.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var poller *core.Poller
			var view *core.DomainView
			var draw func()
			if len(args) == 0 {
				if interval <= 0 {
					interval = a.cfg.Poll.Dashboard
				}
				d := a.service.NewDashboard(interval)
				poller = d.Poller()
				draw = func() { drawDashboard(d.Snapshot()) }
			} else {
				dom, err := lookupDomain(args[0])
				if err != nil {
					return err
				}
				if interval <= 0 {
					interval = a.cfg.Poll.Domain
				}
				v := a.service.NewDomainView(dom, interval)
				if subdomain != "" {
					if err := v.Select(subdomain); err != nil {
						return err
					}
				}
				poller = v.Poller()
				view = v
				draw = func() { drawDomain(v.Snapshot()) }
			}

			poller.OnFetch(func(err error) {
				if err != nil {
					if ctx.Err() == nil {
						printError(err)
					}
					return
				}
				draw()
			})

			go readCommands(ctx, poller, view)
			poller.Run(ctx)
			return nil
		},
	}

	cmd.Flags().StringVar(&subdomain, "subdomain", "", "Subdomain whose entries to show")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (default from POLL_* settings)")
	return cmd
}

// readCommands handles lines typed while watching. A blank line refreshes
// at once, the terminal stand-in for a tab regaining focus. Other lines are
// entry commands on the watched subdomain.
func readCommands(ctx context.Context, p *core.Poller, v *core.DomainView) {
	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(in.Text())
		if len(fields) == 0 {
			p.Trigger()
			continue
		}
		msg, err := runEntryCommand(ctx, v, fields)
		if err != nil {
			printError(err)
			continue
		}
		fmt.Fprintln(os.Stderr, msg)
	}
}

// runEntryCommand changes the selected entry table of v. Adds go through
// BeginAdd so the view stops refreshing until they finish.
func runEntryCommand(ctx context.Context, v *core.DomainView, fields []string) (string, error) {
	if v == nil || v.Selected() == "" {
		return "", errors.New("validation failed: watch a domain with --subdomain to change entries")
	}

	switch fields[0] {
	case "add":
		wf, err := v.BeginAdd()
		if err != nil {
			return "", err
		}
		defer wf.Cancel()
		if err := wf.ChooseManual(); err != nil {
			return "", err
		}
		if err := setPairs(wf, fields[1:]); err != nil {
			return "", err
		}
		rec, err := wf.Save(ctx)
		if err != nil {
			return "", err
		}
		id, _ := rec.ID()
		return fmt.Sprintf("Added entry %s to %s", id, wf.Table()), nil

	case "import":
		if len(fields) < 2 || len(fields) > 3 {
			return "", errors.New("validation failed: usage: import <file.csv> [list id]")
		}
		var opts []core.WorkflowOption
		if len(fields) == 3 {
			id, err := strconv.Atoi(fields[2])
			if err != nil || id <= 0 {
				return "", fmt.Errorf("validation failed: list id %q", fields[2])
			}
			opts = append(opts, core.WithListScope(id))
		}
		content, err := os.ReadFile(fields[1])
		if err != nil {
			return "", err
		}

		wf, err := v.BeginAdd(opts...)
		if err != nil {
			return "", err
		}
		defer wf.Cancel()
		if err := wf.ChooseCSV(); err != nil {
			return "", err
		}
		if err := wf.SelectFile(filepath.Base(fields[1]), content); err != nil {
			return "", err
		}
		res, err := wf.Upload(ctx)
		if err != nil {
			return "", err
		}
		return res.Message(), nil

	case "delete":
		if len(fields) < 2 {
			return "", errors.New("validation failed: usage: delete <id>...")
		}
		if err := v.DeleteSelected(ctx, fields[1:]); err != nil {
			return "", err
		}
		return "Deleted " + entryCount(len(fields)-1), nil
	}
	return "", fmt.Errorf("validation failed: unknown command %q", fields[0])
}

const clearScreen = "\033[H\033[2J"

func drawDashboard(snap core.DashboardSnapshot) {
	fmt.Fprint(os.Stdout, clearScreen)
	rows := make([][]string, 0, len(snap.Domains))
	for _, ds := range snap.Domains {
		rows = append(rows, []string{ds.Domain.Name, fmt.Sprint(ds.ListCount), fmt.Sprint(len(ds.Domain.ListTypes))})
	}
	_ = printTable(os.Stdout, []string{"DOMAIN", "LISTS", "LIST TYPES"}, rows)
	fmt.Fprintf(os.Stdout, "\nUpdated %s\n", snap.FetchedAt.Format(time.TimeOnly))
}

func drawDomain(snap core.DomainSnapshot) {
	fmt.Fprint(os.Stdout, clearScreen)
	fmt.Fprintf(os.Stdout, "%s\n\n", snap.Domain.Name)
	_ = printTable(os.Stdout, listHeader, listRows(snap.Lists))

	if snap.Selected != "" {
		fmt.Fprintf(os.Stdout, "\n%s (%s, %d entries)\n", snap.Selected, snap.Table, len(snap.Entries))
		if len(snap.Entries) > 0 {
			_ = printTable(os.Stdout, snap.Columns, recordRows(snap.Columns, snap.Entries))
		}
	}
	fmt.Fprintf(os.Stdout, "\nUpdated %s\n", snap.FetchedAt.Format(time.TimeOnly))
}
