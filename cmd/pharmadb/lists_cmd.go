package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/core"
)

func listRows(lists []api.ListRequest) [][]string {
	rows := make([][]string, 0, len(lists))
	for _, l := range lists {
		sub := ""
		if l.Subdomain != nil {
			sub = l.Subdomain.Name
		}
		rows = append(rows, []string{strconv.Itoa(l.ID), sub, l.RequesterName, l.RequestPurpose, l.Status, l.CreatedAt})
	}
	return rows
}

var listHeader = []string{"ID", "SUBDOMAIN", "REQUESTER", "PURPOSE", "STATUS", "CREATED"}

func newListsCmd(a *app) *cobra.Command {
	var filter api.ListFilter

	cmd := &cobra.Command{
		Use:   "lists",
		Short: "List list requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lists, err := a.client.Lists(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return a.output(lists, func() error {
				return printTable(os.Stdout, listHeader, listRows(lists))
			})
		},
	}

	cmd.Flags().StringVar(&filter.Category, "category", "", "Filter by category")
	cmd.Flags().IntVar(&filter.SubdomainID, "subdomain-id", 0, "Filter by subdomain id")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of lists")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <id>",
		Short: "Show one list with its current items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("validation failed: list id %q", args[0])
			}
			d, err := a.client.List(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.output(d, func() error {
				if err := printTable(os.Stdout, listHeader, listRows([]api.ListRequest{d.ListRequest})); err != nil {
					return err
				}
				items := d.Items()
				fmt.Fprintf(os.Stdout, "\n%d items", len(items))
				if d.Snapshot != nil {
					fmt.Fprintf(os.Stdout, " (version %d)", d.Snapshot.VersionNumber)
				}
				fmt.Fprintln(os.Stdout)
				if len(items) == 0 {
					return nil
				}
				columns := core.Columns(items)
				return printTable(os.Stdout, columns, recordRows(columns, items))
			})
		},
	}
}

func newCreateListCmd(a *app) *cobra.Command {
	var in api.NewList

	cmd := &cobra.Command{
		Use:   "create-list",
		Short: "Create a list request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.service.CreateList(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.output(l, func() error {
				fmt.Fprintf(os.Stdout, "Created list %d (%s)\n", l.ID, l.Status)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&in.SubdomainID, "subdomain-id", 0, "Subdomain the list belongs to (required)")
	cmd.Flags().StringVar(&in.RequesterName, "requester", "", "Who asked for the list (required)")
	cmd.Flags().StringVar(&in.RequestPurpose, "purpose", "", "What the list is for (required)")
	cmd.Flags().StringVar(&in.Status, "status", "", "Initial status (default \""+core.DefaultListStatus+"\")")
	cmd.Flags().StringVar(&in.AssignedTo, "assigned-to", "", "Who works the list")
	return cmd
}

// historyScope reads either a list id argument or --domain.
func historyScope(args []string, domain string) (listID int, domainID int, err error) {
	switch {
	case domain != "" && len(args) > 0:
		return 0, 0, fmt.Errorf("validation failed: give a list id or --domain, not both")
	case domain != "":
		d, err := lookupDomain(domain)
		if err != nil {
			return 0, 0, err
		}
		return 0, d.BackendID, nil
	case len(args) == 1:
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return 0, 0, fmt.Errorf("validation failed: list id %q", args[0])
		}
		return id, 0, nil
	default:
		return 0, 0, fmt.Errorf("validation failed: a list id or --domain is required")
	}
}

func (a *app) history(cmd *cobra.Command, args []string, domain string) (core.History, error) {
	listID, domainID, err := historyScope(args, domain)
	if err != nil {
		return core.History{}, err
	}
	if domainID > 0 {
		return a.service.DomainHistory(cmd.Context(), domainID)
	}
	return a.service.ListHistory(cmd.Context(), listID)
}

func newVersionsCmd(a *app) *cobra.Command {
	var domain string
	var add api.NewVersion

	cmd := &cobra.Command{
		Use:   "versions [list id]",
		Short: "Show or record list versions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if add.ChangeType != "" {
				listID, _, err := historyScope(args, "")
				if err != nil {
					return err
				}
				add.RequestID = listID
				v, err := a.service.CreateVersion(cmd.Context(), add)
				if err != nil {
					return err
				}
				return a.output(v, func() error {
					fmt.Fprintf(os.Stdout, "Recorded version %d of list %d\n", v.Number, listID)
					return nil
				})
			}

			h, err := a.history(cmd, args, domain)
			if err != nil {
				return err
			}
			return a.output(h.Versions, func() error {
				rows := make([][]string, 0, len(h.Versions))
				for _, v := range h.Versions {
					current := ""
					if v.IsCurrent {
						current = "*"
					}
					rows = append(rows, []string{strconv.Itoa(v.RequestID), strconv.Itoa(v.Number) + current, v.ChangeType, v.ChangeRationale, v.CreatedBy, v.CreatedAt})
				}
				return printTable(os.Stdout, []string{"LIST", "VERSION", "CHANGE", "RATIONALE", "BY", "AT"}, rows)
			})
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "Show versions across a domain")
	cmd.Flags().StringVar(&add.ChangeType, "record", "", "Record a new version with this change type")
	cmd.Flags().IntVar(&add.VersionNumber, "number", 0, "Version number to record")
	cmd.Flags().StringVar(&add.ChangeRationale, "rationale", "", "Why the list changed")
	return cmd
}

func newWorkLogsCmd(a *app) *cobra.Command {
	var domain string
	var add api.NewWorkLog

	cmd := &cobra.Command{
		Use:   "worklogs [list id]",
		Short: "Show or record work logs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if add.ActivityDescription != "" {
				listID, _, err := historyScope(args, "")
				if err != nil {
					return err
				}
				add.RequestID = listID
				wl, err := a.service.CreateWorkLog(cmd.Context(), add)
				if err != nil {
					return err
				}
				return a.output(wl, func() error {
					fmt.Fprintf(os.Stdout, "Logged work on list %d\n", listID)
					return nil
				})
			}

			h, err := a.history(cmd, args, domain)
			if err != nil {
				return err
			}
			return a.output(h.WorkLogs, func() error {
				rows := make([][]string, 0, len(h.WorkLogs))
				for _, l := range h.WorkLogs {
					rows = append(rows, []string{strconv.Itoa(l.RequestID), l.WorkerName, l.ActivityDescription, l.DecisionsMade, l.ActivityDate})
				}
				return printTable(os.Stdout, []string{"LIST", "WORKER", "ACTIVITY", "DECISIONS", "DATE"}, rows)
			})
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "Show work logs across a domain")
	cmd.Flags().StringVar(&add.ActivityDescription, "record", "", "Record a work log with this activity")
	cmd.Flags().StringVar(&add.DecisionsMade, "decisions", "", "Decisions made during the activity")
	return cmd
}
