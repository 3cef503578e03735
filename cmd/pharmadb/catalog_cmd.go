package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/pharmadb/internal/catalog"
	"github.com/JonMunkholm/pharmadb/internal/core"
	"github.com/JonMunkholm/pharmadb/internal/csvfile"
)

func newDomainsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List domains and their list types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			domains := catalog.Domains()
			return a.output(domains, func() error {
				rows := make([][]string, 0, len(domains))
				for _, d := range domains {
					rows = append(rows, []string{strconv.Itoa(d.BackendID), d.Key, d.Name, strings.Join(d.ListTypes, ", ")})
				}
				return printTable(os.Stdout, []string{"ID", "KEY", "NAME", "LIST TYPES"}, rows)
			})
		},
	}
}

func newTemplateCmd(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "template <list type>",
		Short: "Print or save the sample CSV for a list type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := csvfile.RenderSample(args[0])
			if err != nil {
				return err
			}
			if outDir == "" {
				_, err := fmt.Fprint(os.Stdout, text)
				return err
			}
			name, err := csvfile.SampleFilename(args[0])
			if err != nil {
				return err
			}
			path, err := csvfile.SaveFile(outDir, name, text)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to save the file in (default: print to stdout)")
	return cmd
}

func newSubdomainsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "subdomains <domain>",
		Short: "List a domain's subdomains as stored on the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lookupDomain(args[0])
			if err != nil {
				return err
			}
			subs, err := a.client.Subdomains(cmd.Context(), d.BackendID)
			if err != nil {
				return err
			}
			return a.output(subs, func() error {
				rows := make([][]string, 0, len(subs))
				for _, s := range subs {
					table, err := catalog.ResolveTable(s.Name)
					if err != nil {
						table = "-"
					}
					rows = append(rows, []string{strconv.Itoa(s.ID), s.Name, table})
				}
				return printTable(os.Stdout, []string{"ID", "NAME", "TABLE"}, rows)
			})
		},
	}
}

// lookupDomain accepts a domain key ("customer") or backend id ("1").
func lookupDomain(s string) (catalog.Domain, error) {
	if id, err := strconv.Atoi(s); err == nil {
		if d, ok := catalog.DomainByID(id); ok {
			return d, nil
		}
	}
	if d, ok := catalog.DomainByKey(s); ok {
		return d, nil
	}
	return catalog.Domain{}, fmt.Errorf("domain %q: %w", s, core.ErrNotFound)
}
