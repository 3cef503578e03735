package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/pharmadb/internal/api"
)

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored backend token",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <token>",
		Short: "Store a token for later commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok := strings.TrimSpace(args[0])
			if tok == "" {
				return errors.New("validation failed: token is empty")
			}
			if err := a.tokens.Save(tok); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Token saved to %s\n", a.tokens.Path())
			if exp, ok := api.TokenExpiry(tok); ok && exp.Before(time.Now()) {
				fmt.Fprintf(os.Stderr, "Warning: this token expired at %s\n", exp.Format(time.RFC3339))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show where the token comes from and when it expires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source := a.tokens.Path()
			tok, err := a.tokens.Token(cmd.Context())
			if err != nil {
				return err
			}
			if a.cfg.API.Token != "" {
				source, tok = "PHARMADB_TOKEN", a.cfg.API.Token
			}
			if tok == "" {
				fmt.Fprintln(os.Stdout, "No token set")
				return nil
			}

			fmt.Fprintf(os.Stdout, "Source:  %s\n", source)
			fmt.Fprintf(os.Stdout, "Token:   %s\n", mask(tok))
			if exp, ok := api.TokenExpiry(tok); ok {
				state := "valid"
				if exp.Before(time.Now()) {
					state = "expired"
				}
				fmt.Fprintf(os.Stdout, "Expires: %s (%s)\n", exp.Format(time.RFC3339), state)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tokens.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Token removed")
			return nil
		},
	})

	return cmd
}

func mask(tok string) string {
	if len(tok) <= 8 {
		return "****"
	}
	return tok[:4] + "..." + tok[len(tok)-4:]
}
