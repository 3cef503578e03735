package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/pharmadb/internal/core"
)

func newChatCmd(a *app) *cobra.Command {
	var listID int

	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask the assistant about your lists",
		Long: "Ask the assistant one question, or start an interactive session when no\n" +
			"question is given. In a session, /clear forgets the conversation and\n" +
			"/exit ends it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			chat := a.service.NewChatSession()
			chat.ScopeToList(listID)
			ctx := cmd.Context()

			if len(args) > 0 {
				resp, err := chat.Ask(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return a.output(resp, func() error {
					fmt.Fprintln(os.Stdout, resp.Answer)
					return nil
				})
			}

			fmt.Fprintf(os.Stderr, "Session %s. /clear to reset, /exit to quit.\n", chat.ID())
			in := bufio.NewScanner(os.Stdin)
			for {
				fmt.Fprint(os.Stderr, "> ")
				if !in.Scan() {
					return in.Err()
				}
				line := strings.TrimSpace(in.Text())
				switch line {
				case "":
					continue
				case "/exit", "/quit":
					return nil
				case "/clear":
					if err := chat.Clear(ctx); err != nil {
						printError(err)
						continue
					}
					fmt.Fprintln(os.Stderr, "Conversation cleared.")
					continue
				}

				resp, err := chat.Ask(ctx, line)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					printError(err)
					continue
				}
				fmt.Fprintln(os.Stdout, resp.Answer)
				if resp.GeneratedSQL != "" {
					fmt.Fprintf(os.Stderr, "  sql: %s (%d rows)\n", resp.GeneratedSQL, resp.RowCount)
				}
			}
		},
	}

	cmd.Flags().IntVar(&listID, "list-id", 0, "Ask about one list")
	return cmd
}

func newIngestCmd(a *app) *cobra.Command {
	var uploader string

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Upload a PDF, DOCX or text document for extraction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if uploader == "" {
				uploader = core.ActorFromContext(cmd.Context())
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := a.service.Ingest(cmd.Context(), uploader, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			return a.output(res, func() error {
				fmt.Fprintln(os.Stdout, res.Message)
				if res.ChangesMade > 0 {
					fmt.Fprintf(os.Stdout, "%d changes: %s\n", res.ChangesMade, res.ChangeDescription)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&uploader, "uploader", "", "Uploader name (default: the actor)")
	return cmd
}
