package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"daily-checkin/internal/client"
	"daily-checkin/internal/entry"
	"daily-checkin/internal/schema"

	"github.com/spf13/cobra"
)

type globals struct {
	server string
	token  string
}

func (g *globals) client() *client.Client {
	tok := g.token
	if tok == "" {
		tok = os.Getenv("CHECKIN_TOKEN")
	}
	return client.New(g.server, tok)
}

func newRoot() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "checkin",
		Short:         "Daily pain, sleep, stress and habit check-ins",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	server := os.Getenv("CHECKIN_SERVER")
	if server == "" {
		server = "http://localhost:9871"
	}
	root.PersistentFlags().StringVar(&g.server, "server", server, "API base URL (env CHECKIN_SERVER)")
	root.PersistentFlags().StringVar(&g.token, "token", "", "bearer token (default $CHECKIN_TOKEN)")

	root.AddCommand(
		loginCmd(g, false),
		loginCmd(g, true),
		submitCmd(g),
		todayCmd(g),
		showCmd(g),
		historyCmd(g),
		formsCmd(g),
	)
	return root
}

func loginCmd(g *globals, signup bool) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := g.client()
			var err error
			if signup {
				_, err = c.Signup(cmd.Context(), email, password, name)
			} else {
				_, err = c.Login(cmd.Context(), email, password)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Token())
			return nil
		},
	}
	if signup {
		cmd.Use = "signup"
		cmd.Short = "Create an account and print a token"
		cmd.Flags().StringVar(&name, "name", "", "display name")
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&password, "password", os.Getenv("CHECKIN_PASSWORD"), "password (default $CHECKIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func submitCmd(g *globals) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "submit <type>",
		Short: "Submit today's form from a JSON file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := entry.ParseFormType(args[0])
			if err != nil {
				return err
			}
			form, err := readPayload(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			ack, err := g.client().Submit(cmd.Context(), t, form)
			var ve *schema.ValidationError
			if errors.As(err, &ve) {
				return fmt.Errorf("%s: %s", ve.Field, ve.Message)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", ack.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "payload file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func todayCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show which of today's forms are done",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := g.client().Today(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tDONE\tPAGE")
			for _, s := range status {
				done := "no"
				if s.HasTodayEntry {
					done = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Type, done, s.Path)
			}
			return tw.Flush()
		},
	}
}

func showCmd(g *globals) *cobra.Command {
	var date, uid string
	cmd := &cobra.Command{
		Use:   "show <type>",
		Short: "Print one day's entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := g.client().Entry(cmd.Context(), entry.FormType(args[0]), date, uid)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to show (default today)")
	cmd.Flags().StringVar(&uid, "uid", "", "user to show (caregivers only)")
	return cmd
}

func historyCmd(g *globals) *cobra.Command {
	var window, uid string
	cmd := &cobra.Command{
		Use:   "history <type>",
		Short: "List recent entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := g.client().History(cmd.Context(), entry.FormType(args[0]), entry.Window(window), uid)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&window, "window", "", "weekly, monthly or yearly")
	cmd.Flags().StringVar(&uid, "uid", "", "user to list (caregivers only)")
	return cmd
}

func formsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "forms",
		Short: "Print form types, pages and field options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			forms, err := g.client().Forms(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), forms)
		},
	}
}

func readPayload(stdin io.Reader, file string) (schema.Payload, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	var p schema.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	return p, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
