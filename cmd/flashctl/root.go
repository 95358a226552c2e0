package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/flashdeck/flashdeck/internal/client"
)

type rootOptions struct {
	apiURL  string
	token   string
	jsonOut bool

	in  io.Reader
	out io.Writer

	newClient clientFactory
}

type clientFactory func(apiURL, token string) apiClient

func defaultClient(apiURL, token string) apiClient {
	return client.New(apiURL, token)
}

// newRootCmd builds the command tree. A nil factory uses client.New.
func newRootCmd(in io.Reader, out io.Writer, newClient clientFactory) *cobra.Command {
	if newClient == nil {
		newClient = defaultClient
	}
	opts := &rootOptions{
		in:        in,
		out:       out,
		newClient: newClient,
	}

	cmd := &cobra.Command{
		Use:   "flashctl",
		Short: "Manage flashdeck decks and study cards",
		Long: `flashctl talks to a flashdeck API server.

The session token is read from --token or FLASHDECK_TOKEN.

Examples:
  flashctl decks list
  flashctl decks create Biology --description "Cell structure"
  flashctl cards add 01HXYZ... "What is ATP?" "Energy currency of the cell"
  flashctl study 01HXYZ...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.token == "" {
				return errors.New("a session token is required (--token or FLASHDECK_TOKEN)")
			}
			return nil
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(out)

	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", envOr("FLASHDECK_API_URL", client.DefaultBaseURL), "flashdeck API base URL")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("FLASHDECK_TOKEN"), "session token")
	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print raw JSON")

	cmd.AddCommand(newDecksCmd(opts))
	cmd.AddCommand(newCardsCmd(opts))
	cmd.AddCommand(newStudyCmd(opts))

	return cmd
}

func (o *rootOptions) client() apiClient {
	return o.newClient(o.apiURL, o.token)
}

func (o *rootOptions) printJSON(v any) error {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (o *rootOptions) printf(format string, args ...any) {
	fmt.Fprintf(o.out, format, args...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
