package main

import (
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flashdeck/flashdeck/internal/client"
)

func newDecksCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decks",
		Short: "Manage decks",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your decks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			decks, err := opts.client().ListDecks(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(decks)
			}
			if len(decks) == 0 {
				opts.printf("No decks found\n")
				return nil
			}

			w := tabwriter.NewWriter(opts.out, 0, 4, 2, ' ', 0)
			defer w.Flush()
			opts.fprintRow(w, "ID", "NAME", "CARDS", "UPDATED")
			for _, d := range decks {
				opts.fprintRow(w, d.ID, d.Name, itoa(d.CardCount), d.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	var description string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := client.DeckInput{Name: args[0]}
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}
			deck, err := opts.client().CreateDeck(cmd.Context(), in)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(deck)
			}
			opts.printf("Created deck %s (%s)\n", deck.Name, deck.ID)
			return nil
		},
	}
	create.Flags().StringVar(&description, "description", "", "deck description")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a deck and all of its cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().DeleteDeck(cmd.Context(), args[0]); err != nil {
				return err
			}
			opts.printf("Deleted deck %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, create, del)
	return cmd
}
