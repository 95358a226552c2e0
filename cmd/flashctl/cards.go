package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flashdeck/flashdeck/internal/client"
)

func newCardsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Manage the cards of a deck",
	}

	list := &cobra.Command{
		Use:   "list <deckId>",
		Short: "List the cards of a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := opts.client().ListCards(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(cards)
			}
			if len(cards) == 0 {
				opts.printf("No cards in this deck\n")
				return nil
			}

			w := tabwriter.NewWriter(opts.out, 0, 4, 2, ' ', 0)
			defer w.Flush()
			opts.fprintRow(w, "ID", "FRONT", "DIFFICULTY", "REVIEWS")
			for _, c := range cards {
				opts.fprintRow(w, c.ID, truncate(c.Front, 40), string(c.Difficulty), itoa(c.ReviewCount))
			}
			return nil
		},
	}

	var difficulty string
	add := &cobra.Command{
		Use:   "add <deckId> <front> <back>",
		Short: "Add a card to a deck",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := opts.client().CreateCard(cmd.Context(), args[0], client.CardInput{
				Front:      args[1],
				Back:       args[2],
				Difficulty: difficulty,
			})
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(card)
			}
			opts.printf("Added card %s (%s)\n", card.ID, card.Difficulty)
			return nil
		},
	}
	add.Flags().StringVar(&difficulty, "difficulty", "", "easy, medium or hard (default medium)")

	cmd.AddCommand(list, add)
	return cmd
}

func (o *rootOptions) fprintRow(w io.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
