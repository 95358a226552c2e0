package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/flashdeck/flashdeck/internal/model"
	"github.com/flashdeck/flashdeck/internal/study"
)

func newStudyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "study <deckId>",
		Short: "Study the cards of a deck interactively",
		Long: `Shows each card's front. Press enter to reveal the back, then rate it.

Keys (followed by enter):
  e / m / h   rate easy, medium or hard and move on (after revealing)
  n / p       next or previous card
  q           quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudy(cmd.Context(), opts.client(), args[0], opts.in, opts.out, time.Now)
		},
	}
}

var ratingKeys = map[string]model.Difficulty{
	"e": model.DifficultyEasy,
	"m": model.DifficultyMedium,
	"h": model.DifficultyHard,
}

// runStudy drives one study.Session from line-based input. Every rating is
// sent as a review; the server's copy replaces the local one.
func runStudy(ctx context.Context, api apiClient, deckID string, in io.Reader, out io.Writer, now func() time.Time) error {
	cards, err := api.ListCards(ctx, deckID)
	if err != nil {
		return err
	}

	session := study.NewSession(now)
	session.SelectDeck(deckID, cards)
	if err := session.Start(); err != nil {
		fmt.Fprintln(out, "This deck has no cards yet.")
		return nil
	}

	scanner := bufio.NewScanner(in)
	revealed := false
	showFront(out, session)

	for scanner.Scan() {
		input := strings.ToLower(strings.TrimSpace(scanner.Text()))

		switch input {
		case "":
			if card, ok := session.Current(); ok && !revealed {
				fmt.Fprintf(out, "  %s\n", card.Back)
				revealed = true
			}
			continue
		case "q":
			session.Stop()
			fmt.Fprintf(out, "Rated %d card(s).\n", session.Rated())
			return nil
		case "n":
			if !session.Next() {
				fmt.Fprintln(out, "Already at the last card.")
				continue
			}
		case "p":
			if !session.Prev() {
				fmt.Fprintln(out, "Already at the first card.")
				continue
			}
		default:
			difficulty, ok := ratingKeys[input]
			if !ok {
				fmt.Fprintln(out, "Use enter, e, m, h, n, p or q.")
				continue
			}
			if !revealed {
				fmt.Fprintln(out, "Press enter to reveal the answer before rating.")
				continue
			}
			rated, done, err := session.Rate(difficulty)
			if err != nil {
				return err
			}
			stored, err := api.RecordReview(ctx, deckID, rated.ID, difficulty)
			if err != nil {
				return fmt.Errorf("record review: %w", err)
			}
			session.Replace(stored)
			if done {
				fmt.Fprintf(out, "Session complete. Rated %d card(s).\n", session.Rated())
				return nil
			}
		}

		revealed = false
		showFront(out, session)
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	session.Stop()
	return nil
}

func showFront(out io.Writer, s *study.Session) {
	card, ok := s.Current()
	if !ok {
		return
	}
	pos, total := s.Progress()
	fmt.Fprintf(out, "\n[%d/%d] %s\n", pos, total, card.Front)
}
