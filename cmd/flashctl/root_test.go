package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flashdeck/flashdeck/internal/client"
	"github.com/flashdeck/flashdeck/internal/model"
)

func runCLI(t *testing.T, api *MockAPI, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FLASHDECK_TOKEN", "")

	var out bytes.Buffer
	cmd := newRootCmd(bytes.NewReader(nil), &out, func(string, string) apiClient { return api })
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_RequiresToken(t *testing.T) {
	_, err := runCLI(t, new(MockAPI), "decks", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session token is required")
}

func TestCLI_DecksList(t *testing.T) {
	api := new(MockAPI)
	api.On("ListDecks", mock.Anything).Return([]*model.Deck{
		{ID: "d1", Name: "Biology", CardCount: 3, UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}, nil)

	out, err := runCLI(t, api, "--token", "tok", "decks", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Biology")
	assert.Contains(t, out, "2024-03-01 12:00")
}

func TestCLI_DecksCreateWithDescription(t *testing.T) {
	desc := "cells"
	api := new(MockAPI)
	api.On("CreateDeck", mock.Anything, client.DeckInput{Name: "Biology", Description: &desc}).
		Return(&model.Deck{ID: "d1", Name: "Biology"}, nil)

	out, err := runCLI(t, api, "--token", "tok", "decks", "create", "Biology", "--description", "cells")
	require.NoError(t, err)

	assert.Contains(t, out, "Created deck Biology (d1)")
	api.AssertExpectations(t)
}

func TestCLI_CardsAdd(t *testing.T) {
	api := new(MockAPI)
	api.On("CreateCard", mock.Anything, "d1", client.CardInput{Front: "Q", Back: "A", Difficulty: "hard"}).
		Return(&model.FlashCard{ID: "c1", Difficulty: model.DifficultyHard}, nil)

	out, err := runCLI(t, api, "--token", "tok", "cards", "add", "d1", "Q", "A", "--difficulty", "hard")
	require.NoError(t, err)

	assert.Contains(t, out, "Added card c1 (hard)")
}

func TestCLI_SurfacesAPIError(t *testing.T) {
	api := new(MockAPI)
	api.On("DeleteDeck", mock.Anything, "missing").Return(&client.APIError{StatusCode: 404, Message: "Deck not found"})

	_, err := runCLI(t, api, "--token", "tok", "decks", "delete", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Deck not found")
}
