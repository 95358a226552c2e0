// Command issue-session-token provisions a user and prints a signed session
// token for local development, e2e tests and flashctl.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/flashdeck/flashdeck/internal/auth"
	"github.com/flashdeck/flashdeck/internal/model"
	"github.com/flashdeck/flashdeck/internal/repository"
)

type output struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		secret      = flag.String("secret", os.Getenv("SESSION_SECRET"), "session signing secret")
		issuer      = flag.String("issuer", envOr("SESSION_ISSUER", auth.DefaultIssuer), "session issuer")
		email       = flag.String("email", "dev@flashdeck.local", "user email")
		name        = flag.String("name", "", "display name")
		ttl         = flag.Duration("ttl", 24*time.Hour, "token lifetime")
		format      = flag.String("format", "plain", "output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fail("DATABASE_URL is required")
	}
	if *secret == "" {
		fail("SESSION_SECRET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fail("connect database: " + err.Error())
	}
	defer repo.Close()

	user := &model.User{
		ID:        ulid.Make().String(),
		Email:     strings.TrimSpace(*email),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if *name != "" {
		user.Name = name
	}
	user, err = repo.GetOrCreateUser(ctx, user)
	if err != nil {
		fail("provision user: " + err.Error())
	}

	token, err := auth.NewSessions(*secret, *issuer).Issue(user.Email, *name, *ttl)
	if err != nil {
		fail(err.Error())
	}

	out := output{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: time.Now().Add(*ttl).UTC(),
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fail("invalid format; use plain or json")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
