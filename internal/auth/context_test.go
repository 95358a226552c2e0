package auth

import (
	"context"
	"testing"
)

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != nil {
		t.Fatal("expected no identity on empty context")
	}
	if UserIDFromContext(ctx) != "" {
		t.Fatal("expected empty user id on empty context")
	}

	ctx = ContextWithIdentity(ctx, &Identity{UserID: "u1", Email: "a@b.c"})
	if got := MustFromContext(ctx); got.Email != "a@b.c" {
		t.Fatalf("unexpected identity: %+v", got)
	}
	if UserIDFromContext(ctx) != "u1" {
		t.Fatal("user id not propagated")
	}
}

func TestMustFromContextPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic without identity")
		}
	}()
	MustFromContext(context.Background())
}
