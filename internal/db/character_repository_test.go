package db

import (
	"context"
	"testing"
)

func TestCharacterRepositoryCreateLoadPersist(t *testing.T) {
	pool := setupTestDB(t)
	accounts := NewAccountRepository(pool)
	characters := NewCharacterRepository(pool)
	ctx := context.Background()

	accID, err := accounts.Create(ctx, "tapper", "tapper@example.com", "hash")
	if err != nil {
		t.Fatalf("Create account: %v", err)
	}

	c, err := characters.Create(ctx, accID, "Tapper")
	if err != nil {
		t.Fatalf("Create character: %v", err)
	}
	if c.ID == 0 || c.Level != 1 || c.MaxHP != 100 {
		t.Fatalf("unexpected created row: %+v", c)
	}

	if err := characters.PersistTransform(ctx, c.ID, 10, 0, -5, 0x8000, 42); err != nil {
		t.Fatalf("PersistTransform: %v", err)
	}

	loaded, err := characters.LoadByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("LoadByID: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected character to exist")
	}
	if loaded.PositionX != 10 || loaded.PositionZ != -5 || loaded.Yaw != 0x8000 || loaded.HP != 42 {
		t.Fatalf("unexpected persisted row: %+v", loaded)
	}
}

func TestCharacterRepositoryListByAccountID(t *testing.T) {
	pool := setupTestDB(t)
	accounts := NewAccountRepository(pool)
	characters := NewCharacterRepository(pool)
	ctx := context.Background()

	accID, err := accounts.Create(ctx, "multi", "multi@example.com", "hash")
	if err != nil {
		t.Fatalf("Create account: %v", err)
	}
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		if _, err := characters.Create(ctx, accID, name); err != nil {
			t.Fatalf("Create character %q: %v", name, err)
		}
	}

	rows, err := characters.ListByAccountID(ctx, accID)
	if err != nil {
		t.Fatalf("ListByAccountID: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d characters, want 3", len(rows))
	}
}

func TestCharacterRepositoryGetIDByNameMissing(t *testing.T) {
	pool := setupTestDB(t)
	characters := NewCharacterRepository(pool)

	id, err := characters.GetIDByName(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("GetIDByName: %v", err)
	}
	if id != 0 {
		t.Fatalf("got id %d, want 0 for missing character", id)
	}
}

func TestCharacterRepositorySetGuild(t *testing.T) {
	pool := setupTestDB(t)
	accounts := NewAccountRepository(pool)
	characters := NewCharacterRepository(pool)
	guilds := NewGuildRepository(pool)
	ctx := context.Background()

	accID, err := accounts.Create(ctx, "guilded", "guilded@example.com", "hash")
	if err != nil {
		t.Fatalf("Create account: %v", err)
	}
	c, err := characters.Create(ctx, accID, "Guilded")
	if err != nil {
		t.Fatalf("Create character: %v", err)
	}
	g, err := guilds.Create(ctx, "Emberwatch")
	if err != nil {
		t.Fatalf("Create guild: %v", err)
	}

	if err := characters.SetGuild(ctx, c.ID, &g.ID); err != nil {
		t.Fatalf("SetGuild: %v", err)
	}

	loaded, err := characters.LoadByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("LoadByID: %v", err)
	}
	if loaded.GuildID == nil || *loaded.GuildID != g.ID {
		t.Fatalf("GuildID = %v, want %d", loaded.GuildID, g.ID)
	}

	if err := characters.SetGuild(ctx, c.ID, nil); err != nil {
		t.Fatalf("SetGuild(nil): %v", err)
	}
	loaded, err = characters.LoadByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("LoadByID: %v", err)
	}
	if loaded.GuildID != nil {
		t.Fatalf("GuildID = %v, want nil", loaded.GuildID)
	}
}
