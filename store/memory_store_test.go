package store

import (
	"errors"
	"testing"

	"pingpong-tournament-system/models"
)

func TestMemoryStorePlayerRoundTrip(t *testing.T) {
	s := NewMemoryStore()

	if _, ok := s.GetPlayer("p1"); ok {
		t.Fatal("empty store returned a player")
	}

	p := &models.Player{ID: "p1", Name: "alice", State: models.PlayerWaiting}
	if err := s.SavePlayer(p); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, ok := s.GetPlayer("p1")
	if !ok || got.Name != "alice" {
		t.Fatalf("get = %+v ok=%v", got, ok)
	}

	// The stored copy must not alias the caller's struct.
	p.Name = "mallory"
	got, _ = s.GetPlayer("p1")
	if got.Name != "alice" {
		t.Error("stored player aliased the caller's struct")
	}

	if err := s.DeletePlayer("p1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := s.GetPlayer("p1"); ok {
		t.Error("player still present after delete")
	}
}

func TestMemoryStoreListOrder(t *testing.T) {
	s := NewMemoryStore()
	for _, id := range []string{"c", "a", "b"} {
		if err := s.SavePlayer(&models.Player{ID: id}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	players, err := s.ListPlayers()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var ids []string
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	want := []string{"c", "a", "b"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("list order = %v, want insertion order %v", ids, want)
		}
	}
}

func TestMemoryStoreTransactCommit(t *testing.T) {
	s := NewMemoryStore()

	err := s.Transact(func(tx Store) error {
		if err := tx.SaveMatch(&models.Match{ID: "m1"}); err != nil {
			return err
		}
		return tx.SavePlayer(&models.Player{ID: "p1"})
	})
	if err != nil {
		t.Fatalf("transact failed: %v", err)
	}

	if _, ok := s.GetMatch("m1"); !ok {
		t.Error("committed match missing")
	}
	if _, ok := s.GetPlayer("p1"); !ok {
		t.Error("committed player missing")
	}
}

func TestMemoryStoreTransactRollback(t *testing.T) {
	s := NewMemoryStore()
	if err := s.SavePlayer(&models.Player{ID: "p1", Name: "alice"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	boom := errors.New("boom")
	err := s.Transact(func(tx Store) error {
		if err := tx.SaveMatch(&models.Match{ID: "m1"}); err != nil {
			return err
		}
		p, _ := tx.GetPlayer("p1")
		p.Name = "bob"
		if err := tx.SavePlayer(p); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("transact error = %v, want boom", err)
	}

	if _, ok := s.GetMatch("m1"); ok {
		t.Error("rolled-back match was committed")
	}
	if p, _ := s.GetPlayer("p1"); p.Name != "alice" {
		t.Errorf("rolled-back update leaked: name = %s", p.Name)
	}
}
