package memstore

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/couchsync/session-service/internal/domain"
)

func TestConnectionRepository_RegisterAndJoin(t *testing.T) {
	repo := NewConnectionRepository()

	repo.Register("c1")
	c, ok := repo.Get("c1")
	if !ok {
		t.Fatalf("registered connection not found")
	}
	if c.RoomID != "" || c.Role != domain.RoleGuest {
		t.Fatalf("fresh connection should be roomless guest, got %+v", c)
	}

	if err := repo.Join("c1", "room42"); err != nil {
		t.Fatalf("join: %v", err)
	}
	c, _ = repo.Get("c1")
	if c.RoomID != "room42" {
		t.Fatalf("expected room42, got %q", c.RoomID)
	}

	members := repo.Members("room42")
	if len(members) != 1 || members[0] != "c1" {
		t.Fatalf("unexpected members: %v", members)
	}

	if err := repo.Join("ghost", "room42"); !errors.Is(err, domain.ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
}

func TestConnectionRepository_FirstJoinerBecomesHost(t *testing.T) {
	repo := NewConnectionRepository()
	repo.Register("c1")
	repo.Register("c2")
	_ = repo.Join("c1", "r")
	_ = repo.Join("c2", "r")

	if !repo.AssignHostIfUnset("r", "c1") {
		t.Fatalf("first assignment should grant host")
	}
	if repo.AssignHostIfUnset("r", "c2") {
		t.Fatalf("second assignment must not steal host")
	}

	host, ok := repo.HostOf("r")
	if !ok || host != "c1" {
		t.Fatalf("expected host c1, got %q (ok=%v)", host, ok)
	}
	c1, _ := repo.Get("c1")
	if c1.Role != domain.RoleHost {
		t.Fatalf("c1 role = %q, want host", c1.Role)
	}
	c2, _ := repo.Get("c2")
	if c2.Role != domain.RoleGuest {
		t.Fatalf("c2 role = %q, want guest", c2.Role)
	}
}

func TestConnectionRepository_ConcurrentHostAssignment(t *testing.T) {
	repo := NewConnectionRepository()

	const n = 32
	for i := 0; i < n; i++ {
		repo.Register(fmt.Sprintf("c%d", i))
	}

	var wg sync.WaitGroup
	granted := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = repo.Join(id, "fresh")
			if repo.AssignHostIfUnset("fresh", id) {
				granted <- id
			}
		}(fmt.Sprintf("c%d", i))
	}
	wg.Wait()
	close(granted)

	var winners []string
	for id := range granted {
		winners = append(winners, id)
	}
	if len(winners) != 1 {
		t.Fatalf("expected exactly one host, got %d: %v", len(winners), winners)
	}
	host, _ := repo.HostOf("fresh")
	if host != winners[0] {
		t.Fatalf("host slot %q does not match winner %q", host, winners[0])
	}
}

func TestConnectionRepository_UnregisterClearsHostWithoutReelection(t *testing.T) {
	repo := NewConnectionRepository()
	repo.Register("c1")
	repo.Register("c2")
	_ = repo.Join("c1", "r")
	_ = repo.Join("c2", "r")
	repo.AssignHostIfUnset("r", "c1")

	repo.Unregister("c1")

	if _, ok := repo.Get("c1"); ok {
		t.Fatalf("unregistered connection still present")
	}
	if _, ok := repo.HostOf("r"); ok {
		t.Fatalf("host slot should be empty after host disconnect")
	}
	members := repo.Members("r")
	if len(members) != 1 || members[0] != "c2" {
		t.Fatalf("unexpected members after unregister: %v", members)
	}

	// no re-election happened, so the next joiner can claim the slot
	repo.Register("c3")
	_ = repo.Join("c3", "r")
	if !repo.AssignHostIfUnset("r", "c3") {
		t.Fatalf("hostless room should grant host to the next joiner")
	}
}

func TestConnectionRepository_ReassignHost(t *testing.T) {
	repo := NewConnectionRepository()
	repo.Register("c1")
	repo.Register("c2")
	_ = repo.Join("c1", "r")
	_ = repo.Join("c2", "r")
	repo.AssignHostIfUnset("r", "c1")

	if err := repo.ReassignHost("r", "c2"); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	host, _ := repo.HostOf("r")
	if host != "c2" {
		t.Fatalf("expected host c2, got %q", host)
	}
	c1, _ := repo.Get("c1")
	if c1.Role != domain.RoleGuest {
		t.Fatalf("previous host should be demoted, got %q", c1.Role)
	}
}

func TestConnectionRepository_JoinSwitchesRooms(t *testing.T) {
	repo := NewConnectionRepository()
	repo.Register("c1")
	_ = repo.Join("c1", "a")
	repo.AssignHostIfUnset("a", "c1")

	_ = repo.Join("c1", "b")

	if members := repo.Members("a"); len(members) != 0 {
		t.Fatalf("old room still lists the connection: %v", members)
	}
	if _, ok := repo.HostOf("a"); ok {
		t.Fatalf("old room should lose its host on switch")
	}
	c, _ := repo.Get("c1")
	if c.RoomID != "b" || c.Role != domain.RoleGuest {
		t.Fatalf("switched connection should be a guest of b, got %+v", c)
	}
}
