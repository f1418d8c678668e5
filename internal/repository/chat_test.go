package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"station_chat/internal/domain"
	"station_chat/pkg/logger"
)

type fakeSessions map[uuid.UUID]domain.Session

func (f fakeSessions) SessionByID(id uuid.UUID) (domain.Session, bool) {
	s, ok := f[id]
	return s, ok
}

type recordingSubscriber struct {
	events []domain.RecordEvent
}

func (s *recordingSubscriber) OnRecordEvent(event domain.RecordEvent) {
	s.events = append(s.events, event)
}

func newTestRepo(t *testing.T, sessions ...domain.Session) (*chatRepository, *recordingSubscriber) {
	t.Helper()
	lookup := fakeSessions{}
	for _, s := range sessions {
		lookup[s.ID] = s
	}
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := newChatRepository(lookup, func() time.Time { return clock }, logger.Nop())
	sub := &recordingSubscriber{}
	repo.Subscribe(sub)
	return repo, sub
}

func addText(t *testing.T, repo ChatRepository, author uuid.UUID, text string) domain.RecordID {
	t.Helper()
	record := &domain.ChatRecord{AuthorSession: author, Kind: domain.KindVerbal, Channel: "Local", Text: text}
	if !repo.Add(record) {
		t.Fatalf("Add(%q) failed", text)
	}
	return record.ID
}

func TestAddAssignsMonotonicIDsWithoutReuse(t *testing.T) {
	alice := domain.Session{ID: uuid.New(), Name: "alice"}
	repo, _ := newTestRepo(t, alice)

	first := addText(t, repo, alice.ID, "one")
	second := addText(t, repo, alice.ID, "two")
	if first != 1 || second != 2 {
		t.Fatalf("ids = %d,%d want 1,2", first, second)
	}

	if !repo.Delete(second) {
		t.Fatal("Delete failed")
	}
	third := addText(t, repo, alice.ID, "three")
	if third != 3 {
		t.Fatalf("id after delete = %d, want 3", third)
	}
}

func TestAddSnapshotsAuthorAndNotifies(t *testing.T) {
	alice := domain.Session{ID: uuid.New(), Name: "alice"}
	repo, sub := newTestRepo(t, alice)

	id := addText(t, repo, alice.ID, "hello")

	// переименование после создания не влияет на запись
	repo.sessions.(fakeSessions)[alice.ID] = domain.Session{ID: alice.ID, Name: "renamed"}

	got, ok := repo.GetByID(id)
	if !ok || got.AuthorName != "alice" || got.Text != "hello" || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected record: %+v", got)
	}

	if len(sub.events) != 1 {
		t.Fatalf("events = %d, want 1", len(sub.events))
	}
	created, ok := sub.events[0].(domain.RecordCreated)
	if !ok || created.Record.ID != id {
		t.Fatalf("unexpected event %#v", sub.events[0])
	}
}

func TestAddFailsForMissingSessionWithoutMutation(t *testing.T) {
	repo, sub := newTestRepo(t)

	record := &domain.ChatRecord{AuthorSession: uuid.New(), Text: "ghost"}
	if repo.Add(record) {
		t.Fatal("Add must fail for unknown session")
	}
	if record.ID != domain.NoRecord || repo.Len() != 0 || len(sub.events) != 0 {
		t.Fatal("failed Add must not mutate state")
	}

	alice := domain.Session{ID: uuid.New(), Name: "alice"}
	repo.sessions.(fakeSessions)[alice.ID] = alice
	if id := addText(t, repo, alice.ID, "first"); id != 1 {
		t.Fatalf("failed Add consumed an id: got %d", id)
	}
}

func TestAddRejectsPreassignedID(t *testing.T) {
	alice := domain.Session{ID: uuid.New(), Name: "alice"}
	repo, _ := newTestRepo(t, alice)
	if repo.Add(&domain.ChatRecord{ID: 5, AuthorSession: alice.ID}) {
		t.Fatal("Add must refuse records that already carry an id")
	}
}

func TestGetByIDReturnsCopy(t *testing.T) {
	alice := domain.Session{ID: uuid.New(), Name: "alice"}
	repo, _ := newTestRepo(t, alice)
	id := addText(t, repo, alice.ID, "original")

	got, _ := repo.GetByID(id)
	got.Text = "mutated"

	again, _ := repo.GetByID(id)
	if again.Text != "original" {
		t.Fatalf("store mutated through copy: %q", again.Text)
	}
}

func TestPatchUpdatesTextAndNotifies(t *testing.T) {
	alice := domain.Session{ID: uuid.New(), Name: "alice"}
	repo, sub := newTestRepo(t, alice)
	id := addText(t, repo, alice.ID, "typo")

	if !repo.Patch(id, "fixed") {
		t.Fatal("Patch failed")
	}
	if repo.Patch(99, "nope") {
		t.Fatal("Patch of unknown id must fail")
	}

	got, _ := repo.GetByID(id)
	if got.Text != "fixed" || got.PatchedAt == nil {
		t.Fatalf("unexpected record after patch: %+v", got)
	}

	last := sub.events[len(sub.events)-1]
	if patched, ok := last.(domain.RecordPatched); !ok || patched.ID != id || patched.Text != "fixed" {
		t.Fatalf("unexpected event %#v", last)
	}
}

func TestDeleteKeepsIndicesConsistent(t *testing.T) {
	alice := domain.Session{ID: uuid.New(), Name: "alice"}
	repo, sub := newTestRepo(t, alice)
	a := addText(t, repo, alice.ID, "a")
	b := addText(t, repo, alice.ID, "b")

	if !repo.Delete(a) {
		t.Fatal("Delete failed")
	}
	if repo.Delete(a) {
		t.Fatal("second Delete must fail")
	}
	if _, ok := repo.GetByID(a); ok {
		t.Fatal("deleted record still resolves")
	}
	if ids := repo.IDsForUser(alice.ID); len(ids) != 1 || ids[0] != b {
		t.Fatalf("IDsForUser = %v, want [%d]", ids, b)
	}
	if _, ok := sub.events[len(sub.events)-1].(domain.RecordDeleted); !ok {
		t.Fatal("expected RecordDeleted event")
	}
}

func TestNukeForUserRemovesEverythingAndHidesAuthor(t *testing.T) {
	alice := domain.Session{ID: uuid.New(), Name: "alice"}
	bob := domain.Session{ID: uuid.New(), Name: "bob"}
	repo, sub := newTestRepo(t, alice, bob)

	a1 := addText(t, repo, alice.ID, "a1")
	b1 := addText(t, repo, bob.ID, "b1")
	a2 := addText(t, repo, alice.ID, "a2")

	if !repo.NukeForUser(alice.ID) {
		t.Fatal("NukeForUser failed")
	}

	for _, id := range []domain.RecordID{a1, a2} {
		if _, ok := repo.GetByID(id); ok {
			t.Fatalf("record %d survived nuke", id)
		}
	}
	if _, ok := repo.GetByID(b1); !ok {
		t.Fatal("bystander record was removed")
	}
	if ids := repo.IDsForUser(alice.ID); len(ids) != 0 {
		t.Fatalf("secondary index not cleared: %v", ids)
	}

	nuked, ok := sub.events[len(sub.events)-1].(domain.RecordsNuked)
	if !ok {
		t.Fatalf("expected RecordsNuked, got %#v", sub.events[len(sub.events)-1])
	}
	if len(nuked.IDs) != 2 || nuked.IDs[0] != a1 || nuked.IDs[1] != a2 {
		t.Fatalf("nuked ids = %v", nuked.IDs)
	}

	if repo.NukeForUser(alice.ID) {
		t.Fatal("nuking a user without records must return false")
	}
}

func TestRefreshResetsCounterAndStore(t *testing.T) {
	alice := domain.Session{ID: uuid.New(), Name: "alice"}
	repo, sub := newTestRepo(t, alice)
	old := []domain.RecordID{addText(t, repo, alice.ID, "x"), addText(t, repo, alice.ID, "y")}

	repo.Refresh()

	for _, id := range old {
		if _, ok := repo.GetByID(id); ok {
			t.Fatalf("record %d survived refresh", id)
		}
	}
	if repo.Len() != 0 || len(repo.IDsForUser(alice.ID)) != 0 {
		t.Fatal("refresh left state behind")
	}
	if _, ok := sub.events[len(sub.events)-1].(domain.RepositoryRefreshed); !ok {
		t.Fatal("expected RepositoryRefreshed event")
	}
	if id := addText(t, repo, alice.ID, "new round"); id != 1 {
		t.Fatalf("first id after refresh = %d, want 1", id)
	}
}
