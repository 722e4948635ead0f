package inapp

import (
	"context"
	"sync"
	"testing"
	"time"

	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/events"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	stored    []domain.Notification
	followUps []FollowUp
	today     time.Time
	read      map[uuid.UUID]bool
	allRead   int
}

func (f *fakeStore) Create(_ context.Context, n domain.Notification) (domain.Notification, error) {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now()
	f.stored = append(f.stored, n)
	return n, nil
}

func (f *fakeStore) ListUnread(_ context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range f.stored {
		if n.UserID == userID && !n.IsRead {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeStore) DueFollowUps(_ context.Context, _ uuid.UUID, today time.Time) ([]FollowUp, error) {
	f.today = today
	return f.followUps, nil
}

func (f *fakeStore) MarkRead(_ context.Context, _ uuid.UUID, id uuid.UUID) (bool, error) {
	if f.read == nil {
		return false, nil
	}
	_, ok := f.read[id]
	if ok {
		f.read[id] = true
	}
	return ok, nil
}

func (f *fakeStore) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	f.allRead++
	return 0, nil
}

var fixedNow = time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

func newTestService(store *fakeStore, bus events.Bus) *Service {
	s := NewService(store, bus, logger.NewNop())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestNotifyPersistsAndPublishes(t *testing.T) {
	bus := events.NewInMemoryBus(logger.NewNop())
	var mu sync.Mutex
	var got []events.NotificationCreated
	bus.Subscribe(events.NotificationCreated{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.(events.NotificationCreated))
		return nil
	}))

	store := &fakeStore{}
	svc := newTestService(store, bus)
	userID := uuid.New()
	leadID := uuid.New()

	n, err := svc.Notify(context.Background(), domain.Notification{
		UserID:  userID,
		Message: "You have been assigned new lead: Acme",
		LeadID:  &leadID,
		Type:    domain.NotificationAssignment,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	bus.Wait()

	if len(store.stored) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(store.stored))
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].NotificationID.String() != n.ID || got[0].UserID != userID || got[0].Type != "assignment" {
		t.Fatalf("expected event for stored notification, got %+v", got[0])
	}
}

func TestListAppendsDynamicFollowUps(t *testing.T) {
	userID := uuid.New()
	leadID := uuid.New()
	store := &fakeStore{
		stored: []domain.Notification{{ID: uuid.NewString(), UserID: userID, Message: "stored", Type: domain.NotificationSystem}},
		followUps: []FollowUp{{
			LeadID:  leadID,
			Company: "Acme",
			DueDate: time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC),
		}},
	}
	svc := newTestService(store, nil)

	items, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Message != "stored" || items[0].Dynamic {
		t.Fatalf("expected stored notification first, got %+v", items[0])
	}
	dyn := items[1]
	if dyn.ID != "dynamic_followup_"+leadID.String() {
		t.Fatalf("expected dynamic id, got %s", dyn.ID)
	}
	if dyn.Message != "Follow-up due for Acme" || dyn.NotificationType != "followup" || !dyn.Dynamic {
		t.Fatalf("expected follow-up reminder, got %+v", dyn)
	}
	if dyn.MetaData["due_date"] != "2024-05-09" {
		t.Fatalf("expected due_date 2024-05-09, got %v", dyn.MetaData["due_date"])
	}
	if !store.today.Equal(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected today to be truncated to the date, got %v", store.today)
	}
}

func TestMarkReadAcknowledgesDynamicIDs(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil)
	msg, err := svc.MarkRead(context.Background(), uuid.New(), "dynamic_followup_"+uuid.NewString())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if msg != "acknowledge" {
		t.Fatalf("expected acknowledge, got %q", msg)
	}
}

func TestMarkReadUnknownIsNotFound(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil)

	for _, id := range []string{"not-a-uuid", uuid.NewString()} {
		_, err := svc.MarkRead(context.Background(), uuid.New(), id)
		if !apperr.Is(err, apperr.KindNotFound) {
			t.Fatalf("expected not found for %q, got %v", id, err)
		}
	}
}

func TestMarkReadStored(t *testing.T) {
	id := uuid.New()
	store := &fakeStore{read: map[uuid.UUID]bool{id: false}}
	svc := newTestService(store, nil)

	msg, err := svc.MarkRead(context.Background(), uuid.New(), id.String())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if msg != "Marked as read" || !store.read[id] {
		t.Fatalf("expected notification marked read, got %q", msg)
	}
}

func TestMarkAllRead(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, nil)

	msg, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if msg != "All marked as read" || store.allRead != 1 {
		t.Fatalf("expected all marked read, got %q", msg)
	}
}
