package stores

import (
	"testing"
	"time"
)

func TestSessionLifecycle(t *testing.T) {
	store := NewSessionsStore(time.Hour, nil)

	sess := store.NewSessionState("sess-1", "visitor-1")
	if sess.FiredThresholds == nil || sess.StartedForms == nil || sess.TrackedBookings == nil || sess.PromoStates == nil {
		t.Fatal("all dedup guards should be initialized")
	}

	store.SetSession(sess)

	got, found := store.GetSession("sess-1")
	if !found || got.VisitorID != "visitor-1" {
		t.Fatalf("GetSession = %+v, found = %v", got, found)
	}

	if _, found := store.GetSession("missing"); found {
		t.Fatal("unknown session should miss")
	}

	store.RemoveSession("sess-1")
	if _, found := store.GetSession("sess-1"); found {
		t.Fatal("removed session should miss")
	}
	if store.Count() != 0 {
		t.Fatalf("count = %d, want 0", store.Count())
	}
}

func TestExpiredSessionIsAMiss(t *testing.T) {
	store := NewSessionsStore(time.Hour, nil)

	sess := store.NewSessionState("sess-1", "visitor-1")
	store.SetSession(sess)
	sess.ExpiresAt = time.Now().UTC().Add(-time.Minute)

	if _, found := store.GetSession("sess-1"); found {
		t.Fatal("expired session should miss")
	}
	if store.Count() != 0 {
		t.Fatal("expired session should be removed on access")
	}
}

func TestCleanupExpired(t *testing.T) {
	store := NewSessionsStore(time.Hour, nil)

	live := store.NewSessionState("live", "visitor-1")
	store.SetSession(live)
	stale := store.NewSessionState("stale", "visitor-2")
	store.SetSession(stale)
	stale.ExpiresAt = time.Now().UTC().Add(-time.Minute)

	if removed := store.CleanupExpired(); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if store.Count() != 1 {
		t.Fatalf("count = %d, want 1", store.Count())
	}
	if sessions := store.GetSessionsByVisitor("visitor-2"); len(sessions) != 0 {
		t.Fatal("visitor index should be cleaned up too")
	}
}

func TestVisitorIndex(t *testing.T) {
	store := NewSessionsStore(time.Hour, nil)

	store.SetSession(store.NewSessionState("sess-1", "visitor-1"))
	store.SetSession(store.NewSessionState("sess-2", "visitor-1"))

	sessions := store.GetSessionsByVisitor("visitor-1")
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions for visitor, got %d", len(sessions))
	}
}
