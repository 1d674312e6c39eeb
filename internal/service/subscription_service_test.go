package service

import (
	"context"
	"testing"
	"time"

	"app/internal/model"

	"github.com/rs/zerolog"
)

func newTestSubscriptionService(repo *fakeSubscriptionRepo, store *fakeUserStore) SubscriptionService {
	return NewSubscriptionService(repo, store, testPlans(), zerolog.Nop())
}

func proSnapshot() SubscriptionSnapshot {
	return SubscriptionSnapshot{
		SubscriptionID:   "sub_123",
		CustomerID:       "cus_123",
		PriceID:          "price_pro",
		Status:           "active",
		CurrentPeriodEnd: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestApplySnapshotActive(t *testing.T) {
	repo := &fakeSubscriptionRepo{}
	svc := newTestSubscriptionService(repo, newFakeUserStore())

	if err := svc.ApplySnapshot(context.Background(), "u1", proSnapshot()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.applied) != 1 {
		t.Fatalf("applied %d snapshots, want 1", len(repo.applied))
	}
	got := repo.applied[0]
	if got.Plan != model.PlanPro || got.BillingStatus != model.BillingActive {
		t.Fatalf("applied snapshot = %+v", got)
	}
	if got.StripeSubscriptionID != "sub_123" {
		t.Fatalf("subscription ID = %q", got.StripeSubscriptionID)
	}
}

func TestApplySnapshotReplayIsIdempotent(t *testing.T) {
	repo := &fakeSubscriptionRepo{}
	svc := newTestSubscriptionService(repo, newFakeUserStore())

	snap := proSnapshot()
	for i := 0; i < 3; i++ {
		if err := svc.ApplySnapshot(context.Background(), "u1", snap); err != nil {
			t.Fatalf("replay %d: %v", i, err)
		}
	}
	// Each write carries the full state, so replays converge on the same row.
	for i, got := range repo.applied {
		if got != repo.applied[0] {
			t.Fatalf("replay %d diverged: %+v vs %+v", i, got, repo.applied[0])
		}
	}
}

func TestApplySnapshotUnknownPriceNeverElevates(t *testing.T) {
	repo := &fakeSubscriptionRepo{}
	svc := newTestSubscriptionService(repo, newFakeUserStore())

	snap := proSnapshot()
	snap.PriceID = "price_unknown"
	if err := svc.ApplySnapshot(context.Background(), "u1", snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.applied) != 0 || repo.downgrades != 0 {
		t.Fatalf("unknown price mutated state: applied=%d downgrades=%d", len(repo.applied), repo.downgrades)
	}
}

func TestApplySnapshotUnknownStatusLeavesStateUntouched(t *testing.T) {
	repo := &fakeSubscriptionRepo{}
	svc := newTestSubscriptionService(repo, newFakeUserStore())

	snap := proSnapshot()
	snap.Status = "incomplete_expired_v2"
	if err := svc.ApplySnapshot(context.Background(), "u1", snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.applied) != 0 || repo.downgrades != 0 {
		t.Fatalf("unknown status mutated state: applied=%d downgrades=%d", len(repo.applied), repo.downgrades)
	}
}

func TestApplySnapshotPastDueRetainsAccess(t *testing.T) {
	repo := &fakeSubscriptionRepo{}
	svc := newTestSubscriptionService(repo, newFakeUserStore())

	snap := proSnapshot()
	snap.Status = "past_due"
	if err := svc.ApplySnapshot(context.Background(), "u1", snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.applied) != 1 {
		t.Fatalf("applied %d snapshots, want 1", len(repo.applied))
	}
	if got := repo.applied[0]; got.Plan != model.PlanPro || got.BillingStatus != model.BillingActive {
		t.Fatalf("past_due snapshot = %+v, want retained pro access", got)
	}
}

func TestApplySnapshotCanceledDowngrades(t *testing.T) {
	repo := &fakeSubscriptionRepo{}
	svc := newTestSubscriptionService(repo, newFakeUserStore())

	snap := proSnapshot()
	snap.Status = "canceled"
	if err := svc.ApplySnapshot(context.Background(), "u1", snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.downgrades != 1 {
		t.Fatalf("downgrades = %d, want 1", repo.downgrades)
	}
	if len(repo.applied) != 0 {
		t.Fatalf("canceled status also applied a snapshot: %+v", repo.applied)
	}
}

func TestApplySnapshotCancelAtPeriodEnd(t *testing.T) {
	repo := &fakeSubscriptionRepo{}
	svc := newTestSubscriptionService(repo, newFakeUserStore())

	snap := proSnapshot()
	snap.CancelAtPeriodEnd = true
	if err := svc.ApplySnapshot(context.Background(), "u1", snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := repo.applied[0]
	if got.BillingStatus != model.BillingCancelled {
		t.Fatalf("billing status = %q, want %q", got.BillingStatus, model.BillingCancelled)
	}
	if !got.CancelAtPeriodEnd {
		t.Fatal("cancel flag not carried")
	}
}

func TestLocalView(t *testing.T) {
	periodEnd := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	subID := "sub_123"
	store := newFakeUserStore(&model.User{
		UserID:               "u1",
		Plan:                 model.PlanPremium,
		BillingStatus:        model.BillingActive,
		StripeSubscriptionID: &subID,
		CurrentPeriodEnd:     &periodEnd,
	})
	svc := newTestSubscriptionService(&fakeSubscriptionRepo{}, store)

	view, gotSub, err := svc.LocalView(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Plan != model.PlanPremium || view.Status != model.BillingActive {
		t.Fatalf("view = %+v", view)
	}
	if gotSub == nil || *gotSub != subID {
		t.Fatalf("subscription ID = %v", gotSub)
	}

	if _, _, err := svc.LocalView(context.Background(), "ghost"); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
