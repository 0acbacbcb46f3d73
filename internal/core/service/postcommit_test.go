package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/anirudhm/vastra-checkout/internal/core/domain"
)

func snapshot() OrderSnapshot {
	return OrderSnapshot{
		OrderID:        7,
		OrderNumber:    "ord-7",
		UserID:         "user-1",
		Total:          2500,
		LoyaltyApplied: 50,
		Lines: []domain.OrderLine{
			{ProductID: "p1", Quantity: 1, UnitPrice: 2500},
		},
	}
}

func TestDispatch_EffectFailureDoesNotStopLaterEffects(t *testing.T) {
	journal := &opLog{}
	loyalty := newFakeLoyalty()
	loyalty.redeemErr = errors.New("ledger down")
	notifier := &fakeNotifier{}
	stock := newFakeStock(journal, map[string]int{"p1": 1})

	pc := NewPostCommit(loyalty, notifier, stock, zerolog.Nop(), true, 2)
	pc.Dispatch(context.Background(), snapshot())

	// Redemption failed, but accrual, confirmation and the sweep still ran.
	if loyalty.earned["user-1"] != 25 {
		t.Errorf("expected 25 points earned, got %d", loyalty.earned["user-1"])
	}
	if len(notifier.confirmed) != 1 {
		t.Errorf("expected 1 confirmation, got %d", len(notifier.confirmed))
	}
	if len(notifier.lowStock) != 1 {
		t.Errorf("expected low-stock alert, got %v", notifier.lowStock)
	}
}

func TestDispatch_LoyaltyDisabledSkipsAccrual(t *testing.T) {
	journal := &opLog{}
	loyalty := newFakeLoyalty()
	notifier := &fakeNotifier{}
	stock := newFakeStock(journal, map[string]int{"p1": 100})

	pc := NewPostCommit(loyalty, notifier, stock, zerolog.Nop(), false, 2)
	pc.Dispatch(context.Background(), snapshot())

	if loyalty.earned["user-1"] != 0 {
		t.Errorf("accrual must be skipped, got %d", loyalty.earned["user-1"])
	}
	if loyalty.redeemed["user-1"] != 50 {
		t.Errorf("applied points must still be redeemed, got %d", loyalty.redeemed["user-1"])
	}
	if len(notifier.lowStock) != 0 {
		t.Errorf("stock is plentiful, no alert expected, got %v", notifier.lowStock)
	}
}

func TestDispatch_NoPointsAppliedSkipsRedemption(t *testing.T) {
	journal := &opLog{}
	loyalty := newFakeLoyalty()
	notifier := &fakeNotifier{}
	stock := newFakeStock(journal, map[string]int{"p1": 100})

	s := snapshot()
	s.LoyaltyApplied = 0

	pc := NewPostCommit(loyalty, notifier, stock, zerolog.Nop(), true, 2)
	pc.Dispatch(context.Background(), s)

	if loyalty.redeemed["user-1"] != 0 {
		t.Errorf("no redemption expected, got %d", loyalty.redeemed["user-1"])
	}
}
