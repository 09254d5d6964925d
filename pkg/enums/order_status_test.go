package enums

import "testing"

func TestParseOrderStatusAliasesLegacyCompleted(t *testing.T) {
	status, err := ParseOrderStatus("completed")
	if err != nil {
		t.Fatalf("ParseOrderStatus: %v", err)
	}
	if status != OrderStatusDelivered {
		t.Fatalf("expected delivered got %s", status)
	}
	if !status.IsTerminal() {
		t.Fatalf("aliased status should stay terminal")
	}
}

func TestParseOrderStatusRejectsUnknown(t *testing.T) {
	if _, err := ParseOrderStatus("archived"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	if !OrderStatusPending.CanTransitionTo(OrderStatusProcessing) {
		t.Fatalf("pending should advance to processing")
	}
	if OrderStatusDelivered.CanTransitionTo(OrderStatusPending) {
		t.Fatalf("delivered is terminal")
	}
	if !OrderStatusShipped.CanTransitionTo(OrderStatusCancelled) {
		t.Fatalf("non-terminal states should allow cancellation")
	}
}
