package services

import "testing"

func TestEventLedgerMarkAndSeen(t *testing.T) {
	ledger := NewEventLedger(setupTestDB(t))

	seen, err := ledger.Seen("ev_1")
	if err != nil {
		t.Fatalf("seen: %v", err)
	}
	if seen {
		t.Fatal("unmarked event reported as seen")
	}

	inserted, err := ledger.Mark("ev_1")
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !inserted {
		t.Fatal("first mark should insert")
	}

	seen, err = ledger.Seen("ev_1")
	if err != nil {
		t.Fatalf("seen after mark: %v", err)
	}
	if !seen {
		t.Fatal("marked event not reported as seen")
	}
}

func TestEventLedgerMarkIdempotent(t *testing.T) {
	ledger := NewEventLedger(setupTestDB(t))

	if _, err := ledger.Mark("ev_2"); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	inserted, err := ledger.Mark("ev_2")
	if err != nil {
		t.Fatalf("second mark must not error: %v", err)
	}
	if inserted {
		t.Fatal("second mark reported as first insert")
	}
}

func TestEventLedgerEmptyID(t *testing.T) {
	ledger := NewEventLedger(setupTestDB(t))

	inserted, err := ledger.Mark("")
	if err != nil || inserted {
		t.Fatalf("empty id mark must no-op (inserted=%t err=%v)", inserted, err)
	}
	seen, err := ledger.Seen("")
	if err != nil || seen {
		t.Fatalf("empty id must never be seen (seen=%t err=%v)", seen, err)
	}
}
