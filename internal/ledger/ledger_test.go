package ledger

import "testing"

func TestLedgerMarkAndSeen(t *testing.T) {
	t.Parallel()

	l := New()

	if l.Seen("a") {
		t.Fatalf("fresh ledger must not contain ids")
	}

	l.Mark("a")
	if !l.Seen("a") {
		t.Fatalf("marked id must be seen")
	}

	l.Mark("a")
	if l.Len() != 1 {
		t.Fatalf("re-marking must not grow the ledger, len=%d", l.Len())
	}
}

func TestLedgerIgnoresEmptyID(t *testing.T) {
	t.Parallel()

	l := New()
	l.Mark("")
	if l.Len() != 0 {
		t.Fatalf("empty id must not be recorded")
	}
}

func TestLedgerReset(t *testing.T) {
	t.Parallel()

	l := New()
	l.Mark("a")
	l.Mark("b")
	l.Reset()

	if l.Len() != 0 || l.Seen("a") {
		t.Fatalf("reset must clear the ledger")
	}
}
