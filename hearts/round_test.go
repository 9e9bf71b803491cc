package hearts

import (
	"strings"
	"testing"

	"hearts-lite/card"
)

// fullDeckHands splits the deck into four valid 13-card hand strings.
func fullDeckHands(t *testing.T) [NumSeats]string {
	t.Helper()
	ranks := []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
	suits := []string{"C", "D", "H", "S"}
	var hands [NumSeats]string
	for i, suit := range suits {
		var sb strings.Builder
		for _, r := range ranks {
			sb.WriteString(r)
			sb.WriteString(suit)
		}
		hands[i] = sb.String()
	}
	return hands
}

func TestDealValidate(t *testing.T) {
	d := Deal{Type: RoundHearts, Starting: SeatEast, Hands: fullDeckHands(t)}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate err: %v", err)
	}

	dup := d
	dup.Hands[1] = dup.Hands[0]
	if err := dup.Validate(); err == nil {
		t.Errorf("deal with duplicated hand accepted")
	}

	bad := d
	bad.Type = 9
	if err := bad.Validate(); err == nil {
		t.Errorf("round type 9 accepted")
	}
}

func TestMaxPointsTable(t *testing.T) {
	want := map[RoundType]int{1: 13, 2: 13, 3: 20, 4: 16, 5: 18, 6: 20, 7: 100}
	for typ, max := range want {
		if got := typ.MaxPoints(); got != max {
			t.Errorf("MaxPoints(%d) = %d, want %d", typ, got, max)
		}
	}
}

func TestRoundPointCeiling(t *testing.T) {
	r := NewRound(Deal{Type: RoundKingOfHearts, Starting: SeatNorth, Hands: fullDeckHands(t)})

	if got := r.AddPoints(SeatEast, 17); got != 17 {
		t.Fatalf("AddPoints = %d, want 17", got)
	}
	if r.CeilingReached() {
		t.Fatalf("ceiling reported at 17/18")
	}

	// A 19-point trick only has 1 point of headroom left.
	if got := r.AddPoints(SeatWest, 19); got != 1 {
		t.Fatalf("clamped AddPoints = %d, want 1", got)
	}
	if !r.CeilingReached() {
		t.Errorf("ceiling not reported at 18/18")
	}
	if r.DealtPoints() != r.Type().MaxPoints() {
		t.Errorf("DealtPoints = %d, want %d", r.DealtPoints(), r.Type().MaxPoints())
	}
	if !r.Finished() {
		t.Errorf("round not finished at ceiling")
	}
}

func TestRoundTrickLog(t *testing.T) {
	r := NewRound(Deal{Type: RoundTricks, Starting: SeatSouth, Hands: fullDeckHands(t)})
	if r.Finished() {
		t.Fatalf("fresh round reported finished")
	}

	for n := 1; n <= TricksPerRound; n++ {
		tr := NewTrick(SeatSouth, n, RoundTricks)
		for i := 0; i < NumSeats; i++ {
			if err := tr.AddCard(card.Make(card.SuitClub, byte(2+i))); err != nil {
				t.Fatalf("AddCard err: %v", err)
			}
		}
		r.LogTrick(tr)
		r.AddPoints(tr.Taker(), tr.Points())
	}

	log := r.CompletedTricks()
	if len(log) != TricksPerRound {
		t.Fatalf("log holds %d tricks, want %d", len(log), TricksPerRound)
	}
	for i, tr := range log {
		if tr.Number() != i+1 {
			t.Errorf("log[%d].Number = %d, want %d", i, tr.Number(), i+1)
		}
	}
	if !r.Finished() {
		t.Errorf("round not finished after 13 tricks")
	}
}
