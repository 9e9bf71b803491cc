package hearts

import (
	"testing"

	"hearts-lite/card"
)

func mustCard(t *testing.T, token string) card.Card {
	t.Helper()
	c, err := card.Parse(token)
	if err != nil {
		t.Fatalf("Parse(%q) err: %v", token, err)
	}
	return c
}

func playAll(t *testing.T, tr *Trick, tokens ...string) {
	t.Helper()
	for _, token := range tokens {
		if err := tr.AddCard(mustCard(t, token)); err != nil {
			t.Fatalf("AddCard(%s) err: %v", token, err)
		}
	}
}

func TestTrickWinnerFollowsLeadingSuit(t *testing.T) {
	tests := []struct {
		name   string
		start  Seat
		tokens []string
		taker  Seat
		taking string
	}{
		{
			name:   "highest of lead wins",
			start:  SeatNorth,
			tokens: []string{"5H", "AH", "2H", "KH"},
			taker:  SeatEast,
			taking: "AH",
		},
		{
			name:   "offsuit ace never wins",
			start:  SeatSouth,
			tokens: []string{"5C", "AS", "AD", "AH"},
			taker:  SeatSouth,
			taking: "5C",
		},
		{
			name:   "lead holds when nobody follows higher",
			start:  SeatWest,
			tokens: []string{"QD", "2D", "10S", "JD"},
			taker:  SeatWest,
			taking: "QD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTrick(tt.start, 1, RoundTricks)
			playAll(t, tr, tt.tokens...)
			if !tr.Complete() {
				t.Fatalf("trick not complete after 4 plays")
			}
			if tr.Taker() != tt.taker {
				t.Errorf("Taker = %s, want %s", tr.Taker(), tt.taker)
			}
			if tr.TakingCard() != mustCard(t, tt.taking) {
				t.Errorf("TakingCard = %s, want %s", tr.TakingCard(), tt.taking)
			}
			lead, ok := tr.LeadSuit()
			if !ok || lead != tr.TakingCard().Suit() {
				t.Errorf("winning card suit %s does not match lead %s", tr.TakingCard().Suit(), lead)
			}
		})
	}
}

func TestTrickRejectsFifthCard(t *testing.T) {
	tr := NewTrick(SeatNorth, 1, RoundTricks)
	playAll(t, tr, "2C", "3C", "4C", "5C")
	if err := tr.AddCard(mustCard(t, "6C")); err != ErrTrickComplete {
		t.Fatalf("fifth AddCard err = %v, want ErrTrickComplete", err)
	}
}

func TestTrickTurnOrderFromStartingSeat(t *testing.T) {
	tr := NewTrick(SeatWest, 3, RoundTricks)
	want := []Seat{SeatWest, SeatNorth, SeatEast, SeatSouth}
	for i, seat := range want {
		if tr.Current() != seat {
			t.Fatalf("play %d: Current = %s, want %s", i, tr.Current(), seat)
		}
		if err := tr.AddCard(card.Make(card.SuitClub, byte(2+i))); err != nil {
			t.Fatalf("AddCard err: %v", err)
		}
	}
}

// The same four cards scored under every round type: scoring(n) must
// equal the sum of rules 1..n, and type 7 must equal type 6's total.
func TestPointsCascade(t *testing.T) {
	// 10H (heart), QH (heart+queen), KH (king of hearts, +2 as king),
	// JS (jack). Trick number 7 triggers the rule-6 bonus.
	tokens := []string{"10H", "QH", "KH", "JS"}
	want := map[RoundType]int{
		RoundTricks:         1,
		RoundHearts:         1 + 3,
		RoundQueens:         1 + 3 + 5,
		RoundKingsJacks:     1 + 3 + 5 + 4,
		RoundKingOfHearts:   1 + 3 + 5 + 4 + 18,
		RoundSeventhAndLast: 1 + 3 + 5 + 4 + 18 + 10,
		RoundEverything:     1 + 3 + 5 + 4 + 18 + 10,
	}

	for typ, pts := range want {
		tr := NewTrick(SeatNorth, 7, typ)
		playAll(t, tr, tokens...)
		if got := tr.Points(); got != pts {
			t.Errorf("type %d: Points = %d, want %d", typ, got, pts)
		}
	}
}

func TestPointsQueenScoredOncePerTrick(t *testing.T) {
	tr := NewTrick(SeatNorth, 2, RoundQueens)
	playAll(t, tr, "QH", "5C", "QS", "2D")
	// 1 base + 1 heart + 5 for a queen present.
	if got := tr.Points(); got != 7 {
		t.Errorf("Points = %d, want 7", got)
	}
	if tr.Taker() != SeatNorth {
		t.Errorf("Taker = %s, want N (QH led hearts)", tr.Taker())
	}
}

func TestPointsSeventhAndLastOnlyOnTricks7And13(t *testing.T) {
	for _, n := range []int{1, 6, 8, 12} {
		tr := NewTrick(SeatNorth, n, RoundSeventhAndLast)
		playAll(t, tr, "2C", "3C", "4C", "5C")
		if got := tr.Points(); got != 1 {
			t.Errorf("trick %d: Points = %d, want 1", n, got)
		}
	}
	for _, n := range []int{7, 13} {
		tr := NewTrick(SeatNorth, n, RoundSeventhAndLast)
		playAll(t, tr, "2C", "3C", "4C", "5C")
		if got := tr.Points(); got != 11 {
			t.Errorf("trick %d: Points = %d, want 11", n, got)
		}
	}
}

func TestFollowsSuit(t *testing.T) {
	hand, err := card.NewHand(mustCard(t, "2H"), mustCard(t, "9C"))
	if err != nil {
		t.Fatalf("NewHand err: %v", err)
	}

	tr := NewTrick(SeatNorth, 5, RoundTricks)
	if !tr.FollowsSuit(mustCard(t, "9C"), hand) {
		t.Errorf("any card should lead an empty trick")
	}

	playAll(t, tr, "AH")
	if !tr.FollowsSuit(mustCard(t, "2H"), hand) {
		t.Errorf("matching the lead must be legal")
	}
	if tr.FollowsSuit(mustCard(t, "9C"), hand) {
		t.Errorf("offsuit play while holding the lead suit must be illegal")
	}

	clubsOnly, err := card.NewHand(mustCard(t, "9C"))
	if err != nil {
		t.Fatalf("NewHand err: %v", err)
	}
	if !tr.FollowsSuit(mustCard(t, "9C"), clubsOnly) {
		t.Errorf("void in the lead suit must allow any card")
	}
}
