package card

import "testing"

func TestParseRoundTrip(t *testing.T) {
	tokens := []string{"2C", "9D", "10H", "JS", "QH", "KC", "AD"}
	for _, token := range tokens {
		c, err := Parse(token)
		if err != nil {
			t.Fatalf("Parse(%q) err: %v", token, err)
		}
		if got := c.String(); got != token {
			t.Errorf("Parse(%q).String() = %q", token, got)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	bad := []string{"", "H", "1H", "11H", "10", "0C", "QX", "10HH extra", "2c"}
	for _, token := range bad {
		if _, err := Parse(token); err == nil {
			t.Errorf("Parse(%q) accepted", token)
		}
	}
}

func TestParseMany(t *testing.T) {
	cards, err := ParseMany("10HQS2D")
	if err != nil {
		t.Fatalf("ParseMany err: %v", err)
	}
	want := []Card{Make(SuitHeart, Rank10), Make(SuitSpade, RankQ), Make(SuitDiamond, 2)}
	if len(cards) != len(want) {
		t.Fatalf("got %d cards, want %d", len(cards), len(want))
	}
	for i := range want {
		if cards[i] != want[i] {
			t.Errorf("card %d = %s, want %s", i, cards[i], want[i])
		}
	}
}

func TestBeatsOnlyWithinSuit(t *testing.T) {
	ah := Make(SuitHeart, RankA)
	kh := Make(SuitHeart, RankK)
	as := Make(SuitSpade, RankA)

	if !ah.Beats(kh) {
		t.Errorf("AH should beat KH")
	}
	if kh.Beats(ah) {
		t.Errorf("KH should not beat AH")
	}
	if as.Beats(kh) || kh.Beats(as) {
		t.Errorf("cross-suit cards must never beat each other")
	}
}
