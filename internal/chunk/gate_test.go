package chunk

import "testing"

func TestGate_Eligible(t *testing.T) {
	g := Gate{MinMatch: 2}
	if g.Eligible(1) {
		t.Error("Expected 1 hit to be rejected")
	}
	if !g.Eligible(2) {
		t.Error("Expected 2 hits to pass")
	}
}

func TestGate_CollectPreservesOrderAndCaps(t *testing.T) {
	kws := []string{"paris", "tower", "eiffel"}
	sources := []Source{
		{URL: "https://a.com/1", Domain: "a.com", Chunks: []string{
			"paris tower",        // 2
			"paris only",         // 1
			"eiffel tower paris", // 3
		}},
		{URL: "https://b.com/1", Domain: "b.com", Chunks: []string{
			"tower in paris", // 2
		}},
	}

	g := Gate{MinMatch: 2, MaxTotal: 2}
	got, dropped := g.Collect(sources, kws)

	if len(got) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(got))
	}
	if dropped != 1 {
		t.Errorf("Expected 1 dropped candidate, got %d", dropped)
	}
	if got[0].Text != "paris tower" || got[1].Text != "eiffel tower paris" {
		t.Errorf("Expected source then chunk order, got %q, %q", got[0].Text, got[1].Text)
	}
	if got[1].Hits != 3 || got[1].Domain != "a.com" {
		t.Errorf("Unexpected candidate: %+v", got[1])
	}
}

func TestGate_NegativeCapDisablesTruncation(t *testing.T) {
	sources := []Source{{URL: "u", Domain: "d", Chunks: []string{"paris", "paris", "paris"}}}

	got, dropped := Gate{MinMatch: 1, MaxTotal: -1}.Collect(sources, []string{"paris"})
	if len(got) != 3 || dropped != 0 {
		t.Errorf("Expected 3 candidates and none dropped, got %d/%d", len(got), dropped)
	}

	got, dropped = Gate{MinMatch: 1, MaxTotal: 0}.Collect(sources, []string{"paris"})
	if len(got) != 0 || dropped != 3 {
		t.Errorf("Expected zero cap to drop all, got %d/%d", len(got), dropped)
	}
}
