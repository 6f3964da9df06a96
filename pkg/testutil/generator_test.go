package testutil

import "testing"

func TestStarShape(t *testing.T) {
	d := NewDefault().Star(5)
	if len(d.Contacts) != 5 {
		t.Fatalf("expected 5 contacts, got %d", len(d.Contacts))
	}
	for _, c := range d.Contacts {
		if c.Degree != 1 {
			t.Errorf("contact %s has degree %d, want 1", c.ID, c.Degree)
		}
		if c.ParentID != "" {
			t.Errorf("contact %s has unexpected parent %s", c.ID, c.ParentID)
		}
	}
}

func TestNetworkLayers(t *testing.T) {
	d := NewDefault().Network(3, 6, 4)
	if len(d.Contacts) != 13 {
		t.Fatalf("expected 13 contacts, got %d", len(d.Contacts))
	}

	byDegree := make(map[int]int)
	byID := make(map[string]int)
	for _, c := range d.Contacts {
		byDegree[c.Degree]++
		byID[c.ID] = c.Degree
	}
	if byDegree[1] != 3 || byDegree[2] != 6 || byDegree[3] != 4 {
		t.Errorf("degree distribution %v, want 3/6/4", byDegree)
	}

	// Every deeper contact hangs off the level above it.
	for _, c := range d.Contacts {
		if c.Degree == 1 {
			continue
		}
		parentDeg, ok := byID[c.ParentID]
		if !ok {
			t.Errorf("contact %s parent %s missing", c.ID, c.ParentID)
			continue
		}
		if parentDeg != c.Degree-1 {
			t.Errorf("contact %s (degree %d) has degree-%d parent", c.ID, c.Degree, parentDeg)
		}
	}

	// One explicit relation per parented contact.
	if len(d.Relations) != 10 {
		t.Errorf("expected 10 relations, got %d", len(d.Relations))
	}
}

func TestNetworkDeterministic(t *testing.T) {
	a := New(GeneratorConfig{Seed: 7}).Network(2, 4, 0)
	b := New(GeneratorConfig{Seed: 7}).Network(2, 4, 0)
	for i := range a.Contacts {
		if a.Contacts[i] != b.Contacts[i] {
			t.Fatalf("same seed produced different contacts at %d: %v vs %v", i, a.Contacts[i], b.Contacts[i])
		}
	}
}

func TestMailbox(t *testing.T) {
	d := NewDefault().Mailbox(3, 0, 7)
	if len(d.Emails) != 10 {
		t.Fatalf("expected 10 emails, got %d", len(d.Emails))
	}
	cats := d.Categories()
	if len(cats) != 2 {
		t.Fatalf("expected 2 non-empty categories, got %d", len(cats))
	}
	// Sorted by descending count.
	if cats[0].ID != "cat2" || cats[0].Count != 7 {
		t.Errorf("top category %+v, want cat2 with 7", cats[0])
	}
	if got := len(d.EmailsInCategory("cat0")); got != 3 {
		t.Errorf("cat0 has %d messages, want 3", got)
	}
}
