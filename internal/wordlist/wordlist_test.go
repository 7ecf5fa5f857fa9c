package wordlist

import "testing"

func TestNewNormalizesEntries(t *testing.T) {
	s := New([]string{"Uh-Huh", "STOP", "  ", "?!"})
	if s.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", s.Len())
	}
	if !s.Contains("uhhuh") || !s.Contains("stop") {
		t.Fatalf("expected normalized members present")
	}
}

func TestExactMatchOnly(t *testing.T) {
	s := New([]string{"stop"})
	if s.Contains("stopping") {
		t.Fatalf("substring match must not count")
	}
	if !s.Contains("stop") {
		t.Fatalf("exact match must count")
	}
}

func TestContainsAnyAll(t *testing.T) {
	s := New([]string{"uh", "umm"})
	if !s.ContainsAny([]string{"okay", "uh"}) {
		t.Fatalf("expected any-match")
	}
	if s.ContainsAny([]string{"okay", "so"}) {
		t.Fatalf("unexpected any-match")
	}
	if !s.ContainsAll([]string{"uh", "umm"}) {
		t.Fatalf("expected all-match")
	}
	if s.ContainsAll([]string{"uh", "okay"}) {
		t.Fatalf("unexpected all-match")
	}
	if !s.ContainsAll(nil) {
		t.Fatalf("all-match is vacuously true for no tokens")
	}
}
