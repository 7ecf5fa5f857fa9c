package text

import (
	"reflect"
	"testing"
)

func TestTokenizeCaseAndPunctuation(t *testing.T) {
	a := Tokenize("Wait!")
	b := Tokenize("wait")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical tokens, got %v vs %v", a, b)
	}
	if len(a) != 1 || a[0] != "wait" {
		t.Fatalf("expected [wait], got %v", a)
	}
}

func TestTokenizeOrderPreserved(t *testing.T) {
	got := Tokenize("Umm, okay... STOP")
	want := []string{"umm", "okay", "stop"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestTokenizePunctuationOnly(t *testing.T) {
	if got := Tokenize("?! ... --"); len(got) != 0 {
		t.Fatalf("expected empty tokens, got %v", got)
	}
	if got := Tokenize("   "); len(got) != 0 {
		t.Fatalf("expected empty tokens for whitespace, got %v", got)
	}
	if got := Tokenize(""); len(got) != 0 {
		t.Fatalf("expected empty tokens for empty transcript, got %v", got)
	}
}

func TestNormalizeWordCompounds(t *testing.T) {
	// Hyphenated fillers collapse the same way in word lists and transcripts.
	if got := NormalizeWord("uh-huh"); got != "uhhuh" {
		t.Fatalf("expected uhhuh, got %q", got)
	}
	if got := NormalizeWord("Mm-Hmm!"); got != "mmhmm" {
		t.Fatalf("expected mmhmm, got %q", got)
	}
}
