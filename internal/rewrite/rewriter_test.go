package rewrite

import "testing"

func TestMarkdownImageUsesBaseName(t *testing.T) {
	got := MarkdownImage("./img/b.png", "https://cdn.example/b.png")
	want := "![b.png](https://cdn.example/b.png)"
	if got != want {
		t.Fatalf("MarkdownImage = %q, want %q", got, want)
	}
}

func TestReplaceAllTreatsMatchAsLiteral(t *testing.T) {
	text := "a ![[img/(1).png]] b ![[img/(1).png]] c"
	match := "![[img/(1).png]]"

	got := ReplaceAll(text, match, "X")
	if got != "a X b X c" {
		t.Fatalf("ReplaceAll = %q", got)
	}
}

func TestReplaceAllIdempotentRoundTrip(t *testing.T) {
	text := "before ![[a.png]] middle ![[a.png]] after"
	match := "![[a.png]]"
	replacement := "![a.png](https://cdn.example/a.png)"

	once := ReplaceAll(text, match, replacement)
	twice := ReplaceAll(once, match, replacement)
	if once != twice {
		t.Fatalf("expected idempotent rewrite, got %q then %q", once, twice)
	}
}

func TestReplaceOccurrenceTargetsSingleMatch(t *testing.T) {
	text := "x ![[a.png]] y ![[a.png]] z"
	match := "![[a.png]]"

	got := ReplaceOccurrence(text, match, "REPL", 0)
	if got != "x REPL y ![[a.png]] z" {
		t.Fatalf("index 0 rewrite = %q", got)
	}

	got = ReplaceOccurrence(text, match, "REPL", 1)
	if got != "x ![[a.png]] y REPL z" {
		t.Fatalf("index 1 rewrite = %q", got)
	}
}

func TestReplaceOccurrenceOutOfRange(t *testing.T) {
	text := "only ![[a.png]] here"
	if got := ReplaceOccurrence(text, "![[a.png]]", "X", 3); got != text {
		t.Fatalf("expected unchanged text, got %q", got)
	}
	if got := ReplaceOccurrence(text, "![[a.png]]", "X", -1); got != text {
		t.Fatalf("expected unchanged text for negative index, got %q", got)
	}
}

func TestCountOccurrences(t *testing.T) {
	text := "![[a.png]] and ![[a.png]] and ![[b.png]]"
	if n := CountOccurrences(text, "![[a.png]]"); n != 2 {
		t.Fatalf("CountOccurrences = %d, want 2", n)
	}
	if n := CountOccurrences(text, ""); n != 0 {
		t.Fatalf("empty match should count 0, got %d", n)
	}
}
