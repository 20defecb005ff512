package command

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseNonCommand(t *testing.T) {
	cases := []string{
		"hello there",
		"",
		"*",
		"*   ",
		"balance without prefix",
	}
	for _, line := range cases {
		inv, err := Parse(line, "*")
		if err != nil {
			t.Fatalf("line %q: unexpected error: %v", line, err)
		}
		if inv != nil {
			t.Fatalf("line %q: expected nil invocation, got %+v", line, inv)
		}
	}
}

func TestParseSimple(t *testing.T) {
	inv, err := Parse("*send alice 100", "*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Name != "send" {
		t.Fatalf("name: got %q want %q", inv.Name, "send")
	}
	if !reflect.DeepEqual(inv.Args, []string{"alice", "100"}) {
		t.Fatalf("args: got %v", inv.Args)
	}
}

func TestParseCaseFoldsName(t *testing.T) {
	inv, err := Parse("*BaLaNcE", "*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Name != "balance" {
		t.Fatalf("got %q want lowercase name", inv.Name)
	}
}

func TestParseQuotedArgs(t *testing.T) {
	inv, err := Parse(`*give "alice smith" 50`, "*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(inv.Args, []string{"alice smith", "50"}) {
		t.Fatalf("args: got %v", inv.Args)
	}
}

func TestParseEmptyQuotedArg(t *testing.T) {
	inv, err := Parse(`*echo ""`, "*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(inv.Args, []string{""}) {
		t.Fatalf("args: got %v (len %d)", inv.Args, len(inv.Args))
	}
}

func TestParseEscapes(t *testing.T) {
	inv, err := Parse(`*say hello\ world \"quoted\"`, "*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(inv.Args, []string{"hello world", `"quoted"`}) {
		t.Fatalf("args: got %v", inv.Args)
	}
}

func TestParseMultiCharPrefix(t *testing.T) {
	inv, err := Parse("!!ping", "!!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv == nil || inv.Name != "ping" {
		t.Fatalf("got %+v", inv)
	}
	if inv, _ := Parse("!ping", "!!"); inv != nil {
		t.Fatalf("partial prefix should not match, got %+v", inv)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(`*send "alice`, "*"); !errors.Is(err, ErrUnterminatedQuote) {
		t.Fatalf("expected ErrUnterminatedQuote, got %v", err)
	}
	if _, err := Parse(`*send alice\`, "*"); !errors.Is(err, ErrDanglingEscape) {
		t.Fatalf("expected ErrDanglingEscape, got %v", err)
	}
}

func TestParseCollapsesWhitespace(t *testing.T) {
	inv, err := Parse("*send   alice    100", "*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(inv.Args, []string{"alice", "100"}) {
		t.Fatalf("args: got %v", inv.Args)
	}
}
