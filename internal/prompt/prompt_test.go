package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return New(strings.NewReader(input), &out), &out
}

func TestAskUsesDefaultOnEmptyAnswer(t *testing.T) {
	p, out := newTestPrompter("\n")
	got, err := p.Ask("S3 region", "ams3", nil)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != "ams3" {
		t.Fatalf("got %q, want default", got)
	}
	if !strings.Contains(out.String(), "S3 region (ams3): ") {
		t.Fatalf("default not shown: %q", out.String())
	}
}

func TestAskRepeatsUntilValid(t *testing.T) {
	p, out := newTestPrompter("\nbad\n  good  \n")
	got, err := p.Ask("Bucket", "", func(s string) error {
		if s == "bad" {
			return errors.New("bucket rejected")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != "good" {
		t.Fatalf("got %q", got)
	}
	if strings.Count(out.String(), "Bucket: ") != 3 {
		t.Fatalf("expected three prompts, got %q", out.String())
	}
	if !strings.Contains(out.String(), "bucket rejected") {
		t.Fatalf("validation message not shown")
	}
}

func TestAskWithoutInputOrDefault(t *testing.T) {
	p, _ := newTestPrompter("")
	if _, err := p.Ask("Bucket", "", nil); !errors.Is(err, ErrNoAnswer) {
		t.Fatalf("expected ErrNoAnswer, got %v", err)
	}
}

func TestAskAcceptsFinalLineWithoutNewline(t *testing.T) {
	p, _ := newTestPrompter("photos")
	got, err := p.Ask("Bucket", "", nil)
	if err != nil || got != "photos" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestSecretFallsBackToPlainInput(t *testing.T) {
	p, _ := newTestPrompter("hunter2\n")
	if p.Interactive() {
		t.Fatalf("string reader must not be interactive")
	}
	got, err := p.Secret("Key secret")
	if err != nil || got != "hunter2" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestConfirm(t *testing.T) {
	cases := []struct {
		input string
		def   bool
		want  bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"", true, true},
		{"maybe\ny\n", false, true},
	}
	for _, tc := range cases {
		p, _ := newTestPrompter(tc.input)
		got, err := p.Confirm("Continue?", tc.def)
		if err != nil {
			t.Fatalf("Confirm(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("Confirm(%q, %v) = %v, want %v", tc.input, tc.def, got, tc.want)
		}
	}
}
