package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// scriptedAsker answers prompts in order the way a terminal user would.
//
// Confirm takes a bool, Input and Select take a string and an error is returned as-is.
// An empty Input answer selects the prompt's default; running out of answers is an interrupt.
type scriptedAsker struct {
	t        *testing.T
	answers  []any
	messages []string
}

func newScriptedAsker(t *testing.T, answers ...any) *scriptedAsker {
	s := &scriptedAsker{t: t, answers: answers}
	t.Cleanup(func() {
		if len(s.answers) > 0 {
			t.Errorf("unused answers: %v", s.answers)
		}
	})
	return s
}

func (s *scriptedAsker) ask(p survey.Prompt, response any, _ ...survey.AskOpt) error {
	if len(s.answers) == 0 {
		return terminal.InterruptErr
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]

	if err, ok := answer.(error); ok {
		return err
	}

	switch p := p.(type) {
	case *survey.Confirm:
		s.messages = append(s.messages, p.Message)
		v, ok := answer.(bool)
		out, isBool := response.(*bool)
		if !ok || !isBool {
			return fmt.Errorf("confirm %q: answer %v into %T", p.Message, answer, response)
		}
		*out = v
	case *survey.Input:
		s.messages = append(s.messages, p.Message)
		v, ok := answer.(string)
		out, isString := response.(*string)
		if !ok || !isString {
			return fmt.Errorf("input %q: answer %v into %T", p.Message, answer, response)
		}
		if v == "" {
			v = p.Default
		}
		*out = v
	case *survey.Select:
		s.messages = append(s.messages, p.Message)
		v, ok := answer.(string)
		out, isString := response.(*string)
		if !ok || !isString || !slices.Contains(p.Options, v) {
			return fmt.Errorf("select %q: answer %v not in %v", p.Message, answer, p.Options)
		}
		*out = v
	default:
		return fmt.Errorf("unexpected prompt %T", p)
	}
	return nil
}

func TestPrompter(t *testing.T) {
	t.Run("Confirm", func(t *testing.T) {
		tc := []struct {
			name    string
			answer  any
			want    bool
			aborted bool
		}{
			{name: "yes", answer: true, want: true},
			{name: "no", answer: false, want: false},
			{name: "interrupt", answer: terminal.InterruptErr, aborted: true},
			{name: "end of input", answer: io.EOF, aborted: true},
		}

		for _, c := range tc {
			t.Run(c.name, func(t *testing.T) {
				asker := newScriptedAsker(t, c.answer)
				got, err := NewPrompter(asker.ask).Confirm("Continue?")
				if c.aborted {
					if !errors.Is(err, shared.ErrAborted) {
						t.Errorf("expected ErrAborted, got %v", err)
					}
					return
				}
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if got != c.want {
					t.Errorf("Confirm() = %v, want %v", got, c.want)
				}
				if len(asker.messages) != 1 || asker.messages[0] != "Continue?" {
					t.Errorf("expected question, got %v", asker.messages)
				}
			})
		}
	})

	t.Run("Confirm other errors are not aborts", func(t *testing.T) {
		asker := newScriptedAsker(t, errors.New("terminal gone"))
		_, err := NewPrompter(asker.ask).Confirm("Continue?")
		if err == nil || errors.Is(err, shared.ErrAborted) {
			t.Errorf("expected a read error, got %v", err)
		}
	})

	t.Run("Delay", func(t *testing.T) {
		tc := []struct {
			name   string
			answer string
			want   time.Duration
			ok     bool
		}{
			{name: "default", answer: "", want: shared.DefaultDelay, ok: true},
			{name: "seconds", answer: "0.5", want: 500 * time.Millisecond, ok: true},
			{name: "unparsable", answer: "soon", want: shared.DefaultDelay, ok: false},
			{name: "NaN", answer: "NaN", want: shared.DefaultDelay, ok: false},
		}

		for _, c := range tc {
			t.Run(c.name, func(t *testing.T) {
				asker := newScriptedAsker(t, c.answer)
				d, ok, err := NewPrompter(asker.ask).Delay(shared.DefaultDelay)
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if d != c.want || ok != c.ok {
					t.Errorf("Delay() = %v, %v; want %v, %v", d, ok, c.want, c.ok)
				}
			})
		}
	})

	t.Run("Operation", func(t *testing.T) {
		tc := []struct {
			answer string
			want   models.Operation
			ok     bool
		}{
			{answer: "add", want: models.OpAdd, ok: true},
			{answer: "delete", want: models.OpDelete, ok: true},
			{answer: exitChoice},
		}

		for _, c := range tc {
			t.Run(c.answer, func(t *testing.T) {
				asker := newScriptedAsker(t, c.answer)
				got, ok, err := NewPrompter(asker.ask).Operation()
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if got != c.want || ok != c.ok {
					t.Errorf("Operation() = %q, %v; want %q, %v", got, ok, c.want, c.ok)
				}
			})
		}
	})

	t.Run("Operation interrupted", func(t *testing.T) {
		asker := newScriptedAsker(t)
		if _, _, err := NewPrompter(asker.ask).Operation(); !errors.Is(err, shared.ErrAborted) {
			t.Errorf("expected ErrAborted, got %v", err)
		}
	})
}

func TestParseDelay(t *testing.T) {
	def := shared.DefaultDelay

	tc := []struct {
		input string
		want  time.Duration
		ok    bool
	}{
		{input: "", want: def, ok: true},
		{input: "  ", want: def, ok: true},
		{input: "0", want: 0, ok: true},
		{input: "1", want: time.Second, ok: true},
		{input: "0.25", want: 250 * time.Millisecond, ok: true},
		{input: "abc", want: def, ok: false},
		{input: "-1", want: def, ok: false},
		{input: "NaN", want: def, ok: false},
		{input: "inf", want: def, ok: false},
		{input: "-Inf", want: def, ok: false},
		{input: "1e10", want: def, ok: false},
		{input: "1e300", want: def, ok: false},
	}

	for _, c := range tc {
		t.Run(c.input, func(t *testing.T) {
			got, ok := ParseDelay(c.input, def)
			if got != c.want || ok != c.ok {
				t.Errorf("ParseDelay(%q) = %v, %v; want %v, %v", c.input, got, ok, c.want, c.ok)
			}
		})
	}
}
