package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// AskFunc asks a single question; [survey.AskOne] satisfies it.
type AskFunc func(p survey.Prompt, response any, opts ...survey.AskOpt) error

const exitChoice = "exit"

// Prompter asks the interactive questions of the transfer commands.
type Prompter struct {
	ask  AskFunc
	opts []survey.AskOpt
}

// NewPrompter creates a Prompter. A nil ask uses [survey.AskOne] on the terminal.
func NewPrompter(ask AskFunc, opts ...survey.AskOpt) *Prompter {
	if ask == nil {
		ask = survey.AskOne
	}
	return &Prompter{ask: ask, opts: opts}
}

func (p *Prompter) askOne(prompt survey.Prompt, response any) error {
	err := p.ask(prompt, response, p.opts...)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, terminal.InterruptErr), errors.Is(err, io.EOF):
		return fmt.Errorf("%w: %v", shared.ErrAborted, err)
	default:
		return fmt.Errorf("failed to read input: %w", err)
	}
}

// Confirm asks a yes/no question. An interrupted prompt aborts.
func (p *Prompter) Confirm(question string) (bool, error) {
	var ok bool
	if err := p.askOne(&survey.Confirm{Message: question}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Delay asks for the pause between adds in seconds.
//
// Empty input selects def. Input that is not a usable number of seconds also selects def; ok is false in that case.
func (p *Prompter) Delay(def time.Duration) (d time.Duration, ok bool, err error) {
	prompt := &survey.Input{
		Message: "Seconds to wait before adding another song:",
		Default: strconv.FormatFloat(def.Seconds(), 'f', -1, 64),
		Help:    "The longer the wait, the more likely your songs are added in the correct order.",
	}

	var answer string
	if err := p.askOne(prompt, &answer); err != nil {
		return 0, false, err
	}

	d, ok = ParseDelay(answer, def)
	return d, ok, nil
}

// ParseDelay converts seconds to a duration; see [Prompter.Delay].
func ParseDelay(s string, def time.Duration) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, true
	}

	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def, false
	}
	d, ok := shared.DurationFromSeconds(secs)
	if !ok {
		return def, false
	}
	return d, true
}

// Operation asks which replay to run. Choosing exit returns ok=false.
func (p *Prompter) Operation() (op models.Operation, ok bool, err error) {
	prompt := &survey.Select{
		Message: "Which operation should run on the destination account?",
		Options: []string{string(models.OpAdd), string(models.OpDelete), exitChoice},
		Description: func(value string, _ int) string {
			switch value {
			case string(models.OpAdd):
				return "add the source account's liked songs"
			case string(models.OpDelete):
				return "remove those songs"
			}
			return ""
		},
	}

	var answer string
	if err := p.askOne(prompt, &answer); err != nil {
		return "", false, err
	}

	op, err = models.ParseOperation(answer)
	if err != nil {
		return "", false, nil
	}
	return op, true, nil
}
