// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package wizard models the profile-completion flow as an explicit finite
// state machine. The transition table is the single source of truth: a
// submit from any step but the last, or a next past a failing validator, is
// simply not a legal transition.
package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Step is a wizard state.
type Step string

// Wizard states. Submitted is terminal.
const (
	StepRole      Step = "role"
	StepContact   Step = "contact"
	StepAddress   Step = "address"
	StepSubmitted Step = "submitted"
)

// ErrInvalidTransition is returned for moves the transition table forbids.
var ErrInvalidTransition = errors.New("invalid wizard transition")

// ValidationError reports why a step's validator rejected the form data.
type ValidationError struct {
	Step   Step
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %s requires: %s", e.Step, strings.Join(e.Fields, ", "))
}

// Data holds everything the wizard collects across its steps. PhotoRef is a
// server-side handle to a staged upload, not the image bytes.
type Data struct {
	UserType string `json:"user_type"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Address  string `json:"address"`
	Pincode  string `json:"pincode"`
	PhotoRef string `json:"photo_ref,omitempty"`
}

// Wizard is the profile-completion state machine.
type Wizard struct {
	Step Step `json:"step"`
	Data Data `json:"data"`
}

// New starts a wizard at the role-selection step.
func New() *Wizard {
	return &Wizard{Step: StepRole}
}

// forward maps each step to its successor.
var forward = map[Step]Step{
	StepRole:    StepContact,
	StepContact: StepAddress,
}

// backward maps each step to its predecessor.
var backward = map[Step]Step{
	StepContact: StepRole,
	StepAddress: StepContact,
}

// validators gate forward movement out of each step.
var validators = map[Step]func(Data) []string{
	StepRole: func(d Data) []string {
		if d.UserType != "vendor" && d.UserType != "advertiser" {
			return []string{"role"}
		}
		return nil
	},
	StepContact: func(d Data) []string {
		var missing []string
		if strings.TrimSpace(d.Phone) == "" {
			missing = append(missing, "phone")
		}
		if strings.TrimSpace(d.Company) == "" {
			missing = append(missing, "company")
		}
		return missing
	},
	StepAddress: func(d Data) []string {
		var missing []string
		if strings.TrimSpace(d.Address) == "" {
			missing = append(missing, "address")
		}
		if strings.TrimSpace(d.Pincode) == "" {
			missing = append(missing, "pincode")
		}
		return missing
	},
}

// Validate runs the current step's validator against the collected data.
func (w *Wizard) Validate() error {
	validator, ok := validators[w.Step]
	if !ok {
		return nil
	}
	if missing := validator(w.Data); len(missing) > 0 {
		return &ValidationError{Step: w.Step, Fields: missing}
	}
	return nil
}

// Next advances to the following step. It is a no-op error when the current
// step's required fields are incomplete or the wizard is at the last step.
func (w *Wizard) Next() error {
	next, ok := forward[w.Step]
	if !ok {
		return ErrInvalidTransition
	}
	if err := w.Validate(); err != nil {
		return err
	}
	w.Step = next
	return nil
}

// Prev steps backward. Unconditional except at the first step, where it is a
// no-op error.
func (w *Wizard) Prev() error {
	prev, ok := backward[w.Step]
	if !ok {
		return ErrInvalidTransition
	}
	w.Step = prev
	return nil
}

// CanSubmit reports whether the terminal transition is available.
func (w *Wizard) CanSubmit() bool {
	return w.Step == StepAddress && w.Validate() == nil
}

// Submit moves to the terminal state. Only legal from the address step with
// its validator passing; on a backend failure the caller leaves the wizard
// where it is and surfaces the error instead.
func (w *Wizard) Submit() error {
	if w.Step != StepAddress {
		return ErrInvalidTransition
	}
	if err := w.Validate(); err != nil {
		return err
	}
	w.Step = StepSubmitted
	return nil
}

// StepNumber returns the 1-based position for progress display.
func (w *Wizard) StepNumber() int {
	switch w.Step {
	case StepRole:
		return 1
	case StepContact:
		return 2
	case StepAddress:
		return 3
	default:
		return 4
	}
}

// Encode serializes the wizard for session storage.
func (w *Wizard) Encode() (string, error) {
	b, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encoding wizard state: %w", err)
	}
	return string(b), nil
}

// Decode restores a wizard from its session representation. An empty or
// corrupt payload yields a fresh wizard rather than an error: losing wizard
// progress is recoverable, a broken onboarding page is not.
func Decode(s string) *Wizard {
	if s == "" {
		return New()
	}
	var w Wizard
	if err := json.Unmarshal([]byte(s), &w); err != nil {
		return New()
	}
	switch w.Step {
	case StepRole, StepContact, StepAddress, StepSubmitted:
		return &w
	default:
		return New()
	}
}
