package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/sidneifjr/ignite-timer/internal/domain"
)

// Form field keys, as reported in FieldErrors.
const (
	FieldTask          = "task"
	FieldMinutesAmount = "minutesAmount"
)

// Bounds a policy may be configured within.
const (
	PolicyFloorMinutes   = 1
	PolicyCeilingMinutes = 60
)

// Policy bounds the duration a form will accept.
type Policy struct {
	MinMinutes int
	MaxMinutes int
}

// DefaultPolicy accepts cycles of 5 to 60 minutes.
var DefaultPolicy = Policy{MinMinutes: 5, MaxMinutes: 60}

// Normalize clamps p into [PolicyFloorMinutes, PolicyCeilingMinutes] and
// falls back to DefaultPolicy when the bounds are inverted.
func (p Policy) Normalize() Policy {
	if p.MinMinutes < PolicyFloorMinutes {
		p.MinMinutes = PolicyFloorMinutes
	}
	if p.MaxMinutes <= 0 || p.MaxMinutes > PolicyCeilingMinutes {
		p.MaxMinutes = PolicyCeilingMinutes
	}
	if p.MinMinutes > p.MaxMinutes {
		return DefaultPolicy
	}
	return p
}

// RawCycleInput is the untrusted text typed into the form.
type RawCycleInput struct {
	Task          string
	MinutesAmount string
}

// CyclePayload is validated, normalized form input.
type CyclePayload struct {
	Task          string
	MinutesAmount int
}

// FieldErrors maps a field key to a user-facing message.
type FieldErrors map[string]string

// ValidationError is returned by Submit when the input is rejected.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid cycle input: " + strings.Join(parts, "; ")
}

// cycleCreator is what the intake needs from the store.
type cycleCreator interface {
	CreateCycle(task string, minutesAmount int) (string, error)
	Cycles() []domain.Cycle
}

// TaskMatcher finds task names from the run's history.
type TaskMatcher interface {
	MatchTasks(ctx context.Context, query string, limit int) ([]string, error)
}

// FormIntake validates raw form input and turns it into cycles.
type FormIntake struct {
	store   cycleCreator
	policy  Policy
	matcher TaskMatcher
}

// NewFormIntake creates an intake for store. A nil matcher makes
// Suggestions search the store's own history.
func NewFormIntake(store cycleCreator, policy Policy, matcher TaskMatcher) *FormIntake {
	return &FormIntake{
		store:   store,
		policy:  policy.Normalize(),
		matcher: matcher,
	}
}

// Policy returns the duration bounds in effect.
func (f *FormIntake) Policy() Policy {
	return f.policy
}

// Validate checks raw input. On success the error map is nil.
func (f *FormIntake) Validate(raw RawCycleInput) (CyclePayload, FieldErrors) {
	errs := FieldErrors{}
	payload := CyclePayload{Task: strings.TrimSpace(raw.Task)}

	if payload.Task == "" {
		errs[FieldTask] = "Enter a task"
	}

	minutes := strings.TrimSpace(raw.MinutesAmount)
	switch n, err := strconv.Atoi(minutes); {
	case minutes == "":
		errs[FieldMinutesAmount] = "Enter the duration in minutes"
	case err != nil:
		errs[FieldMinutesAmount] = "Duration must be a whole number of minutes"
	case n < f.policy.MinMinutes:
		errs[FieldMinutesAmount] = fmt.Sprintf("The cycle must be at least %d minutes", f.policy.MinMinutes)
	case n > f.policy.MaxMinutes:
		errs[FieldMinutesAmount] = fmt.Sprintf("The cycle must be at most %d minutes", f.policy.MaxMinutes)
	default:
		payload.MinutesAmount = n
	}

	if len(errs) > 0 {
		return CyclePayload{}, errs
	}
	return payload, nil
}

// Submit validates raw and creates a cycle from it. Input errors, and a
// cycle already running, come back as a *ValidationError.
func (f *FormIntake) Submit(raw RawCycleInput) (string, error) {
	payload, errs := f.Validate(raw)
	if errs != nil {
		return "", &ValidationError{Fields: errs}
	}

	id, err := f.store.CreateCycle(payload.Task, payload.MinutesAmount)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, domain.ErrCycleAlreadyActive):
		return "", &ValidationError{Fields: FieldErrors{FieldTask: "A cycle is already running"}}
	default:
		return "", fmt.Errorf("failed to create cycle: %w", err)
	}
}

// Suggestions returns up to limit earlier task names that fuzzy-match
// prefix, best match first.
func (f *FormIntake) Suggestions(ctx context.Context, prefix string, limit int) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || limit <= 0 {
		return nil, nil
	}
	if f.matcher != nil {
		tasks, err := f.matcher.MatchTasks(ctx, prefix, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to match tasks: %w", err)
		}
		return tasks, nil
	}
	return matchHistory(f.store.Cycles(), prefix, limit), nil
}

// matchHistory fuzzy-matches the distinct tasks of cycles, newest first
// on ties.
func matchHistory(cycles []domain.Cycle, query string, limit int) []string {
	seen := make(map[string]bool)
	var tasks []string
	for i := len(cycles) - 1; i >= 0; i-- {
		t := cycles[i].Task
		if !seen[strings.ToLower(t)] {
			seen[strings.ToLower(t)] = true
			tasks = append(tasks, t)
		}
	}

	matches := fuzzy.Find(query, tasks)
	out := make([]string, 0, limit)
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

// Form is the editable state behind the new-cycle form.
type Form struct {
	Task          string
	MinutesAmount string
	Errors        FieldErrors

	intake *FormIntake
}

// NewForm creates an empty form bound to intake.
func NewForm(intake *FormIntake) *Form {
	return &Form{intake: intake}
}

// Input returns the form's current values.
func (f *Form) Input() RawCycleInput {
	return RawCycleInput{Task: f.Task, MinutesAmount: f.MinutesAmount}
}

// Valid reports whether the current values would pass validation.
func (f *Form) Valid() bool {
	_, errs := f.intake.Validate(f.Input())
	return errs == nil
}

// Submit creates a cycle from the form. On success the form is reset; on
// a validation failure Errors holds the field messages and the values
// are kept.
func (f *Form) Submit() (string, error) {
	id, err := f.intake.Submit(f.Input())
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			f.Errors = verr.Fields
		}
		return "", err
	}
	f.Reset()
	return id, nil
}

// Reset clears the values and errors.
func (f *Form) Reset() {
	f.Task = ""
	f.MinutesAmount = ""
	f.Errors = nil
}
