package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Policy
		want Policy
	}{
		{"default", DefaultPolicy, Policy{5, 60}},
		{"zero", Policy{}, Policy{1, 60}},
		{"clamped", Policy{MinMinutes: -3, MaxMinutes: 90}, Policy{1, 60}},
		{"inverted", Policy{MinMinutes: 40, MaxMinutes: 10}, DefaultPolicy},
		{"custom", Policy{MinMinutes: 1, MaxMinutes: 30}, Policy{1, 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormIntake_Validate(t *testing.T) {
	intake := NewFormIntake(newTestStore(newFakeClock()), DefaultPolicy, nil)

	tests := []struct {
		name    string
		raw     RawCycleInput
		want    CyclePayload
		wantErr FieldErrors
	}{
		{
			name: "valid",
			raw:  RawCycleInput{Task: "  Write spec  ", MinutesAmount: " 25 "},
			want: CyclePayload{Task: "Write spec", MinutesAmount: 25},
		},
		{
			name: "bounds inclusive",
			raw:  RawCycleInput{Task: "t", MinutesAmount: "5"},
			want: CyclePayload{Task: "t", MinutesAmount: 5},
		},
		{
			name:    "empty task",
			raw:     RawCycleInput{Task: "   ", MinutesAmount: "25"},
			wantErr: FieldErrors{FieldTask: "Enter a task"},
		},
		{
			name:    "empty minutes",
			raw:     RawCycleInput{Task: "t"},
			wantErr: FieldErrors{FieldMinutesAmount: "Enter the duration in minutes"},
		},
		{
			name:    "not a number",
			raw:     RawCycleInput{Task: "t", MinutesAmount: "abc"},
			wantErr: FieldErrors{FieldMinutesAmount: "Duration must be a whole number of minutes"},
		},
		{
			name:    "fractional",
			raw:     RawCycleInput{Task: "t", MinutesAmount: "2.5"},
			wantErr: FieldErrors{FieldMinutesAmount: "Duration must be a whole number of minutes"},
		},
		{
			name:    "below minimum",
			raw:     RawCycleInput{Task: "t", MinutesAmount: "4"},
			wantErr: FieldErrors{FieldMinutesAmount: "The cycle must be at least 5 minutes"},
		},
		{
			name:    "above maximum",
			raw:     RawCycleInput{Task: "t", MinutesAmount: "61"},
			wantErr: FieldErrors{FieldMinutesAmount: "The cycle must be at most 60 minutes"},
		},
		{
			name: "both fields",
			raw:  RawCycleInput{},
			wantErr: FieldErrors{
				FieldTask:          "Enter a task",
				FieldMinutesAmount: "Enter the duration in minutes",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := intake.Validate(tt.raw)
			assert.Equal(t, tt.wantErr, errs)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormIntake_Submit(t *testing.T) {
	store := newTestStore(newFakeClock())
	intake := NewFormIntake(store, DefaultPolicy, nil)

	id, err := intake.Submit(RawCycleInput{Task: "Write spec", MinutesAmount: "25"})
	require.NoError(t, err)

	active, ok := store.ActiveCycle()
	require.True(t, ok)
	assert.Equal(t, id, active.ID)
	assert.Equal(t, 25, active.MinutesAmount)
}

func TestFormIntake_SubmitInvalidLeavesStoreUntouched(t *testing.T) {
	store := newTestStore(newFakeClock())
	intake := NewFormIntake(store, DefaultPolicy, nil)

	_, err := intake.Submit(RawCycleInput{Task: "", MinutesAmount: "90"})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)
	assert.Contains(t, err.Error(), "minutesAmount")
	assert.Empty(t, store.Cycles())
}

func TestFormIntake_SubmitWhileActive(t *testing.T) {
	store := newTestStore(newFakeClock())
	intake := NewFormIntake(store, DefaultPolicy, nil)

	first, err := intake.Submit(RawCycleInput{Task: "A", MinutesAmount: "25"})
	require.NoError(t, err)

	_, err = intake.Submit(RawCycleInput{Task: "B", MinutesAmount: "25"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, FieldTask)

	active, _ := store.ActiveCycle()
	assert.Equal(t, first, active.ID)
}

func TestFormIntake_CustomPolicy(t *testing.T) {
	intake := NewFormIntake(newTestStore(newFakeClock()), Policy{MinMinutes: 1, MaxMinutes: 30}, nil)

	_, errs := intake.Validate(RawCycleInput{Task: "t", MinutesAmount: "1"})
	assert.Nil(t, errs)

	_, errs = intake.Validate(RawCycleInput{Task: "t", MinutesAmount: "31"})
	assert.Equal(t, "The cycle must be at most 30 minutes", errs[FieldMinutesAmount])
}

type stubMatcher struct {
	query string
	out   []string
	err   error
}

func (m *stubMatcher) MatchTasks(_ context.Context, query string, _ int) ([]string, error) {
	m.query = query
	return m.out, m.err
}

func TestFormIntake_Suggestions(t *testing.T) {
	ctx := context.Background()

	t.Run("history fallback", func(t *testing.T) {
		store := newTestStore(newFakeClock())
		for _, task := range []string{"Write spec", "Review PR", "write SPEC"} {
			_, err := store.CreateCycle(task, 5)
			require.NoError(t, err)
			store.InterruptActiveCycle()
		}
		intake := NewFormIntake(store, DefaultPolicy, nil)

		got, err := intake.Suggestions(ctx, "wrt", 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"write SPEC"}, got, "case-insensitive duplicates collapse to newest")

		got, err = intake.Suggestions(ctx, "", 5)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("matcher", func(t *testing.T) {
		m := &stubMatcher{out: []string{"Write spec"}}
		intake := NewFormIntake(newTestStore(newFakeClock()), DefaultPolicy, m)

		got, err := intake.Suggestions(ctx, " wr ", 3)
		require.NoError(t, err)
		assert.Equal(t, "wr", m.query)
		assert.Equal(t, []string{"Write spec"}, got)
	})

	t.Run("matcher error", func(t *testing.T) {
		m := &stubMatcher{err: errors.New("boom")}
		intake := NewFormIntake(newTestStore(newFakeClock()), DefaultPolicy, m)

		_, err := intake.Suggestions(ctx, "wr", 3)
		assert.Error(t, err)
	})
}

func TestForm_Submit(t *testing.T) {
	store := newTestStore(newFakeClock())
	form := NewForm(NewFormIntake(store, DefaultPolicy, nil))

	form.Task = "Write spec"
	form.MinutesAmount = "3"
	assert.False(t, form.Valid())

	_, err := form.Submit()
	require.Error(t, err)
	assert.Equal(t, "The cycle must be at least 5 minutes", form.Errors[FieldMinutesAmount])
	assert.Equal(t, "Write spec", form.Task, "values kept on failure")

	form.MinutesAmount = "5"
	assert.True(t, form.Valid())
	id, err := form.Submit()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Empty(t, form.Task)
	assert.Empty(t, form.MinutesAmount)
	assert.Nil(t, form.Errors)
}
