package cmd

import (
	"strings"
	"testing"

	"github.com/sidneifjr/ignite-timer/internal/services"
)

func TestStartCmd(t *testing.T) {
	t.Run("start command structure", func(t *testing.T) {
		if startCmd.Use != "start" {
			t.Errorf("startCmd.Use = %q, want %q", startCmd.Use, "start")
		}
	})

	t.Run("start command flags", func(t *testing.T) {
		for name, short := range map[string]string{"task": "t", "minutes": "m"} {
			flag := startCmd.Flags().Lookup(name)
			if flag == nil {
				t.Fatalf("startCmd should have --%s flag", name)
			}
			if flag.Shorthand != short {
				t.Errorf("%s flag shorthand = %q, want %q", name, flag.Shorthand, short)
			}
		}
	})
}

func TestStartCmd_RejectsInvalidInput(t *testing.T) {
	path := isolate(t)
	t.Cleanup(func() {
		startTask = ""
		startMinutes = ""
	})

	_, _, err := executeCmd(rootCmd, "start", "--config", path, "-t", "", "-m", "90")
	if err == nil {
		t.Fatal("expected a validation error")
	}
	for _, want := range []string{"The cycle must be at most 60 minutes", "Enter a task"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should contain %q", err.Error(), want)
		}
	}
	_ = cleanupServices()
}

func TestFieldMessages(t *testing.T) {
	got := fieldMessages(services.FieldErrors{
		services.FieldTask:          "Enter a task",
		services.FieldMinutesAmount: "Enter the duration in minutes",
	})
	want := "Enter the duration in minutes; Enter a task"
	if got != want {
		t.Errorf("fieldMessages() = %q, want %q", got, want)
	}
}

func TestMinutesText(t *testing.T) {
	if got := minutesText(1); got != "1 minute" {
		t.Errorf("minutesText(1) = %q", got)
	}
	if got := minutesText(5); got != "5 minutes" {
		t.Errorf("minutesText(5) = %q", got)
	}
}
