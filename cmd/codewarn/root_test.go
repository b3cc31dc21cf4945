package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ritzau/codewarn/pkg/config"
	"github.com/ritzau/codewarn/pkg/model"
)

func TestReport_FailOn(t *testing.T) {
	color.NoColor = true
	result := &model.Result{
		Warnings: []model.Warning{{ID: "1", Category: model.CategoryLargeFile, Level: model.LevelWarning, Title: "Large file: a.ts"}},
		Stats:    model.Stats{TotalWarnings: 1, WarningsByLevel: map[model.Level]int{model.LevelWarning: 1}},
	}

	tests := []struct {
		failOn  string
		wantErr bool
	}{
		{"", false},
		{"error", false},
		{"warning", true},
		{"info", true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		cfg := &config.Config{Format: "text", FailOn: tt.failOn, Project: "."}
		err := report(&buf, cfg, result)
		if got := errors.Is(err, errFindings); got != tt.wantErr {
			t.Errorf("fail-on %q: Expected findings error %v, got %v", tt.failOn, tt.wantErr, err)
		}
		if !strings.Contains(buf.String(), "Large file: a.ts") {
			t.Errorf("fail-on %q: Expected report to be written before failing", tt.failOn)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"analyze", "watch"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Expected %s subcommand, got %v (err=%v)", name, cmd, err)
		}
	}
}
