package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ritzau/codewarn/pkg/model"
)

func init() {
	color.NoColor = true
}

func sampleResult() *model.Result {
	return &model.Result{
		Warnings: []model.Warning{
			{
				ID:            "1",
				Category:      model.CategoryLargeFile,
				Level:         model.LevelInfo,
				Title:         "Large file: big.ts",
				Description:   "src/big.ts has 600 lines",
				AffectedNodes: []string{"src/big.ts"},
				Suggestion:    model.Suggestion{Summary: "Split the file"},
			},
			{
				ID:            "2",
				Category:      model.CategoryCircularDependency,
				Level:         model.LevelWarning,
				Title:         "Circular dependency: a.ts → b.ts",
				AffectedNodes: []string{"a", "b"},
			},
		},
		Stats: model.Stats{
			TotalWarnings: 2,
			WarningsByLevel: map[model.Level]int{
				model.LevelInfo:    1,
				model.LevelWarning: 1,
				model.LevelError:   0,
			},
		},
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, "/repo", sampleResult())
	out := buf.String()

	for _, want := range []string{
		"Project: /repo",
		"CIRCULAR DEPENDENCIES (1)",
		"  [WARNING] Circular dependency: a.ts → b.ts",
		"LARGE FILES (1)",
		"    Suggestion: Split the file",
		"Summary: 2 warning(s) (1 info, 1 warning, 0 error)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, out)
		}
	}

	if strings.Index(out, "CIRCULAR") > strings.Index(out, "LARGE FILES") {
		t.Error("Expected circular dependencies before large files")
	}
}

func TestPrintReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, ".", &model.Result{})
	if !strings.Contains(buf.String(), "No warnings found") {
		t.Errorf("Unexpected output: %s", buf.String())
	}
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "json", ".", sampleResult()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var decoded model.Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Expected valid JSON: %v", err)
	}
	if decoded.Stats.TotalWarnings != 2 || decoded.Stats.WarningsByLevel[model.LevelError] != 0 {
		t.Errorf("Unexpected stats: %+v", decoded.Stats)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "xml", ".", &model.Result{}); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestFailOn(t *testing.T) {
	result := sampleResult()

	tests := []struct {
		input string
		fails bool
	}{
		{"", false},
		{"never", false},
		{"info", true},
		{"Warning", true},
		{"error", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := ParseFailOn(tt.input)
			if err != nil {
				t.Fatalf("ParseFailOn(%q) error = %v", tt.input, err)
			}
			if got := f.Fails(result); got != tt.fails {
				t.Errorf("Fails() = %v, want %v", got, tt.fails)
			}
		})
	}

	if _, err := ParseFailOn("critical"); err == nil {
		t.Error("Expected error for unknown level")
	}
}
