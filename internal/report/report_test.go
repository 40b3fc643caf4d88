package report

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"binclean/internal/cleanup"
	"binclean/internal/discovery"
)

func TestExtractProjectName(t *testing.T) {
	tests := map[string]string{
		"/src/App/App.csproj":      "App",
		"/src/Lib/Lib.FSPROJ":      "Lib",
		"C:/work/Old.vbproj":       "Old",
		"/src/Everything.sln":      "Everything",
		"/src/notes.txt":           "notes.txt",
		"/src/App/App.csproj.user": "App.csproj.user",
		".sln":                     ".sln",
		"":                         "Unknown",
	}
	for in, want := range tests {
		if got := ExtractProjectName(in); got != want {
			t.Errorf("ExtractProjectName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatProjectName(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		width int
		want  string
	}{
		{"fits", "/x/Short.csproj", 30, "Short"},
		{"exact width", "/x/ABCDEFGHIJ.csproj", 10, "ABCDEFGHIJ"},
		{"left truncated", "/x/Company.Product.Feature.Tests.csproj", 16, "...Feature.Tests"},
		{"default width", "/x/" + strings.Repeat("a", 40) + ".sln", 0, "..." + strings.Repeat("a", 27)},
		{"tiny width clamps", "/x/ABCDEFGH.csproj", 2, "...H"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatProjectName(tt.path, tt.width); got != tt.want {
				t.Errorf("FormatProjectName(%q, %d) = %q, want %q", tt.path, tt.width, got, tt.want)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	res := cleanup.Result{
		ProjectsProcessed: 2,
		Failed:            1,
		Targets: []cleanup.TargetResult{
			{RemoveResult: cleanup.RemoveResult{Outcome: cleanup.OutcomeDeleted, Files: 3, Dirs: 2}},
			{RemoveResult: cleanup.RemoveResult{Outcome: cleanup.OutcomeSkipped}},
			{RemoveResult: cleanup.RemoveResult{Outcome: cleanup.OutcomeFailed, Files: 9}},
		},
	}

	want := "Cleaned 2 project(s). 5 items removed. 1 error(s)."
	if got := Summary(res, 2); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}

	res.Cancelled = true
	if got := Summary(res, 5); !strings.HasSuffix(got, "Cancelled after 2 of 5 project(s).") {
		t.Errorf("Summary() = %q, want cancel note", got)
	}
}

func TestCountsAndElapsed(t *testing.T) {
	res := cleanup.Result{Deleted: 4, Skipped: 2, Failed: 1, FallbackUsed: 1, Elapsed: 1250 * time.Millisecond}
	want := "deleted=4 skipped=2 failed=1 fallback=1 elapsed=1.25s"
	if got := Counts(res); got != want {
		t.Errorf("Counts() = %q, want %q", got, want)
	}
}

func TestDetails(t *testing.T) {
	res := cleanup.Result{Errors: []cleanup.TargetError{
		{Path: "/src/App/bin", Reason: "access denied; fallback: directory not empty"},
	}}
	want := []string{"/src/App/bin: access denied; fallback: directory not empty"}
	if got := Details(res); !slices.Equal(got, want) {
		t.Errorf("Details() = %q, want %q", got, want)
	}
	if got := Details(cleanup.Result{}); len(got) != 0 {
		t.Errorf("Details() of clean run = %q", got)
	}
}

func TestSkipped(t *testing.T) {
	res := discovery.Result{Skipped: []discovery.SkippedDir{
		{Path: "/gone", Reason: discovery.SkipMissingRoot, Err: errors.New("no such file or directory")},
		{Path: "/src/loop", Reason: discovery.SkipCycle},
		{Path: "/src/locked", Reason: discovery.SkipUnreadable},
		{Path: "/src/deep", Reason: discovery.SkipDepth},
	}}
	want := []string{
		"/gone (missing root: no such file or directory)",
		"/src/locked (unreadable)",
	}
	if got := Skipped(res); !slices.Equal(got, want) {
		t.Errorf("Skipped() = %q, want %q", got, want)
	}
}
