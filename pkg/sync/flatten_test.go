package sync

import (
	"reflect"
	"testing"

	"github.com/devinsights/copilot-sync/pkg/github"
)

func count(v int64) *int64 { return &v }

func sampleDay() *github.DayMetrics {
	return &github.DayMetrics{
		Date:              "2025-07-01",
		TotalActiveUsers:  count(120),
		TotalEngagedUsers: count(95),
		IDECodeCompletions: &github.IDECodeCompletions{
			TotalEngagedUsers: count(80),
			Editors: []*github.Editor{
				{
					Name: "vscode",
					Models: []*github.Model{
						{
							Name: "default",
							Languages: []*github.Language{
								{Name: "go", TotalCodeSuggestions: count(500), TotalCodeAcceptances: count(200), TotalCodeLinesSuggested: count(1200), TotalCodeLinesAccepted: count(450)},
								{Name: "python", TotalCodeSuggestions: count(300), TotalCodeAcceptances: count(90)},
							},
						},
					},
				},
				{
					Name: "jetbrains",
					Models: []*github.Model{
						{
							Name:      "default",
							Languages: []*github.Language{{Name: "java", TotalCodeSuggestions: count(150)}},
						},
					},
				},
			},
		},
		IDEChat: &github.IDEChat{
			TotalEngagedUsers: count(40),
			Editors: []*github.Editor{
				{
					Name: "vscode",
					Models: []*github.Model{
						{Name: "default", TotalChats: count(210), TotalChatInsertionEvents: count(30), TotalChatCopyEvents: count(12)},
					},
				},
			},
		},
		DotcomChat: &github.DotcomChat{
			TotalEngagedUsers: count(25),
			Models:            []*github.Model{{Name: "default", TotalChats: count(75)}},
		},
		DotcomPullRequests: &github.DotcomPullRequests{
			TotalEngagedUsers: count(10),
			Repositories: []*github.Repository{
				{Name: "acme/api", Models: []*github.Model{{Name: "default", TotalPRSummariesCreated: count(8)}}},
			},
		},
	}
}

func TestFlattenMetrics_RowPerLeafCombination(t *testing.T) {
	rows := FlattenMetrics([]*github.DayMetrics{sampleDay()})

	// 3 completion languages + 1 IDE chat model + 1 dotcom chat model + 1 PR model.
	if len(rows) != 6 {
		t.Fatalf("Expected 6 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Editor != "vscode" || first.Language != "go" {
		t.Errorf("Expected first row vscode/go, got %s/%s", first.Editor, first.Language)
	}
	if first.CodeSuggestions == nil || *first.CodeSuggestions != 500 {
		t.Errorf("Expected 500 code suggestions, got %v", first.CodeSuggestions)
	}
	if first.ChatCount != nil {
		t.Errorf("Expected nil chat count on a completions row, got %d", *first.ChatCount)
	}
	if first.TotalActiveUsers == nil || *first.TotalActiveUsers != 120 {
		t.Errorf("Expected day totals carried onto every row, got %v", first.TotalActiveUsers)
	}
}

func TestFlattenMetrics_AbsentCountsStayNil(t *testing.T) {
	rows := FlattenMetrics([]*github.DayMetrics{sampleDay()})

	// python has no line counts in the payload; must not collapse to zero.
	python := rows[1]
	if python.Language != "python" {
		t.Fatalf("Expected python row at index 1, got %s", python.Language)
	}
	if python.LinesSuggested != nil {
		t.Errorf("Expected nil lines_suggested, got %d", *python.LinesSuggested)
	}
	if rec := python.CSVRecord(); rec[13] != "" {
		t.Errorf("Expected empty CSV cell for absent count, got %q", rec[13])
	}

	chat := rows[3]
	if chat.ChatCount == nil || *chat.ChatCount != 210 {
		t.Errorf("Expected IDE chat row with 210 chats, got %v", chat.ChatCount)
	}
	if chat.CodeSuggestions != nil {
		t.Errorf("Expected nil code_suggestions on a chat row, got %d", *chat.CodeSuggestions)
	}
}

func TestFlattenMetrics_OrdersByDate(t *testing.T) {
	d1 := sampleDay()
	d2 := sampleDay()
	d2.Date = "2025-06-30"

	rows := FlattenMetrics([]*github.DayMetrics{d1, d2})
	if rows[0].Date != "2025-06-30" {
		t.Errorf("Expected earliest date first, got %s", rows[0].Date)
	}
	if rows[len(rows)-1].Date != "2025-07-01" {
		t.Errorf("Expected latest date last, got %s", rows[len(rows)-1].Date)
	}
}

func TestFlattenMetrics_Deterministic(t *testing.T) {
	days := []*github.DayMetrics{sampleDay(), sampleDay()}
	days[1].Date = "2025-06-30"

	a := FlattenMetrics(days)
	b := FlattenMetrics(days)
	if !reflect.DeepEqual(a, b) {
		t.Error("Expected identical output for repeated flattening of the same payload")
	}
}

func TestFlattenMetrics_SkipsNilAndUndatedDays(t *testing.T) {
	rows := FlattenMetrics([]*github.DayMetrics{nil, {Date: ""}, {Date: "2025-07-01", TotalActiveUsers: count(5)}})
	if len(rows) != 0 {
		t.Errorf("Expected no rows for a day without breakdowns, got %d", len(rows))
	}
}
