package sync

import (
	"sort"

	"github.com/devinsights/copilot-sync/pkg/github"
)

// FlattenMetrics expands per-day nested breakdowns into flat rows, one per
// leaf dimension combination actually present in the payload. Days are
// ordered by date ascending; within a day, rows follow the breakdown family
// order (IDE completions, IDE chat, dotcom chat, PR summaries) and the
// source nesting order, so repeated runs over the same payload produce
// byte-identical snapshots.
func FlattenMetrics(days []*github.DayMetrics) []*MetricRow {
	sorted := make([]*github.DayMetrics, 0, len(days))
	for _, d := range days {
		if d != nil && d.Date != "" {
			sorted = append(sorted, d)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	var rows []*MetricRow
	for _, day := range sorted {
		rows = append(rows, flattenDay(day)...)
	}
	return rows
}

func flattenDay(day *github.DayMetrics) []*MetricRow {
	base := MetricRow{
		Date:              day.Date,
		TotalActiveUsers:  day.TotalActiveUsers,
		TotalEngagedUsers: day.TotalEngagedUsers,
	}
	if day.IDECodeCompletions != nil {
		base.IDECompletionsUsers = day.IDECodeCompletions.TotalEngagedUsers
	}
	if day.IDEChat != nil {
		base.IDEChatUsers = day.IDEChat.TotalEngagedUsers
	}
	if day.DotcomChat != nil {
		base.DotcomChatUsers = day.DotcomChat.TotalEngagedUsers
	}
	if day.DotcomPullRequests != nil {
		base.PRUsers = day.DotcomPullRequests.TotalEngagedUsers
	}

	var rows []*MetricRow

	if day.IDECodeCompletions != nil {
		for _, editor := range day.IDECodeCompletions.Editors {
			for _, model := range editor.Models {
				for _, lang := range model.Languages {
					row := base
					row.Editor = editor.Name
					row.Model = model.Name
					row.IsCustomModel = model.IsCustomModel
					row.Language = lang.Name
					row.CodeSuggestions = lang.TotalCodeSuggestions
					row.CodeAcceptances = lang.TotalCodeAcceptances
					row.LinesSuggested = lang.TotalCodeLinesSuggested
					row.LinesAccepted = lang.TotalCodeLinesAccepted
					rows = append(rows, &row)
				}
			}
		}
	}

	if day.IDEChat != nil {
		for _, editor := range day.IDEChat.Editors {
			for _, model := range editor.Models {
				row := base
				row.Editor = editor.Name
				row.Model = model.Name
				row.IsCustomModel = model.IsCustomModel
				row.ChatCount = model.TotalChats
				row.ChatInsertions = model.TotalChatInsertionEvents
				row.ChatCopies = model.TotalChatCopyEvents
				rows = append(rows, &row)
			}
		}
	}

	if day.DotcomChat != nil {
		for _, model := range day.DotcomChat.Models {
			row := base
			row.Model = model.Name
			row.IsCustomModel = model.IsCustomModel
			row.ChatCount = model.TotalChats
			rows = append(rows, &row)
		}
	}

	if day.DotcomPullRequests != nil {
		for _, repo := range day.DotcomPullRequests.Repositories {
			for _, model := range repo.Models {
				row := base
				row.Model = model.Name
				row.IsCustomModel = model.IsCustomModel
				row.PRSummaries = model.TotalPRSummariesCreated
				row.Repository = repo.Name
				rows = append(rows, &row)
			}
		}
	}

	return rows
}
