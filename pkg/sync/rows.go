// Package sync implements the incremental synchronization core: fetch-window
// planning, record flattening, upload dispatch, and checkpoint persistence.
package sync

import (
	"strconv"

	"github.com/devinsights/copilot-sync/pkg/domo"
)

// MetricRow is one flattened usage row: a date plus one dimension combination
// with its counts. Count fields are pointers; nil means the source breakdown
// does not carry that metric for this combination, which is distinct from an
// observed zero.
type MetricRow struct {
	Date                string `json:"date"`
	TotalActiveUsers    *int64 `json:"total_active_users"`
	TotalEngagedUsers   *int64 `json:"total_engaged_users"`
	IDECompletionsUsers *int64 `json:"ide_completions_users"`
	IDEChatUsers        *int64 `json:"ide_chat_users"`
	DotcomChatUsers     *int64 `json:"dotcom_chat_users"`
	PRUsers             *int64 `json:"pr_users"`
	Editor              string `json:"editor"`
	Model               string `json:"model"`
	IsCustomModel       bool   `json:"is_custom_model"`
	Language            string `json:"language"`
	CodeSuggestions     *int64 `json:"code_suggestions"`
	CodeAcceptances     *int64 `json:"code_acceptances"`
	LinesSuggested      *int64 `json:"lines_suggested"`
	LinesAccepted       *int64 `json:"lines_accepted"`
	ChatCount           *int64 `json:"chat_count"`
	ChatInsertions      *int64 `json:"chat_insertions"`
	ChatCopies          *int64 `json:"chat_copies"`
	PRSummaries         *int64 `json:"pr_summaries"`
	Repository          string `json:"repository"`
}

// UserRow is one raw directory record: a user holding a Copilot seat with
// seat metadata and the seat's assigning team, if any.
type UserRow struct {
	UserID                  int64  `json:"user_id"`
	Login                   string `json:"login"`
	Name                    string `json:"name"`
	Email                   string `json:"email"`
	AvatarURL               string `json:"avatar_url"`
	HTMLURL                 string `json:"html_url"`
	SiteAdmin               bool   `json:"site_admin"`
	CopilotEnabled          string `json:"copilot_enabled"`
	SeatCreatedAt           string `json:"seat_created_at"`
	PendingCancellationDate string `json:"pending_cancellation_date"`
	PlanType                string `json:"plan_type"`
	LastActivityAt          string `json:"last_activity_at"`
	LastActivityEditor      string `json:"last_activity_editor"`
	AssigningTeamID         *int64 `json:"assigning_team_id"`
	AssigningTeamName       string `json:"assigning_team_name"`
	AssigningTeamSlug       string `json:"assigning_team_slug"`
	AssigningTeamHTMLURL    string `json:"assigning_team_html_url"`
}

// UserTeamRow is one flattened (user, team) pair.
type UserTeamRow struct {
	UserID                  int64  `json:"user_id"`
	Login                   string `json:"login"`
	Name                    string `json:"name"`
	Email                   string `json:"email"`
	AvatarURL               string `json:"avatar_url"`
	HTMLURL                 string `json:"html_url"`
	SiteAdmin               bool   `json:"site_admin"`
	CopilotEnabled          string `json:"copilot_enabled"`
	SeatCreatedAt           string `json:"seat_created_at"`
	PendingCancellationDate string `json:"pending_cancellation_date"`
	PlanType                string `json:"plan_type"`
	LastActivityAt          string `json:"last_activity_at"`
	LastActivityEditor      string `json:"last_activity_editor"`
	TeamID                  *int64 `json:"team_id"`
	TeamName                string `json:"team_name"`
	TeamSlug                string `json:"team_slug"`
	TeamHTMLURL             string `json:"team_html_url"`
	HasTeamAssignment       bool   `json:"has_team_assignment"`
}

// MetricColumns is the metrics dataset column order, matching the Domo schema.
var MetricColumns = []string{
	"date",
	"total_active_users",
	"total_engaged_users",
	"ide_completions_users",
	"ide_chat_users",
	"dotcom_chat_users",
	"pr_users",
	"editor",
	"model",
	"is_custom_model",
	"language",
	"code_suggestions",
	"code_acceptances",
	"lines_suggested",
	"lines_accepted",
	"chat_count",
	"chat_insertions",
	"chat_copies",
	"pr_summaries",
	"repository",
}

// UserTeamColumns is the users dataset column order.
var UserTeamColumns = []string{
	"user_id",
	"login",
	"name",
	"email",
	"avatar_url",
	"html_url",
	"site_admin",
	"copilot_enabled",
	"seat_created_at",
	"pending_cancellation_date",
	"plan_type",
	"last_activity_at",
	"last_activity_editor",
	"team_id",
	"team_name",
	"team_slug",
	"team_html_url",
	"has_team_assignment",
}

// CSVRecord renders the row in MetricColumns order. Nil counts become empty
// cells so the destination keeps them as null, not zero.
func (r *MetricRow) CSVRecord() []string {
	return []string{
		r.Date,
		formatCount(r.TotalActiveUsers),
		formatCount(r.TotalEngagedUsers),
		formatCount(r.IDECompletionsUsers),
		formatCount(r.IDEChatUsers),
		formatCount(r.DotcomChatUsers),
		formatCount(r.PRUsers),
		r.Editor,
		r.Model,
		strconv.FormatBool(r.IsCustomModel),
		r.Language,
		formatCount(r.CodeSuggestions),
		formatCount(r.CodeAcceptances),
		formatCount(r.LinesSuggested),
		formatCount(r.LinesAccepted),
		formatCount(r.ChatCount),
		formatCount(r.ChatInsertions),
		formatCount(r.ChatCopies),
		formatCount(r.PRSummaries),
		r.Repository,
	}
}

// CSVRecord renders the row in UserTeamColumns order.
func (r *UserTeamRow) CSVRecord() []string {
	return []string{
		strconv.FormatInt(r.UserID, 10),
		r.Login,
		r.Name,
		r.Email,
		r.AvatarURL,
		r.HTMLURL,
		strconv.FormatBool(r.SiteAdmin),
		r.CopilotEnabled,
		r.SeatCreatedAt,
		r.PendingCancellationDate,
		r.PlanType,
		r.LastActivityAt,
		r.LastActivityEditor,
		formatCount(r.TeamID),
		r.TeamName,
		r.TeamSlug,
		r.TeamHTMLURL,
		strconv.FormatBool(r.HasTeamAssignment),
	}
}

// MetricRecords renders a row set in upload order.
func MetricRecords(rows []*MetricRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.CSVRecord())
	}
	return records
}

// UserTeamRecords renders a row set in upload order.
func UserTeamRecords(rows []*UserTeamRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.CSVRecord())
	}
	return records
}

// MetricsSchema is the Domo schema for the metrics dataset.
func MetricsSchema() domo.Schema {
	return domo.Schema{Columns: []domo.Column{
		{Name: "date", Type: domo.TypeDate},
		{Name: "total_active_users", Type: domo.TypeLong},
		{Name: "total_engaged_users", Type: domo.TypeLong},
		{Name: "ide_completions_users", Type: domo.TypeLong},
		{Name: "ide_chat_users", Type: domo.TypeLong},
		{Name: "dotcom_chat_users", Type: domo.TypeLong},
		{Name: "pr_users", Type: domo.TypeLong},
		{Name: "editor", Type: domo.TypeString},
		{Name: "model", Type: domo.TypeString},
		{Name: "is_custom_model", Type: domo.TypeString},
		{Name: "language", Type: domo.TypeString},
		{Name: "code_suggestions", Type: domo.TypeLong},
		{Name: "code_acceptances", Type: domo.TypeLong},
		{Name: "lines_suggested", Type: domo.TypeLong},
		{Name: "lines_accepted", Type: domo.TypeLong},
		{Name: "chat_count", Type: domo.TypeLong},
		{Name: "chat_insertions", Type: domo.TypeLong},
		{Name: "chat_copies", Type: domo.TypeLong},
		{Name: "pr_summaries", Type: domo.TypeLong},
		{Name: "repository", Type: domo.TypeString},
	}}
}

// UsersSchema is the Domo schema for the users dataset.
func UsersSchema() domo.Schema {
	return domo.Schema{Columns: []domo.Column{
		{Name: "user_id", Type: domo.TypeLong},
		{Name: "login", Type: domo.TypeString},
		{Name: "name", Type: domo.TypeString},
		{Name: "email", Type: domo.TypeString},
		{Name: "avatar_url", Type: domo.TypeString},
		{Name: "html_url", Type: domo.TypeString},
		{Name: "site_admin", Type: domo.TypeString},
		{Name: "copilot_enabled", Type: domo.TypeString},
		{Name: "seat_created_at", Type: domo.TypeDatetime},
		{Name: "pending_cancellation_date", Type: domo.TypeString},
		{Name: "plan_type", Type: domo.TypeString},
		{Name: "last_activity_at", Type: domo.TypeDatetime},
		{Name: "last_activity_editor", Type: domo.TypeString},
		{Name: "team_id", Type: domo.TypeLong},
		{Name: "team_name", Type: domo.TypeString},
		{Name: "team_slug", Type: domo.TypeString},
		{Name: "team_html_url", Type: domo.TypeString},
		{Name: "has_team_assignment", Type: domo.TypeString},
	}}
}

func formatCount(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
