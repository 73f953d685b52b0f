package github

// DayMetrics is one day's Copilot usage payload as returned by the metrics
// endpoint. Counts are pointers so an absent field stays distinguishable from
// an observed zero.
type DayMetrics struct {
	Date               string              `json:"date"`
	TotalActiveUsers   *int64              `json:"total_active_users"`
	TotalEngagedUsers  *int64              `json:"total_engaged_users"`
	IDECodeCompletions *IDECodeCompletions `json:"copilot_ide_code_completions"`
	IDEChat            *IDEChat            `json:"copilot_ide_chat"`
	DotcomChat         *DotcomChat         `json:"copilot_dotcom_chat"`
	DotcomPullRequests *DotcomPullRequests `json:"copilot_dotcom_pull_requests"`
}

// IDECodeCompletions holds the editor→model→language completion breakdown.
type IDECodeCompletions struct {
	TotalEngagedUsers *int64    `json:"total_engaged_users"`
	Editors           []*Editor `json:"editors"`
}

// IDEChat holds the editor→model chat breakdown.
type IDEChat struct {
	TotalEngagedUsers *int64    `json:"total_engaged_users"`
	Editors           []*Editor `json:"editors"`
}

// DotcomChat holds the per-model github.com chat breakdown.
type DotcomChat struct {
	TotalEngagedUsers *int64   `json:"total_engaged_users"`
	Models            []*Model `json:"models"`
}

// DotcomPullRequests holds the repository→model PR summary breakdown.
type DotcomPullRequests struct {
	TotalEngagedUsers *int64        `json:"total_engaged_users"`
	Repositories      []*Repository `json:"repositories"`
}

// Editor is one editor entry in a breakdown.
type Editor struct {
	Name   string   `json:"name"`
	Models []*Model `json:"models"`
}

// Repository is one repository entry in the PR summary breakdown.
type Repository struct {
	Name   string   `json:"name"`
	Models []*Model `json:"models"`
}

// Model is one model entry. Which count fields are populated depends on the
// breakdown family it appears under.
type Model struct {
	Name                     string      `json:"name"`
	IsCustomModel            bool        `json:"is_custom_model"`
	Languages                []*Language `json:"languages"`
	TotalChats               *int64      `json:"total_chats"`
	TotalChatInsertionEvents *int64      `json:"total_chat_insertion_events"`
	TotalChatCopyEvents      *int64      `json:"total_chat_copy_events"`
	TotalPRSummariesCreated  *int64      `json:"total_pr_summaries_created"`
}

// Language is one language entry under a completion model.
type Language struct {
	Name                    string `json:"name"`
	TotalEngagedUsers       *int64 `json:"total_engaged_users"`
	TotalCodeSuggestions    *int64 `json:"total_code_suggestions"`
	TotalCodeAcceptances    *int64 `json:"total_code_acceptances"`
	TotalCodeLinesSuggested *int64 `json:"total_code_lines_suggested"`
	TotalCodeLinesAccepted  *int64 `json:"total_code_lines_accepted"`
}

// Seat is one Copilot billing seat record.
type Seat struct {
	CreatedAt               string    `json:"created_at"`
	PendingCancellationDate string    `json:"pending_cancellation_date"`
	PlanType                string    `json:"plan_type"`
	LastActivityAt          string    `json:"last_activity_at"`
	LastActivityEditor      string    `json:"last_activity_editor"`
	Assignee                *Assignee `json:"assignee"`
	AssigningTeam           *Team     `json:"assigning_team"`
}

// Assignee is the user a seat is assigned to.
type Assignee struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
	SiteAdmin bool   `json:"site_admin"`
	Type      string `json:"type"`
}

// Team is an enterprise team.
type Team struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	HTMLURL string `json:"html_url"`
}

// seatsPage is the paginated envelope of the billing seats endpoint.
type seatsPage struct {
	TotalSeats int64   `json:"total_seats"`
	Seats      []*Seat `json:"seats"`
}

// membership is one entry of the team memberships endpoint.
type membership struct {
	User *Assignee `json:"user"`
}

// metricsEnvelope covers deployments that wrap the day list in an object.
type metricsEnvelope struct {
	Metrics []*DayMetrics `json:"metrics"`
}
