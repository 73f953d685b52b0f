package sync

import "github.com/devinsights/copilot-sync/pkg/github"

// TeamIndex maps a user login to the teams that user belongs to, built from
// the enterprise team rosters.
type TeamIndex map[string][]*github.Team

// NewTeamIndex creates an empty index.
func NewTeamIndex() TeamIndex {
	return make(TeamIndex)
}

// Add records one (member, team) pair.
func (idx TeamIndex) Add(login string, team *github.Team) {
	if login == "" || team == nil {
		return
	}
	idx[login] = append(idx[login], team)
}

// BuildUserRows converts billing seats into raw user records. Seats without
// a user assignee (for example, pending invitations) are skipped.
func BuildUserRows(seats []*github.Seat) []*UserRow {
	var users []*UserRow
	for _, seat := range seats {
		if seat == nil || seat.Assignee == nil || seat.Assignee.Type != "User" {
			continue
		}
		u := &UserRow{
			UserID:                  seat.Assignee.ID,
			Login:                   seat.Assignee.Login,
			Name:                    seat.Assignee.Name,
			Email:                   seat.Assignee.Email,
			AvatarURL:               seat.Assignee.AvatarURL,
			HTMLURL:                 seat.Assignee.HTMLURL,
			SiteAdmin:               seat.Assignee.SiteAdmin,
			CopilotEnabled:          "Yes",
			SeatCreatedAt:           seat.CreatedAt,
			PendingCancellationDate: seat.PendingCancellationDate,
			PlanType:                seat.PlanType,
			LastActivityAt:          seat.LastActivityAt,
			LastActivityEditor:      seat.LastActivityEditor,
		}
		if seat.AssigningTeam != nil {
			id := seat.AssigningTeam.ID
			u.AssigningTeamID = &id
			u.AssigningTeamName = seat.AssigningTeam.Name
			u.AssigningTeamSlug = seat.AssigningTeam.Slug
			u.AssigningTeamHTMLURL = seat.AssigningTeam.HTMLURL
		}
		users = append(users, u)
	}
	return users
}

// teamRef is one resolved team attribution for a user row.
type teamRef struct {
	id       *int64
	name     string
	slug     string
	htmlURL  string
	assigned bool
}

// teamResolvers is the ordered resolution strategy for a user's team rows:
// roster memberships first, then the seat's assigning team, then an empty
// placeholder. The first resolver that yields refs wins.
var teamResolvers = []func(*UserRow, TeamIndex) []teamRef{
	resolveFromMemberships,
	resolveFromSeatAssignment,
	resolveEmpty,
}

func resolveFromMemberships(u *UserRow, idx TeamIndex) []teamRef {
	teams := idx[u.Login]
	refs := make([]teamRef, 0, len(teams))
	for _, t := range teams {
		id := t.ID
		refs = append(refs, teamRef{id: &id, name: t.Name, slug: t.Slug, htmlURL: t.HTMLURL, assigned: true})
	}
	return refs
}

func resolveFromSeatAssignment(u *UserRow, _ TeamIndex) []teamRef {
	if u.AssigningTeamID == nil {
		return nil
	}
	return []teamRef{{
		id:       u.AssigningTeamID,
		name:     u.AssigningTeamName,
		slug:     u.AssigningTeamSlug,
		htmlURL:  u.AssigningTeamHTMLURL,
		assigned: true,
	}}
}

func resolveEmpty(*UserRow, TeamIndex) []teamRef {
	return []teamRef{{}}
}

// FlattenUsers expands raw user records into (user, team) rows. A user with
// N roster memberships yields exactly N rows; a user with none yields one
// row, attributed to the seat's assigning team when available.
func FlattenUsers(users []*UserRow, idx TeamIndex) []*UserTeamRow {
	var rows []*UserTeamRow
	for _, u := range users {
		for _, ref := range resolveTeams(u, idx) {
			rows = append(rows, &UserTeamRow{
				UserID:                  u.UserID,
				Login:                   u.Login,
				Name:                    u.Name,
				Email:                   u.Email,
				AvatarURL:               u.AvatarURL,
				HTMLURL:                 u.HTMLURL,
				SiteAdmin:               u.SiteAdmin,
				CopilotEnabled:          u.CopilotEnabled,
				SeatCreatedAt:           u.SeatCreatedAt,
				PendingCancellationDate: u.PendingCancellationDate,
				PlanType:                u.PlanType,
				LastActivityAt:          u.LastActivityAt,
				LastActivityEditor:      u.LastActivityEditor,
				TeamID:                  ref.id,
				TeamName:                ref.name,
				TeamSlug:                ref.slug,
				TeamHTMLURL:             ref.htmlURL,
				HasTeamAssignment:       ref.assigned,
			})
		}
	}
	return rows
}

func resolveTeams(u *UserRow, idx TeamIndex) []teamRef {
	for _, resolve := range teamResolvers {
		if refs := resolve(u, idx); len(refs) > 0 {
			return refs
		}
	}
	return nil
}
