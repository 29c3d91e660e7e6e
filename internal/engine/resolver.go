package engine

import (
	"strconv"
	"strings"

	"github.com/notabene-app/notabene/internal/model"
)

// resolveRuleTargets turns a matched rule's action targets into concrete
// client/project/team references. Each target mode goes through this one
// resolution step so dynamic detection is not scattered through the
// scorer.
func resolveRuleTargets(actions model.ActionSet, facts model.MeetingFacts, clients []model.Client, projects []model.Project) (*model.Client, *model.Project, string) {
	client := resolveClientTarget(actions.Client, facts, clients, projects)

	var project *model.Project
	if client != nil {
		project = resolveProjectTarget(actions.Project, facts, client, projects)
	}

	team := resolveTeamTarget(actions.Team, project)
	return client, project, team
}

func resolveClientTarget(target model.TargetRef, facts model.MeetingFacts, clients []model.Client, projects []model.Project) *model.Client {
	switch target.Mode {
	case model.TargetExplicit:
		return lookupClient(clients, target.Value)
	case model.TargetFromDomain:
		return findDomainClient(clients, facts)
	case model.TargetFromKeywords:
		return findKeywordHit(clients, projects, facts, nil).Client
	case model.TargetAuto:
		if c := findDomainClient(clients, facts); c != nil {
			return c
		}
		return findKeywordHit(clients, projects, facts, nil).Client
	}
	return nil
}

func resolveProjectTarget(target model.TargetRef, facts model.MeetingFacts, client *model.Client, projects []model.Project) *model.Project {
	switch target.Mode {
	case model.TargetExplicit:
		return lookupProject(projects, client.ID, target.Value)
	case model.TargetFromKeywords, model.TargetAuto:
		clients := []model.Client{*client}
		return findKeywordHit(clients, projects, facts, client).Project
	}
	return nil
}

// resolveTeamTarget maps a team target to a name. Auto detection uses
// the resolved project's name; there is no better local signal.
func resolveTeamTarget(target model.TargetRef, project *model.Project) string {
	switch target.Mode {
	case model.TargetExplicit:
		return target.Value
	case model.TargetAuto:
		if project != nil {
			return project.Name
		}
	}
	return ""
}

// lookupClient resolves an explicit client reference: a numeric id or a
// case-insensitive display name.
func lookupClient(clients []model.Client, ref string) *model.Client {
	id, idErr := strconv.ParseInt(ref, 10, 64)
	for i := range clients {
		if !clients[i].IsActive {
			continue
		}
		if idErr == nil && clients[i].ID == id {
			return &clients[i]
		}
		if strings.EqualFold(clients[i].Name, ref) {
			return &clients[i]
		}
	}
	return nil
}

// lookupProject resolves an explicit project reference scoped to a
// client.
func lookupProject(projects []model.Project, clientID int64, ref string) *model.Project {
	id, idErr := strconv.ParseInt(ref, 10, 64)
	for i := range projects {
		if projects[i].ClientID != clientID || projects[i].Status != model.ProjectActive {
			continue
		}
		if idErr == nil && projects[i].ID == id {
			return &projects[i]
		}
		if strings.EqualFold(projects[i].Name, ref) {
			return &projects[i]
		}
	}
	return nil
}
