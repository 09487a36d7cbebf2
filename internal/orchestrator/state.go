package orchestrator

import (
	"strings"

	"sanjeevani/internal/agents"
)

// Step is one unit of the decomposed plan. Text is never mutated after
// planning; retries record their rewritten query alongside it so the
// original plan stays auditable.
type Step struct {
	Text        string `json:"text"`
	Attempts    int    `json:"attempts,omitempty"`
	LastRewrite string `json:"last_rewrite,omitempty"`
}

// EffectiveText is the query actually dispatched for this step.
func (s Step) EffectiveText() string {
	if s.LastRewrite != "" {
		return s.LastRewrite
	}
	return s.Text
}

// ExecutionState is the per-invocation state threaded through the
// planning, routing, agent and synthesis nodes. It is owned by exactly
// one Query call and discarded after synthesis.
type ExecutionState struct {
	Question string
	Plan     []Step

	// Cursor indexes the current step. It advances only when a step
	// yields results or exhausts its retry budget, and never exceeds
	// len(Plan).
	Cursor int

	Research     []agents.AgentResult
	Geography    []agents.AgentResult
	Conservation []agents.AgentResult

	Errors []string
}

// PlanTexts returns the original step texts for diagnostics.
func (s *ExecutionState) PlanTexts() []string {
	texts := make([]string, len(s.Plan))
	for i, step := range s.Plan {
		texts[i] = step.Text
	}
	return texts
}

// accumulate appends a result to the accumulator for its domain.
func (s *ExecutionState) accumulate(domain Domain, res agents.AgentResult) {
	switch domain {
	case DomainGeography:
		s.Geography = append(s.Geography, res)
	case DomainConservation:
		s.Conservation = append(s.Conservation, res)
	default:
		s.Research = append(s.Research, res)
	}
	if res.Err != "" {
		s.Errors = append(s.Errors, res.Err)
	}
}

// lastResearchBotanicalName finds the most recent concrete botanical
// name retrieved by the research agent, used to resolve "it"/"that
// plant" references in later steps.
func (s *ExecutionState) lastResearchBotanicalName() string {
	for i := len(s.Research) - 1; i >= 0; i-- {
		for _, plant := range s.Research[i].Plants {
			if plant.BotanicalName != "" && !strings.EqualFold(plant.BotanicalName, "Unknown") {
				return plant.BotanicalName
			}
		}
	}
	return ""
}
