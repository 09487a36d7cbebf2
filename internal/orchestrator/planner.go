package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sanjeevani/internal/llm"
	"sanjeevani/internal/logging"
)

const (
	// Questions shorter than this with no coordinating conjunction skip
	// the planning model entirely.
	fastPathMaxWords = 8

	planPrompt = `Decompose the user's question about medicinal plants into an ordered list of research steps.
Each step must be a self-contained search query. Use as few steps as possible.
Respond with a JSON object: {"steps": ["step one", "step two"]}.

%sQuestion: %s`
)

// conjunctions force the planning model even for short questions.
var conjunctions = map[string]struct{}{
	"and": {}, "also": {}, "compare": {},
}

// locationKeywords mark questions that need geography coverage.
var locationKeywords = []string{"where", "location", "map", "grow", "district", "place"}

// Planner decomposes a question into ordered steps. A nil or failing
// completion client degrades to a single-step plan.
type Planner struct {
	llm   llm.Client
	model string
}

func NewPlanner(client llm.Client, model string) *Planner {
	return &Planner{llm: client, model: model}
}

// Plan builds the step list for question. The last two turns of
// history are shown to the model for pronoun resolution.
func (p *Planner) Plan(ctx context.Context, question string, history []Message) []Step {
	if isSimpleQuestion(question) {
		steps := []Step{{Text: question}}
		if hasLocationKeyword(question) {
			steps = append(steps, Step{Text: locationStep(question)})
		}
		logging.Planner("fast path: %d step(s) for %q", len(steps), question)
		return steps
	}

	texts, err := p.modelPlan(ctx, question, history)
	if err != nil {
		logging.Planner("model planning failed, degrading to single step: %v", err)
		texts = []string{question}
	}

	steps := make([]Step, 0, len(texts)+1)
	for _, t := range texts {
		steps = append(steps, Step{Text: t})
	}
	if hasLocationKeyword(question) && !plansGeography(texts) {
		steps = append(steps, Step{Text: locationStep(question)})
	}
	logging.Planner("plan: %d step(s) for %q", len(steps), question)
	return steps
}

func (p *Planner) modelPlan(ctx context.Context, question string, history []Message) ([]string, error) {
	if p.llm == nil {
		return nil, fmt.Errorf("no completion client configured")
	}

	var turns strings.Builder
	if n := len(history); n > 0 {
		start := n - 4 // two turns, two messages each
		if start < 0 {
			start = 0
		}
		turns.WriteString("Recent conversation:\n")
		for _, m := range history[start:] {
			fmt.Fprintf(&turns, "%s: %s\n", m.Role, m.Text)
		}
		turns.WriteString("\n")
	}

	raw, err := p.llm.Complete(ctx, llm.Request{
		Model:       p.model,
		System:      "You are a planning assistant for a botanical knowledge system.",
		Prompt:      fmt.Sprintf(planPrompt, turns.String(), question),
		MaxTokens:   512,
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Steps []string `json:"steps"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("unparseable plan: %w", err)
	}
	var steps []string
	for _, s := range parsed.Steps {
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("plan contained no steps")
	}
	return steps, nil
}

// isSimpleQuestion reports whether question qualifies for the fast
// path.
func isSimpleQuestion(question string) bool {
	words := strings.Fields(strings.ToLower(question))
	if len(words) >= fastPathMaxWords {
		return false
	}
	for _, w := range words {
		if _, ok := conjunctions[strings.Trim(w, ".,!?")]; ok {
			return false
		}
	}
	return true
}

func hasLocationKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range locationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// plansGeography reports whether any planned step already carries a
// geography routing keyword.
func plansGeography(steps []string) bool {
	for _, s := range steps {
		if routeByKeyword(s) == DomainGeography {
			return true
		}
	}
	return false
}

func locationStep(question string) string {
	return fmt.Sprintf("Find location and habitat data for: %s", question)
}

// extractJSONObject pulls the first balanced-looking JSON object out
// of a model response that may carry surrounding prose.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
