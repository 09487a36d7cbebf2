package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sanjeevani/internal/agents"
	"sanjeevani/internal/llm"
	"sanjeevani/internal/logging"
)

const (
	defaultMaxContextChars = 8000
	truncationMarker       = "... [TRUNCATED]"

	synthSystem = `You are Sanjeevani, an assistant for medicinal plant knowledge.
Answer from the provided context only. When the question concerns a specific
plant, structure the answer with Markdown sections (Overview, Traditional Uses,
Pharmacology, Safety, Conservation, Distribution) as applicable.
Respond with a single JSON object:
{"answer": "...", "plant_name": "primary plant discussed or null",
 "locations": ["district names mentioned"], "image_query": "search query for a photo of the plant, or null"}`

	failureAnswer = "I'm sorry, I couldn't put together an answer right now. Please try asking again."
)

// Synthesis is the structured final answer.
type Synthesis struct {
	Answer     string   `json:"answer"`
	PlantName  string   `json:"plant_name,omitempty"`
	Locations  []string `json:"locations,omitempty"`
	ImageQuery string   `json:"image_query,omitempty"`
}

// Synthesizer collapses the accumulated agent results and history into
// one answer. Model failures degrade to a plain-text answer, never an
// error.
type Synthesizer struct {
	llm             llm.Client
	model           string
	maxContextChars int
}

func NewSynthesizer(client llm.Client, model string, maxContextChars int) *Synthesizer {
	if maxContextChars <= 0 {
		maxContextChars = defaultMaxContextChars
	}
	return &Synthesizer{llm: client, model: model, maxContextChars: maxContextChars}
}

// Synthesize produces the final answer for state. wantLocations gates
// the locations list: it is only populated when the user's question
// explicitly asked for distribution information.
func (s *Synthesizer) Synthesize(ctx context.Context, state *ExecutionState, history []Message, wantLocations bool) Synthesis {
	contextText := s.buildContext(state)

	if s.llm == nil {
		return s.fallback(state)
	}
	raw, err := s.llm.Complete(ctx, llm.Request{
		Model:  s.model,
		System: synthSystem,
		Prompt: fmt.Sprintf("Context:\n%s\n\n%sQuestion: %s",
			contextText, historyBlock(history), state.Question),
		MaxTokens:   1024,
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		logging.Synthesis("completion failed, using fallback answer: %v", err)
		return s.fallback(state)
	}

	var syn Synthesis
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &syn); err != nil || syn.Answer == "" {
		logging.Synthesis("unparseable synthesis output, using raw text")
		syn = Synthesis{Answer: strings.TrimSpace(raw)}
		if syn.Answer == "" {
			syn.Answer = failureAnswer
		}
	}

	if !wantLocations {
		syn.Locations = nil
	}
	if syn.PlantName == "" {
		syn.ImageQuery = ""
	}
	return syn
}

// buildContext serializes every accumulated result into the model
// context, keeping the geography summaries as prose and truncating to
// the character budget.
func (s *Synthesizer) buildContext(state *ExecutionState) string {
	var b strings.Builder

	writeResults := func(label string, results []agents.AgentResult) {
		for _, res := range results {
			if res.Err != "" {
				continue
			}
			data, err := json.Marshal(res.Plants)
			if err != nil || len(res.Plants) == 0 {
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", label, data)
			for _, w := range res.Warnings {
				fmt.Fprintf(&b, "%s warning: %s\n", label, w)
			}
		}
	}
	writeResults("Research", state.Research)
	writeResults("Conservation", state.Conservation)

	for _, res := range state.Geography {
		if res.Err != "" || res.Summary == "" {
			continue
		}
		fmt.Fprintf(&b, "Geography: %s\n", res.Summary)
	}

	text := b.String()
	if text == "" {
		text = "No records were retrieved."
	}
	if len(text) > s.maxContextChars {
		cut := s.maxContextChars - len(truncationMarker)
		if cut < 0 {
			cut = 0
		}
		text = text[:cut] + truncationMarker
		logging.Synthesis("context truncated to %d chars", s.maxContextChars)
	}
	return text
}

// fallback assembles a plain-text answer from the agent summaries when
// the model is unavailable.
func (s *Synthesizer) fallback(state *ExecutionState) Synthesis {
	var summaries []string
	for _, group := range [][]agents.AgentResult{state.Research, state.Conservation, state.Geography} {
		for _, res := range group {
			if res.Summary != "" {
				summaries = append(summaries, res.Summary)
			}
		}
	}
	if len(summaries) == 0 {
		return Synthesis{Answer: failureAnswer}
	}
	return Synthesis{Answer: strings.Join(summaries, " ")}
}

func historyBlock(history []Message) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Recent conversation:\n")
	start := len(history) - 4
	if start < 0 {
		start = 0
	}
	for _, m := range history[start:] {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Text)
	}
	b.WriteString("\n")
	return b.String()
}
