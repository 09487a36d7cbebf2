// Package orchestrator drives one question through planning, routing,
// domain retrieval and synthesis. Every external failure along the way
// degrades to a poorer answer; Query itself fails only on programmer
// error.
package orchestrator

import (
	"context"
	"strings"

	"sanjeevani/internal/agents"
	"sanjeevani/internal/logging"
)

// ImageFetcher resolves an image search query to a URL. Implementations
// return "" on any failure.
type ImageFetcher interface {
	ImageURL(ctx context.Context, query string) string
}

// Options tunes the orchestration loop.
type Options struct {
	// MaxRetriesPerStep bounds query rewrites for a zero-result step.
	MaxRetriesPerStep int
	MaxContextChars   int
	HistoryLimit      int
	DefaultLimit      int
}

// DefaultOptions matches the production configuration defaults.
func DefaultOptions() Options {
	return Options{
		MaxRetriesPerStep: 1,
		MaxContextChars:   defaultMaxContextChars,
		HistoryLimit:      40,
		DefaultLimit:      agents.DefaultLimit,
	}
}

// Deps are the collaborators the orchestrator drives. Research,
// Geography and Conservation are required; Images may be nil.
type Deps struct {
	Research     agents.Agent
	Geography    agents.Agent
	Conservation agents.Agent
	Planner      *Planner
	Router       *Router
	Synthesizer  *Synthesizer
	Images       ImageFetcher
}

// Orchestrator is the public entry point of the question pipeline.
type Orchestrator struct {
	deps     Deps
	opts     Options
	sessions *SessionStore
}

// New wires an orchestrator. Nil planner/router/synthesizer fields get
// model-free defaults so tests and offline commands work without a
// completion provider.
func New(deps Deps, opts Options) *Orchestrator {
	if opts.MaxRetriesPerStep < 0 {
		opts.MaxRetriesPerStep = 0
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = agents.DefaultLimit
	}
	if deps.Planner == nil {
		deps.Planner = NewPlanner(nil, "")
	}
	if deps.Router == nil {
		deps.Router = NewRouter(nil)
	}
	if deps.Synthesizer == nil {
		deps.Synthesizer = NewSynthesizer(nil, "", opts.MaxContextChars)
	}
	return &Orchestrator{
		deps:     deps,
		opts:     opts,
		sessions: NewSessionStore(opts.HistoryLimit),
	}
}

// Sessions exposes the session store for transports that mint their
// own identifiers.
func (o *Orchestrator) Sessions() *SessionStore {
	return o.sessions
}

// Response is what a caller gets back for one question.
type Response struct {
	Answer        string               `json:"answer"`
	Locations     []string             `json:"locations,omitempty"`
	GeographyData []agents.AgentResult `json:"geography_data,omitempty"`
	ImageURL      string               `json:"image_url,omitempty"`
	Plan          []string             `json:"plan"`
	SessionID     string               `json:"session_id"`
}

// Query answers one question within a session. An empty sessionID
// starts a new session; the minted identifier is returned for the next
// turn.
func (o *Orchestrator) Query(ctx context.Context, question, sessionID string, limit int) Response {
	if limit <= 0 {
		limit = o.opts.DefaultLimit
	}
	if sessionID == "" {
		sessionID = o.sessions.NewSessionID()
	}
	history := o.sessions.History(sessionID)

	timer := logging.StartTimer(logging.CategorySession, "query")
	defer timer.Stop()

	state := &ExecutionState{
		Question: question,
		Plan:     o.deps.Planner.Plan(ctx, question, history),
	}

	for state.Cursor < len(state.Plan) {
		o.executeStep(ctx, state, limit)
	}

	syn := o.deps.Synthesizer.Synthesize(ctx, state, history, hasLocationKeyword(question))
	o.sessions.AppendTurn(sessionID, question, syn.Answer)

	var imageURL string
	if o.deps.Images != nil && syn.ImageQuery != "" {
		imageURL = o.deps.Images.ImageURL(ctx, syn.ImageQuery)
	}

	return Response{
		Answer:        syn.Answer,
		Locations:     syn.Locations,
		GeographyData: state.Geography,
		ImageURL:      imageURL,
		Plan:          state.PlanTexts(),
		SessionID:     sessionID,
	}
}

// executeStep routes and runs the current step, handling the
// one-rewrite retry without advancing the cursor.
func (o *Orchestrator) executeStep(ctx context.Context, state *ExecutionState, limit int) {
	step := &state.Plan[state.Cursor]
	text := step.EffectiveText()

	domain := o.deps.Router.Route(ctx, text)
	text = o.injectContext(state, text)

	res := o.agentFor(domain).ProcessQuery(ctx, text, limit)

	if res.Empty() && res.Err == "" && step.Attempts < o.opts.MaxRetriesPerStep {
		step.Attempts++
		step.LastRewrite = text + " medicinal plant"
		logging.Session("step %d empty, retrying as %q", state.Cursor, step.LastRewrite)
		return // same cursor: the rewritten step is re-routed
	}

	state.accumulate(domain, res)
	state.Cursor++
}

// injectContext appends the most recent research botanical name to the
// step text when the step does not already mention it, resolving
// cross-step pronoun references.
func (o *Orchestrator) injectContext(state *ExecutionState, text string) string {
	name := state.lastResearchBotanicalName()
	if name == "" || strings.Contains(strings.ToLower(text), strings.ToLower(name)) {
		return text
	}
	logging.Session("injecting context %q into step", name)
	return text + " " + name
}

func (o *Orchestrator) agentFor(domain Domain) agents.Agent {
	switch domain {
	case DomainGeography:
		return o.deps.Geography
	case DomainConservation:
		return o.deps.Conservation
	default:
		return o.deps.Research
	}
}
