package orchestrator

import (
	"context"
	"strings"

	"sanjeevani/internal/llm"
	"sanjeevani/internal/logging"
)

// Domain names a routing destination.
type Domain string

const (
	DomainResearch     Domain = "research"
	DomainGeography    Domain = "geography"
	DomainConservation Domain = "conservation"
)

// Classifier decides the destination domain for a step. The rule-based
// implementation keeps routing testable without a live model; the
// model-backed one handles steps the rules cannot.
type Classifier interface {
	Classify(ctx context.Context, step string) (Domain, error)
}

// geographyKeywords short-circuit routing before any classifier runs.
var geographyKeywords = []string{"where", "habitat", "region", "distribution", "grow"}

// routeByKeyword is the routing fast path. Empty result means no
// keyword matched.
func routeByKeyword(step string) Domain {
	lower := strings.ToLower(step)
	for _, kw := range geographyKeywords {
		if strings.Contains(lower, kw) {
			return DomainGeography
		}
	}
	return ""
}

// Router picks the agent for each step: keyword fast path first, then
// the classifier, defaulting to research on any failure.
type Router struct {
	classifier Classifier
}

func NewRouter(classifier Classifier) *Router {
	if classifier == nil {
		classifier = RuleClassifier{}
	}
	return &Router{classifier: classifier}
}

func (r *Router) Route(ctx context.Context, step string) Domain {
	if d := routeByKeyword(step); d != "" {
		logging.Routing("keyword route %q -> %s", step, d)
		return d
	}
	d, err := r.classifier.Classify(ctx, step)
	if err != nil || d == "" {
		logging.Routing("classification failed for %q, defaulting to research: %v", step, err)
		return DomainResearch
	}
	logging.Routing("classified %q -> %s", step, d)
	return d
}

// RuleClassifier routes on domain vocabulary alone.
type RuleClassifier struct{}

var conservationKeywords = []string{
	"endangered", "conservation", "threat", "iucn", "extinct", "vulnerable", "red list",
}

func (RuleClassifier) Classify(_ context.Context, step string) (Domain, error) {
	lower := strings.ToLower(step)
	for _, kw := range conservationKeywords {
		if strings.Contains(lower, kw) {
			return DomainConservation, nil
		}
	}
	return DomainResearch, nil
}

// LLMClassifier asks a small model to pick the destination.
type LLMClassifier struct {
	llm   llm.Client
	model string
}

func NewLLMClassifier(client llm.Client, model string) *LLMClassifier {
	return &LLMClassifier{llm: client, model: model}
}

func (c *LLMClassifier) Classify(ctx context.Context, step string) (Domain, error) {
	raw, err := c.llm.Complete(ctx, llm.Request{
		Model: c.model,
		System: "Classify a botanical research step into exactly one category. " +
			"Reply with one word: RESEARCH (uses, chemistry, pharmacology), " +
			"GIS (locations, habitat), or IUCN (conservation status, threats).",
		Prompt:      step,
		MaxTokens:   8,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "GIS":
		return DomainGeography, nil
	case "IUCN":
		return DomainConservation, nil
	default:
		return DomainResearch, nil
	}
}
