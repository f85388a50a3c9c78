package service

import (
	"context"
	"fmt"

	"github.com/223MapAction/Model-deploy/internal/prompt"
)

// TextGenerator is the text-model backend used for analysis, solution and
// narrative generation.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// ContextService produces the textual analysis and remediation
// recommendation for a classified incident.
type ContextService struct {
	llm TextGenerator
}

func NewContextService(llm TextGenerator) *ContextService {
	return &ContextService{llm: llm}
}

// GenerateContext runs the problem-analysis and solution-recommendation
// prompts. The two calls share no data, so they run concurrently; both must
// succeed.
func (s *ContextService) GenerateContext(ctx context.Context, incidentType string, structures []string, zone string) (string, string, error) {
	type result struct {
		text string
		err  error
	}

	solutionCh := make(chan result, 1)
	go func() {
		text, err := s.llm.Generate(ctx, prompt.Solution(incidentType, structures, zone),
			fmt.Sprintf("Recommandez des solutions pour l'incident de type '%s' dans la zone indiquée.", incidentType))
		solutionCh <- result{text: text, err: err}
	}()

	analysis, err := s.llm.Generate(ctx, prompt.Analysis(incidentType, structures, zone),
		fmt.Sprintf("Analysez l'impact de l'incident de type '%s' dans la zone indiquée.", incidentType))
	solution := <-solutionCh

	if err != nil {
		return "", "", fmt.Errorf("analysis generation failed: %w", err)
	}
	if solution.err != nil {
		return "", "", fmt.Errorf("solution generation failed: %w", solution.err)
	}
	return analysis, solution.text, nil
}
