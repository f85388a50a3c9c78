package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/223MapAction/Model-deploy/internal/config"
	"github.com/223MapAction/Model-deploy/internal/model"
)

// Vocabulary is the fixed tag set the classifier scores. Probability vectors
// are always aligned to this order.
var Vocabulary = []string{
	"Caniveau obstrué",
	"Déchets",
	"Déforestation",
	"Feux de brousse",
	"Pollution de leau",
	"Pollution de lair",
	"Sécheresse",
	"Sol dégradé",
}

const (
	confidenceThreshold = 0.4
	maxPredictions      = 3
)

// VisionClient classifies incident photos with a multimodal model call.
type VisionClient struct {
	client *genai.Client
	model  string
}

func NewVisionClient(cfg config.GenAIConfig) (*VisionClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing AI_API_KEY")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, err
	}
	return &VisionClient{client: client, model: cfg.VisionModel}, nil
}

func classificationPrompt() string {
	var b strings.Builder
	b.WriteString("Analyze this image and identify if it contains any of the following environmental issues:\n\n")
	for i, tag := range Vocabulary {
		fmt.Fprintf(&b, "%d. %s\n", i+1, tag)
	}
	b.WriteString("\nIf none of these environmental issues are present, respond with \"")
	b.WriteString(model.NoIssueTag)
	b.WriteString("\".\n\n")
	b.WriteString("For each identified issue, assign a probability between 0 and 1 indicating your confidence.\n")
	b.WriteString("Format your response as a JSON object with fields:\n")
	b.WriteString("- identified_issues: array of objects with \"tag\" and \"probability\" fields\n")
	b.WriteString("- all_probabilities: array of probability values for all issues in the order listed above\n")
	return b.String()
}

// Classify sends the raw image bytes to the vision model and returns the tags
// above threshold (top 3, descending confidence) plus the full probability
// vector aligned to Vocabulary. The call itself may fail; turning failures
// into the sentinel classification is the job layer's responsibility.
func (c *VisionClient) Classify(ctx context.Context, imageBytes []byte) (model.Classification, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(classificationPrompt()),
			genai.NewPartFromBytes(imageBytes, "image/jpeg"),
		}, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText("You are an environmental issue detection assistant.", genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0),
	}
	res, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return model.Classification{}, err
	}
	return parseClassification([]byte(res.Text()))
}

type visionPayload struct {
	IdentifiedIssues []struct {
		Tag         string  `json:"tag"`
		Probability float64 `json:"probability"`
	} `json:"identified_issues"`
	AllProbabilities []float64 `json:"all_probabilities"`
}

func parseClassification(raw []byte) (model.Classification, error) {
	var payload visionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return model.Classification{}, fmt.Errorf("parse vision response: %w", err)
	}

	probs := alignProbabilities(payload.AllProbabilities)

	noIssue := len(payload.IdentifiedIssues) == 0
	for _, issue := range payload.IdentifiedIssues {
		if issue.Tag == model.NoIssueTag {
			noIssue = true
			break
		}
	}
	if noIssue {
		return model.Classification{
			Predictions:   []model.TagScore{{Tag: model.NoIssueTag, Confidence: 1}},
			Probabilities: make([]float64, len(Vocabulary)),
		}, nil
	}

	preds := make([]model.TagScore, 0, len(payload.IdentifiedIssues))
	for _, issue := range payload.IdentifiedIssues {
		conf := clamp01(issue.Probability)
		if conf > confidenceThreshold {
			preds = append(preds, model.TagScore{Tag: issue.Tag, Confidence: conf})
		}
	}
	sort.SliceStable(preds, func(i, j int) bool { return preds[i].Confidence > preds[j].Confidence })
	if len(preds) > maxPredictions {
		preds = preds[:maxPredictions]
	}
	if len(preds) == 0 {
		preds = []model.TagScore{{Tag: model.NoIssueTag, Confidence: 1}}
		probs = make([]float64, len(Vocabulary))
	}

	return model.Classification{Predictions: preds, Probabilities: probs}, nil
}

// alignProbabilities truncates or zero-pads the model vector to the
// vocabulary length and clamps every entry to [0,1].
func alignProbabilities(probs []float64) []float64 {
	out := make([]float64, len(Vocabulary))
	for i := range out {
		if i < len(probs) {
			out[i] = clamp01(probs[i])
		}
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
