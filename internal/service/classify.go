package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/223MapAction/Model-deploy/internal/client"
	"github.com/223MapAction/Model-deploy/internal/model"
)

// Classifier is the vision backend. Vendor choice (hosted vision model,
// local network) is swappable behind this interface.
type Classifier interface {
	Classify(ctx context.Context, imageBytes []byte) (model.Classification, error)
}

// ClassifyService wraps the classifier with the non-throwing job contract:
// backend failures become the sentinel tag instead of an error, because job
// results carry values, not exceptions.
type ClassifyService struct {
	classifier Classifier
	log        zerolog.Logger
}

func NewClassifyService(classifier Classifier, log zerolog.Logger) *ClassifyService {
	return &ClassifyService{
		classifier: classifier,
		log:        log.With().Str("component", "classify").Logger(),
	}
}

func (s *ClassifyService) Classify(ctx context.Context, imageBytes []byte) model.Classification {
	classification, err := s.classifier.Classify(ctx, imageBytes)
	if err != nil {
		s.log.Error().Err(err).Msg("classification backend failed")
		return model.Classification{
			Predictions:   []model.TagScore{{Tag: model.ErrorTag, Confidence: 0}},
			Probabilities: make([]float64, len(client.Vocabulary)),
		}
	}
	return classification
}
