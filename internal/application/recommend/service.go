package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/herbal-remedy-api/internal/domain"
)

// Extractor turns free text into symptom -> context pairs (context may be empty).
type Extractor interface {
	Extract(ctx context.Context, text string) (map[string]string, error)
}

// Classifier maps every input string to exactly one condition tag.
type Classifier interface {
	Classify(ctx context.Context, inputs []string) (map[string]string, error)
}

// Ranker returns ranked remedies for a condition tag.
type Ranker interface {
	Rank(ctx context.Context, condition string, preferEdible bool, limit int) ([]domain.PlantInfo, error)
}

type Service interface {
	Recommend(ctx context.Context, freeText string, preferEdible bool) (domain.RecommendationSet, error)
}

type ServiceDeps struct {
	Extractor  Extractor
	Classifier Classifier
	Ranker     Ranker
	// Timeout bounds each upstream call (extraction, classification).
	Timeout time.Duration
}

type service struct {
	extractor  Extractor
	classifier Classifier
	ranker     Ranker
	timeout    time.Duration
}

func NewService(deps ServiceDeps) Service {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &service{
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		ranker:     deps.Ranker,
		timeout:    timeout,
	}
}

// Recommend runs extraction, classification and ranking in sequence. Any stage failure
// fails the whole request; partial recommendations are never returned.
func (s *service) Recommend(ctx context.Context, freeText string, preferEdible bool) (domain.RecommendationSet, error) {
	if strings.TrimSpace(freeText) == "" {
		return nil, fmt.Errorf("medical concern is required: %w", domain.ErrValidation)
	}

	symptoms, err := s.extract(ctx, freeText)
	if err != nil {
		return nil, err
	}
	out := make(domain.RecommendationSet, len(symptoms))
	if len(symptoms) == 0 {
		return out, nil
	}

	inputs := make([]string, len(symptoms))
	for i, sc := range symptoms {
		inputs[i] = Disambiguate(sc)
	}
	conditions, err := s.classify(ctx, inputs)
	if err != nil {
		return nil, err
	}

	for i, sc := range symptoms {
		condition, ok := conditions[inputs[i]]
		if !ok || strings.TrimSpace(condition) == "" {
			return nil, fmt.Errorf("no condition returned for %q: %w", inputs[i], domain.ErrUpstream)
		}
		plants, err := s.ranker.Rank(ctx, condition, preferEdible, domain.DefaultRankLimit)
		if err != nil {
			return nil, fmt.Errorf("rank %q: %w: %w", sc.Symptom, domain.ErrPersistence, err)
		}
		out[sc.Symptom] = plants
	}
	return out, nil
}

func (s *service) extract(ctx context.Context, text string) ([]domain.SymptomContext, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	raw, err := s.extractor.Extract(cctx, text)
	if err != nil {
		return nil, fmt.Errorf("extract symptoms: %w: %w", domain.ErrUpstream, err)
	}
	symptoms := make([]domain.SymptomContext, 0, len(raw))
	for symptom, cause := range raw {
		if strings.TrimSpace(symptom) == "" {
			continue
		}
		symptoms = append(symptoms, domain.SymptomContext{Symptom: symptom, Context: cause})
	}
	sort.Slice(symptoms, func(i, j int) bool { return symptoms[i].Symptom < symptoms[j].Symptom })
	return symptoms, nil
}

func (s *service) classify(ctx context.Context, inputs []string) (map[string]string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	conditions, err := s.classifier.Classify(cctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("classify symptoms: %w: %w", domain.ErrUpstream, err)
	}
	return conditions, nil
}

// Disambiguate flattens a symptom and its context into the string sent for classification.
func Disambiguate(sc domain.SymptomContext) string {
	if c := strings.TrimSpace(sc.Context); c != "" {
		return sc.Symptom + " due to " + c
	}
	return sc.Symptom
}
