package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/herbal-remedy-api/internal/application/ranking"
	"github.com/herbal-remedy-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct{ mock.Mock }

func (m *mockExtractor) Extract(ctx context.Context, text string) (map[string]string, error) {
	args := m.Called(ctx, text)
	if s, _ := args.Get(0).(map[string]string); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockClassifier struct{ mock.Mock }

func (m *mockClassifier) Classify(ctx context.Context, inputs []string) (map[string]string, error) {
	args := m.Called(ctx, inputs)
	if c, _ := args.Get(0).(map[string]string); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type fixtureCatalog struct{ docs []domain.CatalogDocument }

func (f *fixtureCatalog) FindByUse(_ context.Context, _ string) ([]domain.CatalogDocument, error) {
	return f.docs, nil
}

func doc(name, use, hazard string, med, edi int) domain.CatalogDocument {
	return domain.CatalogDocument{
		domain.CatalogCommonName:      name,
		domain.CatalogUses:            []any{use},
		domain.CatalogMedicinalRating: float64(med),
		domain.CatalogEdibilityRating: float64(edi),
		domain.CatalogHazards:         hazard,
		domain.CatalogImageURLs:       "https://img/" + name + ".jpg",
	}
}

var catalog = &fixtureCatalog{docs: []domain.CatalogDocument{
	doc("willow", "Febrifuge", "Aspirin sensitivity", 5, 1),
	doc("yarrow", "Febrifuge", "None known", 4, 2),
	doc("feverfew", "Febrifuge", "None known", 4, 1),
	doc("borage", "Febrifuge", "None known", 2, 4),
	doc("elder", "Febrifuge", "None known", 1, 5),
	doc("ginger", "Antiemetic", "None known", 4, 4),
	doc("peppermint", "Antiemetic", "None known", 3, 3),
}}

type failingCatalog struct{ err error }

func (f failingCatalog) FindByUse(context.Context, string) ([]domain.CatalogDocument, error) {
	return nil, f.err
}

func newService(ex *mockExtractor, cl *mockClassifier) Service {
	return NewService(ServiceDeps{
		Extractor:  ex,
		Classifier: cl,
		Ranker:     ranking.NewEngine(catalog),
		Timeout:    time.Second,
	})
}

func plantNames(infos []domain.PlantInfo) []string {
	out := make([]string, len(infos))
	for i, p := range infos {
		out[i] = p.PlantName
	}
	return out
}

// --- tests ---

func TestRecommend_HeadacheAndNausea(t *testing.T) {
	ex := &mockExtractor{}
	cl := &mockClassifier{}
	text := "I have a headache and feel nauseous"
	ex.On("Extract", mock.Anything, text).Return(map[string]string{"headache": "", "nausea": ""}, nil)
	cl.On("Classify", mock.Anything, []string{"headache", "nausea"}).
		Return(map[string]string{"headache": "Febrifuge", "nausea": "Antiemetic"}, nil)

	set, err := newService(ex, cl).Recommend(context.Background(), text, false)
	require.NoError(t, err)
	assert.Len(t, set, 2)
	assert.Equal(t, []string{"yarrow", "feverfew", "borage"}, plantNames(set["headache"]))
	assert.Equal(t, []string{"ginger", "peppermint"}, plantNames(set["nausea"]))
	assert.Equal(t, []string{"https://img/yarrow.jpg"}, set["headache"][0].PlantImageURL)
	ex.AssertExpectations(t)
	cl.AssertExpectations(t)
}

func TestRecommend_PreferEdible(t *testing.T) {
	ex := &mockExtractor{}
	cl := &mockClassifier{}
	ex.On("Extract", mock.Anything, "fever").Return(map[string]string{"fever": ""}, nil)
	cl.On("Classify", mock.Anything, mock.Anything).Return(map[string]string{"fever": "Febrifuge"}, nil)

	set, err := newService(ex, cl).Recommend(context.Background(), "fever", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"elder", "borage", "yarrow"}, plantNames(set["fever"]))
}

func TestRecommend_ContextIsDisambiguated(t *testing.T) {
	ex := &mockExtractor{}
	cl := &mockClassifier{}
	ex.On("Extract", mock.Anything, mock.Anything).Return(map[string]string{"stomach ache": "gas"}, nil)
	cl.On("Classify", mock.Anything, []string{"stomach ache due to gas"}).
		Return(map[string]string{"stomach ache due to gas": "Carminative"}, nil)

	set, err := newService(ex, cl).Recommend(context.Background(), "my stomach hurts from gas", false)
	require.NoError(t, err)
	// keyed by the bare symptom, no Carminative plants in the fixture
	got, ok := set["stomach ache"]
	require.True(t, ok)
	assert.Empty(t, got)
}

func TestRecommend_MissingClassificationFailsWholeRequest(t *testing.T) {
	ex := &mockExtractor{}
	cl := &mockClassifier{}
	ex.On("Extract", mock.Anything, mock.Anything).Return(map[string]string{"headache": "", "nausea": ""}, nil)
	cl.On("Classify", mock.Anything, mock.Anything).Return(map[string]string{"headache": "Febrifuge"}, nil)

	set, err := newService(ex, cl).Recommend(context.Background(), "headache and nausea", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	assert.Nil(t, set)
}

func TestRecommend_ExtractorFailure(t *testing.T) {
	ex := &mockExtractor{}
	ex.On("Extract", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := newService(ex, &mockClassifier{}).Recommend(context.Background(), "headache", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRecommend_ClassifierFailure(t *testing.T) {
	ex := &mockExtractor{}
	cl := &mockClassifier{}
	ex.On("Extract", mock.Anything, mock.Anything).Return(map[string]string{"cough": ""}, nil)
	cl.On("Classify", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)

	_, err := newService(ex, cl).Recommend(context.Background(), "cough", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRecommend_CatalogFailureIsPersistenceError(t *testing.T) {
	ex, cl := new(mockExtractor), new(mockClassifier)
	ex.On("Extract", mock.Anything, "fever").Return(map[string]string{"fever": ""}, nil)
	cl.On("Classify", mock.Anything, mock.Anything).Return(map[string]string{"fever": "Febrifuge"}, nil)
	svc := NewService(ServiceDeps{
		Extractor:  ex,
		Classifier: cl,
		Ranker:     ranking.NewEngine(failingCatalog{err: errors.New("ProvisionedThroughputExceededException")}),
		Timeout:    time.Second,
	})

	_, err := svc.Recommend(context.Background(), "fever", false)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorContains(t, err, "ProvisionedThroughputExceededException")
}

func TestRecommend_NoSymptomsSkipsClassification(t *testing.T) {
	ex := &mockExtractor{}
	cl := &mockClassifier{}
	ex.On("Extract", mock.Anything, mock.Anything).Return(map[string]string{}, nil)

	set, err := newService(ex, cl).Recommend(context.Background(), "I feel great", false)
	require.NoError(t, err)
	assert.Empty(t, set)
	cl.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
}

func TestRecommend_EmptyText(t *testing.T) {
	_, err := newService(&mockExtractor{}, &mockClassifier{}).Recommend(context.Background(), "   ", false)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestRecommend_UpstreamCallsCarryDeadline(t *testing.T) {
	ex := &mockExtractor{}
	cl := &mockClassifier{}
	hasDeadline := mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})
	ex.On("Extract", hasDeadline, mock.Anything).Return(map[string]string{"cough": ""}, nil)
	cl.On("Classify", hasDeadline, mock.Anything).Return(map[string]string{"cough": "Antitussive"}, nil)

	_, err := newService(ex, cl).Recommend(context.Background(), "cough", false)
	require.NoError(t, err)
	ex.AssertExpectations(t)
	cl.AssertExpectations(t)
}

func TestDisambiguate(t *testing.T) {
	assert.Equal(t, "nausea", Disambiguate(domain.SymptomContext{Symptom: "nausea"}))
	assert.Equal(t, "nausea", Disambiguate(domain.SymptomContext{Symptom: "nausea", Context: "  "}))
	assert.Equal(t, "nausea due to pregnancy", Disambiguate(domain.SymptomContext{Symptom: "nausea", Context: " pregnancy "}))
}
