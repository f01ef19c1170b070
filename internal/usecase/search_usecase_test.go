package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/fashion-search/internal/cfg"
	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any)            {}
func (nopLogger) Infof(format string, args ...any)             {}
func (nopLogger) Warnf(format string, args ...any)             {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

type fakeEncoder struct {
	vector    []float32
	err       error
	textCalls int
	imgCalls  int
	lastText  string
}

func (f *fakeEncoder) EncodeText(ctx context.Context, text string) (*EncodeRes, error) {
	f.textCalls++
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return NewEncodeRes(f.vector, "v1"), nil
}

func (f *fakeEncoder) EncodeImage(ctx context.Context, data []byte, contentType string) (*EncodeRes, error) {
	f.imgCalls++
	if f.err != nil {
		return nil, f.err
	}
	return NewEncodeRes(f.vector, "v1"), nil
}

type fakePointRepo struct {
	hits        []domain.SearchHit
	searchErr   error
	searchCalls int
	lastLimit   int
	lastVector  []float32

	upsertErr     error
	upsertCalls   int
	recreateCalls int
	count         uint64
	countErr      error
}

func (f *fakePointRepo) Recreate(ctx context.Context) error {
	f.recreateCalls++
	return nil
}

func (f *fakePointRepo) Upsert(ctx context.Context, points []domain.IndexPoint) error {
	f.upsertCalls++
	return f.upsertErr
}

func (f *fakePointRepo) Search(ctx context.Context, vector []float32, limit int) ([]domain.SearchHit, error) {
	f.searchCalls++
	f.lastLimit = limit
	f.lastVector = vector
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

func (f *fakePointRepo) Count(ctx context.Context) (uint64, error) {
	return f.count, f.countErr
}

func strPtr(s string) *string { return &s }

func makeHits(n int) []domain.SearchHit {
	hits := make([]domain.SearchHit, n)
	for i := range hits {
		hits[i] = domain.SearchHit{
			Score:     float32(n-i) / float32(n),
			ProductID: strPtr("1000" + string(rune('0'+i))),
			Name:      strPtr("Product"),
			Category:  strPtr("Apparel"),
		}
	}
	return hits
}

func newSearchUC(enc *fakeEncoder, repo *fakePointRepo, baseURL string) *SearchUseCase {
	return NewSearchUC(enc, repo, &cfg.StorageCfg{BaseURL: baseURL}, nopLogger{})
}

func TestSearchByText_RanksResults(t *testing.T) {
	enc := &fakeEncoder{vector: []float32{1, 0, 0}}
	repo := &fakePointRepo{hits: makeHits(3)}
	uc := newSearchUC(enc, repo, "https://cdn.example.com/images")

	res, err := uc.SearchByText(context.Background(), NewTextSearchReq("blue summer dress", 3))
	require.NoError(t, err)

	assert.Equal(t, "text", res.QueryType)
	assert.Equal(t, "blue summer dress", res.QueryContent["text"])
	require.Len(t, res.Results, 3)

	for i, sug := range res.Results {
		assert.Equal(t, i+1, sug.Rank)
		if i > 0 {
			assert.LessOrEqual(t, sug.Score, res.Results[i-1].Score)
		}
	}
}

func TestSearchByText_QueryVectorIsNormalized(t *testing.T) {
	enc := &fakeEncoder{vector: []float32{3, 4, 0}}
	repo := &fakePointRepo{hits: makeHits(1)}
	uc := newSearchUC(enc, repo, "")

	_, err := uc.SearchByText(context.Background(), NewTextSearchReq("dress", 1))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, vectorNorm(repo.lastVector), 1e-4)
}

func TestSearchByText_DefaultTopN(t *testing.T) {
	enc := &fakeEncoder{vector: []float32{1}}
	repo := &fakePointRepo{hits: makeHits(2)}
	uc := newSearchUC(enc, repo, "")

	res, err := uc.SearchByText(context.Background(), NewTextSearchReq("dress", 0))
	require.NoError(t, err)

	assert.Equal(t, TopNDefault, repo.lastLimit)
	assert.Equal(t, TopNDefault, res.QueryContent["top_n"])
}

func TestSearchByText_TruncatesExcessHits(t *testing.T) {
	enc := &fakeEncoder{vector: []float32{1}}
	repo := &fakePointRepo{hits: makeHits(5)}
	uc := newSearchUC(enc, repo, "")

	res, err := uc.SearchByText(context.Background(), NewTextSearchReq("dress", 2))
	require.NoError(t, err)

	assert.Len(t, res.Results, 2)
}

func TestSearchByText_EmptyQuery(t *testing.T) {
	enc := &fakeEncoder{vector: []float32{1}}
	uc := newSearchUC(enc, &fakePointRepo{}, "")

	_, err := uc.SearchByText(context.Background(), NewTextSearchReq("   ", 4))

	assert.ErrorIs(t, err, e.ErrEmptyQueryText)
	assert.Zero(t, enc.textCalls)
}

func TestSearchByText_InvalidTopN(t *testing.T) {
	enc := &fakeEncoder{vector: []float32{1}}
	uc := newSearchUC(enc, &fakePointRepo{}, "")

	_, err := uc.SearchByText(context.Background(), NewTextSearchReq("dress", 21))
	assert.ErrorIs(t, err, e.ErrInvalidTopN)

	_, err = uc.SearchByText(context.Background(), NewTextSearchReq("dress", -1))
	assert.ErrorIs(t, err, e.ErrInvalidTopN)

	assert.Zero(t, enc.textCalls)
}

func TestSearchByText_EncoderFailure(t *testing.T) {
	enc := &fakeEncoder{err: errors.New("encoder down")}
	repo := &fakePointRepo{}
	uc := newSearchUC(enc, repo, "")

	_, err := uc.SearchByText(context.Background(), NewTextSearchReq("dress", 4))

	require.Error(t, err)
	assert.Zero(t, repo.searchCalls)
}

func TestSearchByText_ImageURLBuilt(t *testing.T) {
	enc := &fakeEncoder{vector: []float32{1}}
	repo := &fakePointRepo{hits: []domain.SearchHit{
		{Score: 0.9, ProductID: strPtr("15970"), Name: strPtr("Turtle Check Shirt"), Category: strPtr("Apparel")},
	}}
	uc := newSearchUC(enc, repo, "https://cdn.example.com/images")

	res, err := uc.SearchByText(context.Background(), NewTextSearchReq("shirt", 1))
	require.NoError(t, err)

	require.NotNil(t, res.Results[0].ImageURL)
	assert.Equal(t, "https://cdn.example.com/images/15970.jpg", *res.Results[0].ImageURL)
}

func TestSearchByText_ImageURLNilWithoutBaseURL(t *testing.T) {
	enc := &fakeEncoder{vector: []float32{1}}
	repo := &fakePointRepo{hits: makeHits(1)}
	uc := newSearchUC(enc, repo, "")

	res, err := uc.SearchByText(context.Background(), NewTextSearchReq("shirt", 1))
	require.NoError(t, err)

	assert.Nil(t, res.Results[0].ImageURL)
}

func TestSearchByText_ImageURLNilWithoutProductID(t *testing.T) {
	enc := &fakeEncoder{vector: []float32{1}}
	repo := &fakePointRepo{hits: []domain.SearchHit{{Score: 0.5}}}
	uc := newSearchUC(enc, repo, "https://cdn.example.com/images")

	res, err := uc.SearchByText(context.Background(), NewTextSearchReq("shirt", 1))
	require.NoError(t, err)

	assert.Nil(t, res.Results[0].ImageURL)
}

func TestSearchByImage_Success(t *testing.T) {
	enc := &fakeEncoder{vector: []float32{0, 1}}
	repo := &fakePointRepo{hits: makeHits(2)}
	uc := newSearchUC(enc, repo, "")

	req := NewImageSearchReq([]byte{0xFF, 0xD8, 0xFF}, "image/jpeg", "query.jpg", 2)
	res, err := uc.SearchByImage(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "image", res.QueryType)
	assert.Equal(t, "query.jpg", res.QueryContent["filename"])
	assert.Len(t, res.Results, 2)
}

func TestSearchByImage_RejectsNonImageBeforeEncoding(t *testing.T) {
	enc := &fakeEncoder{vector: []float32{1}}
	uc := newSearchUC(enc, &fakePointRepo{}, "")

	req := NewImageSearchReq([]byte("just text"), "text/plain", "notes.txt", 4)
	_, err := uc.SearchByImage(context.Background(), req)

	assert.ErrorIs(t, err, e.ErrUnsupportedMediaType)
	assert.Zero(t, enc.imgCalls)
}

func TestSearchByImage_EmptyPayload(t *testing.T) {
	enc := &fakeEncoder{vector: []float32{1}}
	uc := newSearchUC(enc, &fakePointRepo{}, "")

	_, err := uc.SearchByImage(context.Background(), NewImageSearchReq(nil, "image/png", "a.png", 4))

	assert.ErrorIs(t, err, e.ErrNoImage)
	assert.Zero(t, enc.imgCalls)
}

func TestSearchByText_EmptyEncoderVector(t *testing.T) {
	enc := &fakeEncoder{vector: nil}
	repo := &fakePointRepo{}
	uc := newSearchUC(enc, repo, "")

	_, err := uc.SearchByText(context.Background(), NewTextSearchReq("dress", 4))

	assert.ErrorIs(t, err, e.ErrEmptyVector)
	assert.Zero(t, repo.searchCalls)
}
