package usecase

import (
	"context"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
	"github.com/fadilmartias/job-matcher/internal/cache"
	"github.com/fadilmartias/job-matcher/internal/embedding"
	"github.com/fadilmartias/job-matcher/internal/model"
	"github.com/fadilmartias/job-matcher/internal/repository"
)

// memoryJobStore mimics JobRepository over a slice, including the
// similarity ordering the SQL query expresses.
type memoryJobStore struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]*model.JobPosting
	deleted map[uuid.UUID]bool

	updateErr  map[uuid.UUID]error
	searchErr  error
	lastOffset int
}

func newMemoryJobStore(jobs ...model.JobPosting) *memoryJobStore {
	s := &memoryJobStore{
		jobs:      map[uuid.UUID]*model.JobPosting{},
		deleted:   map[uuid.UUID]bool{},
		updateErr: map[uuid.UUID]error{},
	}
	for i := range jobs {
		j := jobs[i]
		s.jobs[j.ID] = &j
	}
	return s
}

func (s *memoryJobStore) active(id uuid.UUID) (*model.JobPosting, bool) {
	j, ok := s.jobs[id]
	if !ok || s.deleted[id] {
		return nil, false
	}
	return j, true
}

func (s *memoryJobStore) FindJobsMissingEmbedding(_ context.Context) ([]model.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.JobPosting
	for id, j := range s.jobs {
		if s.deleted[id] || j.Embedding != nil {
			continue
		}
		out = append(out, *j)
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].ID.String() < out[b].ID.String()
	})
	return out, nil
}

func (s *memoryJobStore) GetJob(_ context.Context, id uuid.UUID) (*model.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.active(id)
	if !ok {
		return nil, apperrors.NotFound("job not found", nil)
	}
	cp := *j
	return &cp, nil
}

func (s *memoryJobStore) UpdateEmbedding(_ context.Context, id uuid.UUID, vec []float32, createdAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.updateErr[id]; err != nil {
		return err
	}
	j, ok := s.active(id)
	if !ok {
		return apperrors.NotFound("job not found", nil)
	}
	v := pgvector.NewVector(append([]float32(nil), vec...))
	j.Embedding = &v
	j.EmbeddingCreatedAt = &createdAt
	return nil
}

func (s *memoryJobStore) ClearEmbedding(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.active(id)
	if !ok {
		return apperrors.NotFound("job not found", nil)
	}
	j.Embedding = nil
	j.EmbeddingCreatedAt = nil
	return nil
}

func (s *memoryJobStore) SearchSimilar(_ context.Context, vec []float32, filter repository.SimilarityFilter, limit, offset int) (*repository.SimilarJobs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastOffset = offset
	if s.searchErr != nil {
		return nil, s.searchErr
	}

	var rows []model.ScoredJob
	for id, j := range s.jobs {
		if s.deleted[id] || !j.HasEmbedding() {
			continue
		}
		if filter.MinScore > 0 && (j.CfoScore == nil || *j.CfoScore < filter.MinScore) {
			continue
		}
		if filter.ExcludeID != nil && *filter.ExcludeID == id {
			continue
		}
		rows = append(rows, model.ScoredJob{JobPosting: *j, Distance: cosineDistance(vec, j.Embedding.Slice())})
	}
	sort.Slice(rows, func(a, b int) bool {
		ra, rb := rows[a], rows[b]
		if ra.Distance != rb.Distance {
			return ra.Distance < rb.Distance
		}
		ta, tb := *ra.EmbeddingCreatedAt, *rb.EmbeddingCreatedAt
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return ra.ID.String() < rb.ID.String()
	})

	result := &repository.SimilarJobs{Items: []model.ScoredJob{}, Total: int64(len(rows))}
	if offset >= len(rows) {
		return result, nil
	}
	result.Items = rows[offset:min(offset+limit, len(rows))]
	return result, nil
}

func (s *memoryJobStore) embedding(id uuid.UUID) []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.jobs[id]
	if j == nil || j.Embedding == nil {
		return nil
	}
	return j.Embedding.Slice()
}

func (s *memoryJobStore) setDescription(id uuid.UUID, desc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id].Description = desc
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

type memoryRunStore struct {
	mu   sync.Mutex
	runs map[uuid.UUID]model.EmbeddingRun
	done chan uuid.UUID
}

func newMemoryRunStore() *memoryRunStore {
	return &memoryRunStore{runs: map[uuid.UUID]model.EmbeddingRun{}, done: make(chan uuid.UUID, 8)}
}

func (s *memoryRunStore) CreateRun(_ context.Context, run *model.EmbeddingRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	return nil
}

func (s *memoryRunStore) UpdateRun(_ context.Context, run *model.EmbeddingRun) error {
	s.mu.Lock()
	s.runs[run.ID] = *run
	s.mu.Unlock()
	s.done <- run.ID
	return nil
}

func (s *memoryRunStore) FindRunByID(_ context.Context, id uuid.UUID) (*model.EmbeddingRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, apperrors.NotFound("embedding run not found", nil)
	}
	return &run, nil
}

// fakeProvider derives a deterministic vector from the input text unless
// respond overrides it.
type fakeProvider struct {
	mu      sync.Mutex
	calls   []string
	respond func(text string, call int) ([]float32, error)
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	p.calls = append(p.calls, text)
	call := len(p.calls)
	respond := p.respond
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if respond != nil {
		return respond(text, call)
	}
	return textVector(text), nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *fakeProvider) callsContaining(sub string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if strings.Contains(c, sub) {
			n++
		}
	}
	return n
}

// blockingProvider never answers; each call ends when its context does.
type blockingProvider struct {
	calls atomic.Int32
}

func (p *blockingProvider) Name() string { return "fake" }

func (p *blockingProvider) Embed(ctx context.Context, _ string) ([]float32, error) {
	p.calls.Add(1)
	<-ctx.Done()
	return nil, ctx.Err()
}

func posInf() float64 { return math.Inf(1) }

func textVector(text string) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, embedding.Dimensions)
	for i := range vec {
		vec[i] = float32(math.Sin(float64(seed%100003) + float64(i)))
	}
	return vec
}

// axisVector returns a vector whose first two components are x and y.
func axisVector(x, y float32) []float32 {
	vec := make([]float32, embedding.Dimensions)
	vec[0], vec[1] = x, y
	return vec
}

func embeddedJob(title string, vec []float32, score *int, createdAt time.Time) model.JobPosting {
	v := pgvector.NewVector(vec)
	return model.JobPosting{
		ID:                 uuid.New(),
		Title:              title,
		Description:        title + " description",
		Embedding:          &v,
		EmbeddingCreatedAt: &createdAt,
		CfoScore:           score,
	}
}

func intPtr(v int) *int { return &v }

type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
	getErr  error
	sets    int
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}}
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := value.(string)
	if !ok {
		return cache.ErrInvalidValue
	}
	c.values[key] = s
	c.sets++
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return c.getErr
	}
	v, ok := c.values[key]
	if !ok {
		return cache.ErrNotFound
	}
	*(dest.(*string)) = v
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	c.deletes++
	return nil
}

func (c *memoryCache) Close() error { return nil }
