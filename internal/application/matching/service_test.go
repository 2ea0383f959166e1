package matching

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herbwise/fangmatch/internal/application/catalog"
	"github.com/herbwise/fangmatch/internal/domain/formula"
	"github.com/herbwise/fangmatch/internal/domain/herb"
	"github.com/herbwise/fangmatch/internal/infrastructure/database/redis"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
	"github.com/herbwise/fangmatch/internal/intelligence/analysis"
	"github.com/herbwise/fangmatch/internal/intelligence/identify"
)

type staticCatalog struct {
	formulas []*formula.StandardFormula
}

func (c *staticCatalog) Snapshot() []*formula.StandardFormula { return c.formulas }

// memoryCache mimics the redis cache contract, including the null-result
// sentinel, without a server.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok || raw == nil {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	if err := m.Get(ctx, key, dest); err == nil {
		return nil
	}
	m.mu.Lock()
	raw, cached := m.data[key]
	m.mu.Unlock()
	if cached && raw == nil {
		return redis.ErrCacheMiss
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}
	if value == nil {
		m.mu.Lock()
		m.data[key] = nil
		m.mu.Unlock()
		return redis.ErrCacheMiss
	}
	if err := m.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return m.Get(ctx, key, dest)
}

func seedService(t *testing.T, options ...Option) *Service {
	t.Helper()
	cat := &staticCatalog{formulas: catalog.SeedFormulas()}
	return NewService(cat, formula.DefaultMatcherOptions(), logging.NewNopLogger(), options...)
}

func TestParseText(t *testing.T) {
	t.Parallel()

	svc := seedService(t)
	parsed := svc.ParseText("麻黄9g，桂枝6g，300ml，甘草3g")
	assert.Len(t, parsed.Entries, 3)
	assert.Equal(t, 4, parsed.Total)
	assert.Equal(t, 1, parsed.Dropped)
}

func TestMatchTextExact(t *testing.T) {
	t.Parallel()

	svc := seedService(t)
	out, err := svc.MatchText(context.Background(), "麻黄9g 桂枝6g 杏仁9g 甘草3g")
	require.NoError(t, err)
	require.NotEmpty(t, out.Results)

	top := out.Results[0]
	assert.Equal(t, "麻黄汤", top.Formula.Name)
	assert.Equal(t, formula.MatchExact, top.MatchType)
	assert.InDelta(t, 1.0, top.Score, 1e-9)
	assert.False(t, out.FromIdentify)
	assert.Len(t, out.Input, 4)
}

func TestMatchHerbsCapsResults(t *testing.T) {
	t.Parallel()

	svc := seedService(t, WithMaxResults(1))
	out, err := svc.MatchText(context.Background(), "麻黄 桂枝 杏仁 甘草")
	require.NoError(t, err)
	assert.Len(t, out.Results, 1)
}

func TestMatchHerbsEmptyInput(t *testing.T) {
	t.Parallel()

	svc := seedService(t)
	out, err := svc.MatchText(context.Background(), "300ml advice 3x")
	require.NoError(t, err)
	assert.Empty(t, out.Input)
	assert.Empty(t, out.Results)
}

func TestMatchHerbsIdentifyFallback(t *testing.T) {
	t.Parallel()

	mock := identify.NewMockIdentifier()
	mock.Respond([]string{"丹参", "三七", "冰片"}, &formula.StandardFormula{
		ID:          "ai-1",
		Name:        "复方丹参方",
		Composition: []string{"丹参", "三七", "冰片"},
	})

	svc := seedService(t, WithIdentifier(mock))
	out, err := svc.MatchText(context.Background(), "丹参15g 三七5g 冰片1g")
	require.NoError(t, err)
	require.NotEmpty(t, out.Results)

	top := out.Results[0]
	assert.True(t, out.FromIdentify)
	assert.True(t, top.Formula.IsAIGenerated)
	assert.Equal(t, "复方丹参方", top.Formula.Name)
	assert.Equal(t, formula.MatchExact, top.MatchType)
}

func TestMatchHerbsIdentifyNoAnswer(t *testing.T) {
	t.Parallel()

	svc := seedService(t, WithIdentifier(identify.NewMockIdentifier()))
	out, err := svc.MatchText(context.Background(), "丹参15g 三七5g 冰片1g")
	require.NoError(t, err)
	assert.Empty(t, out.Results)
	assert.False(t, out.FromIdentify)
}

func TestMatchHerbsIdentifyCached(t *testing.T) {
	t.Parallel()

	mock := identify.NewMockIdentifier()
	mock.Respond([]string{"丹参", "三七", "冰片"}, &formula.StandardFormula{
		ID:          "ai-1",
		Name:        "复方丹参方",
		Composition: []string{"丹参", "三七", "冰片"},
	})

	svc := seedService(t, WithIdentifier(mock), WithCache(newMemoryCache()))
	for i := 0; i < 3; i++ {
		out, err := svc.MatchText(context.Background(), "丹参15g 三七5g 冰片1g")
		require.NoError(t, err)
		require.NotEmpty(t, out.Results)
		assert.True(t, out.FromIdentify)
	}
	assert.Equal(t, 1, mock.Calls())
}

func TestMatchHerbsNullIdentifyCached(t *testing.T) {
	t.Parallel()

	mock := identify.NewMockIdentifier()
	svc := seedService(t, WithIdentifier(mock), WithCache(newMemoryCache()))

	for i := 0; i < 3; i++ {
		out, err := svc.MatchText(context.Background(), "丹参15g 三七5g 冰片1g")
		require.NoError(t, err)
		assert.Empty(t, out.Results)
	}
	// The empty answer is cached too; only the first miss reaches the
	// identifier.
	assert.Equal(t, 1, mock.Calls())
}

func TestMatchHerbsAttachesAnalysis(t *testing.T) {
	t.Parallel()

	svc := seedService(t, WithAnalyzer(analysis.MockAnalyzer{}))
	out, err := svc.MatchText(context.Background(), "麻黄9g 桂枝6g 杏仁9g 甘草3g")
	require.NoError(t, err)
	require.NotEmpty(t, out.Results)
	assert.Contains(t, out.Analysis, "麻黄汤")
}

func TestMatchHerbsPrefersStoredAnalysis(t *testing.T) {
	t.Parallel()

	cat := &staticCatalog{formulas: []*formula.StandardFormula{{
		ID:          "f1",
		Name:        "麻黄汤",
		Composition: []string{"麻黄", "桂枝", "杏仁", "甘草"},
		Analysis:    "麻黄发汗解表为君。",
	}}}
	svc := NewService(cat, formula.DefaultMatcherOptions(), logging.NewNopLogger(),
		WithAnalyzer(analysis.MockAnalyzer{}))

	out, err := svc.MatchHerbs(context.Background(), []herb.Entry{
		{Name: "麻黄"}, {Name: "桂枝"}, {Name: "杏仁"}, {Name: "甘草"},
	})
	require.NoError(t, err)
	assert.Equal(t, "麻黄发汗解表为君。", out.Analysis)
}
