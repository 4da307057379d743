package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"card_scraper/internal/parser"
	"card_scraper/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo serves dumps from memory.
type memRepo struct {
	mu      sync.Mutex
	dumps   map[string]string
	fetched []string
}

func (m *memRepo) Fetch(ctx context.Context, path string) (io.Reader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, path)
	text, ok := m.dumps[path]
	if !ok {
		return nil, repository.ErrDumpNotFound
	}
	return strings.NewReader(text), nil
}

func newTestService(dumps map[string]string) (CardService, *memRepo) {
	repo := &memRepo{dumps: dumps}
	return NewCardService(repo, parser.NewCardParser()), repo
}

const shinhan = `[[ 카드사: 신한카드 ]]
■ 신한카드 Deep Dream
이미지: http://img/deep
상세링크: http://link/deep
[기본적립]
    0.7% 적립
■ 신한카드 Mr.Life(단종)
이미지: http://img/mr
`

const kb = `■ KB국민 My WE:SH
[통신]
    10% 할인
■ 유의사항
    전월실적 40만원
`

func TestLoadCards(t *testing.T) {
	svc, _ := newTestService(map[string]string{"shinhan.txt": shinhan})

	cards, stats, err := svc.LoadCards(context.Background(), "shinhan.txt")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, 1, stats.Discontinued)

	c := cards[0]
	assert.Equal(t, "신한카드 Deep Dream", c.Name)
	require.NotNil(t, c.ImageURL)
	assert.Equal(t, "http://img/deep", *c.ImageURL)
	require.NotNil(t, c.DetailLink)
	assert.Equal(t, "http://link/deep", *c.DetailLink)
	v, _ := c.Sections.Get("기본적립")
	assert.Equal(t, "0.7% 적립", v)
}

func TestLoadCards_MissingDump(t *testing.T) {
	svc, _ := newTestService(nil)

	_, _, err := svc.LoadCards(context.Background(), "nope.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrDumpNotFound))
}

func TestLoadAll_KeepsPathOrder(t *testing.T) {
	svc, repo := newTestService(map[string]string{"shinhan.txt": shinhan, "kb.txt": kb})

	cards, err := svc.LoadAll(context.Background(), []string{"kb.txt", "shinhan.txt"})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "KB국민 My WE:SH", cards[0].Name)
	assert.Equal(t, []string{"통신", "유의사항"}, cards[0].Sections.Keys())
	assert.Equal(t, "신한카드 Deep Dream", cards[1].Name)
	assert.ElementsMatch(t, []string{"kb.txt", "shinhan.txt"}, repo.fetched)
}

func TestLoadAll_FailsOnAnyDump(t *testing.T) {
	svc, _ := newTestService(map[string]string{"shinhan.txt": shinhan})

	_, err := svc.LoadAll(context.Background(), []string{"shinhan.txt", "missing.txt"})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrDumpNotFound)
}

func TestLoadAll_NoPaths(t *testing.T) {
	svc, _ := newTestService(nil)

	cards, err := svc.LoadAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestToModel_EmptySectionsSerializeAsObject(t *testing.T) {
	c := ToModel(parser.RawCard{Name: "빈카드"})
	b, err := c.Sections.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))
}
