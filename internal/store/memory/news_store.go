package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zenitmed/siteapi/internal/models"
	"github.com/zenitmed/siteapi/internal/store"
)

// NewsStore implements store.NewsStore using in-memory storage.
// This implementation is for testing and development - data is lost on restart.
type NewsStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*models.News
}

// NewNewsStore creates a new in-memory news store.
func NewNewsStore() *NewsStore {
	return &NewsStore{items: make(map[uuid.UUID]*models.News)}
}

func (s *NewsStore) Create(ctx context.Context, news *models.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := assignIdentity(&news.ID, &news.CreatedAt); err != nil {
		return err
	}
	news.UpdatedAt = news.CreatedAt
	clone := *news
	s.items[news.ID] = &clone
	return nil
}

func (s *NewsStore) Get(ctx context.Context, id uuid.UUID) (*models.News, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	news, exists := s.items[id]
	if !exists {
		return nil, store.ErrNewsNotFound
	}
	clone := *news
	return &clone, nil
}

func (s *NewsStore) Update(ctx context.Context, news *models.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.items[news.ID]
	if !exists {
		return store.ErrNewsNotFound
	}
	news.UpdatedAt = time.Now()
	clone := *news
	clone.Views = existing.Views
	clone.CreatedAt = existing.CreatedAt
	s.items[news.ID] = &clone
	return nil
}

func (s *NewsStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return store.ErrNewsNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *NewsStore) List(ctx context.Context, filter models.NewsFilter) ([]*models.News, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.News
	for _, n := range s.items {
		if !filter.IncludeDrafts && n.Status != models.NewsStatusPublished {
			continue
		}
		if filter.Year != 0 && n.Year != filter.Year {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(n.Category, filter.Category) {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(n.Title), needle) &&
				!strings.Contains(strings.ToLower(n.ShortDescription), needle) {
				continue
			}
		}
		clone := *n
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (s *NewsStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	news, exists := s.items[id]
	if !exists {
		return store.ErrNewsNotFound
	}
	news.Views++
	return nil
}

func (s *NewsStore) Years(ctx context.Context) ([]models.YearCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int]int)
	for _, n := range s.items {
		if n.Status == models.NewsStatusPublished {
			counts[n.Year]++
		}
	}

	var years []models.YearCount
	for year, count := range counts {
		years = append(years, models.YearCount{Year: year, Count: count})
	}
	sort.Slice(years, func(i, j int) bool {
		return years[i].Year > years[j].Year
	})
	return years, nil
}
