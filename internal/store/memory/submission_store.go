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

// SubmissionStore implements store.SubmissionStore using in-memory storage.
// This implementation is for testing and development - data is lost on restart.
type SubmissionStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*models.Submission
}

// NewSubmissionStore creates a new in-memory submission store.
func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{items: make(map[uuid.UUID]*models.Submission)}
}

func (s *SubmissionStore) Create(ctx context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := assignIdentity(&sub.ID, &sub.CreatedAt); err != nil {
		return err
	}
	sub.UpdatedAt = sub.CreatedAt
	clone := *sub
	s.items[sub.ID] = &clone
	return nil
}

func (s *SubmissionStore) Get(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, exists := s.items[id]
	if !exists {
		return nil, store.ErrSubmissionNotFound
	}
	clone := *sub
	return &clone, nil
}

func (s *SubmissionStore) List(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Submission
	for _, sub := range s.items {
		if filter.FormType != "" && sub.FormType != filter.FormType {
			continue
		}
		if filter.Status != "" && sub.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !submissionMatches(sub, filter.Search) {
			continue
		}
		if filter.DateFrom != nil && sub.CreatedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && !sub.CreatedAt.Before(filter.DateTo.Add(24*time.Hour)) {
			continue
		}
		clone := *sub
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
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

func (s *SubmissionStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.SubmissionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.items[id]
	if !exists {
		return store.ErrSubmissionNotFound
	}
	sub.Status = status
	sub.UpdatedAt = time.Now()
	return nil
}

func (s *SubmissionStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return store.ErrSubmissionNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *SubmissionStore) CountNew(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, sub := range s.items {
		if sub.Status == models.SubmissionStatusNew {
			count++
		}
	}
	return count, nil
}

func submissionMatches(sub *models.Submission, search string) bool {
	needle := strings.ToLower(search)
	for _, field := range []string{sub.Name, sub.Email, sub.Phone, sub.Institution, sub.City} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
