package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zenitmed/siteapi/internal/models"
	"github.com/zenitmed/siteapi/internal/store"
)

// ConferenceStore implements store.ConferenceStore using in-memory storage.
type ConferenceStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*models.Conference
}

// NewConferenceStore creates a new in-memory conference store.
func NewConferenceStore() *ConferenceStore {
	return &ConferenceStore{items: make(map[uuid.UUID]*models.Conference)}
}

func (s *ConferenceStore) Create(ctx context.Context, conf *models.Conference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := assignIdentity(&conf.ID, &conf.CreatedAt); err != nil {
		return err
	}
	conf.UpdatedAt = conf.CreatedAt
	clone := *conf
	s.items[conf.ID] = &clone
	return nil
}

func (s *ConferenceStore) Get(ctx context.Context, id uuid.UUID) (*models.Conference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conf, exists := s.items[id]
	if !exists {
		return nil, store.ErrConferenceNotFound
	}
	clone := *conf
	return &clone, nil
}

func (s *ConferenceStore) Update(ctx context.Context, conf *models.Conference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, exists := s.items[conf.ID]
	if !exists {
		return store.ErrConferenceNotFound
	}
	conf.UpdatedAt = time.Now()
	clone := *conf
	clone.CreatedAt = existing.CreatedAt
	s.items[conf.ID] = &clone
	return nil
}

func (s *ConferenceStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		return store.ErrConferenceNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *ConferenceStore) List(ctx context.Context) ([]*models.Conference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []*models.Conference
	for _, conf := range s.items {
		clone := *conf
		items = append(items, &clone)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
	return items, nil
}

// ImageStore implements store.ImageStore using in-memory storage.
type ImageStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*models.Image
}

// NewImageStore creates a new in-memory image store.
func NewImageStore() *ImageStore {
	return &ImageStore{items: make(map[uuid.UUID]*models.Image)}
}

func (s *ImageStore) Create(ctx context.Context, img *models.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := assignIdentity(&img.ID, &img.CreatedAt); err != nil {
		return err
	}
	clone := *img
	s.items[img.ID] = &clone
	return nil
}

func (s *ImageStore) Get(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, exists := s.items[id]
	if !exists {
		return nil, store.ErrImageNotFound
	}
	clone := *img
	return &clone, nil
}

func (s *ImageStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		return store.ErrImageNotFound
	}
	delete(s.items, id)
	return nil
}

// BannerStore implements store.BannerStore using in-memory storage.
type BannerStore struct {
	mu     sync.RWMutex
	banner *models.Banner
}

// NewBannerStore creates a new in-memory banner store.
func NewBannerStore() *BannerStore {
	return &BannerStore{}
}

func (s *BannerStore) Get(ctx context.Context) (*models.Banner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.banner == nil {
		return nil, nil
	}
	clone := *s.banner
	return &clone, nil
}

func (s *BannerStore) Put(ctx context.Context, banner *models.Banner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *banner
	clone.UpdatedAt = time.Now()
	s.banner = &clone
	return nil
}

// assignIdentity fills in id and creation time when the caller left them unset.
func assignIdentity(id *uuid.UUID, createdAt *time.Time) error {
	if *id == uuid.Nil {
		generated, err := uuid.NewV7()
		if err != nil {
			return err
		}
		*id = generated
	}
	if createdAt.IsZero() {
		*createdAt = time.Now()
	}
	return nil
}
