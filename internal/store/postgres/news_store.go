package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/zenitmed/siteapi/internal/models"
	"github.com/zenitmed/siteapi/internal/store"
)

// NewsStore implements store.NewsStore using PostgreSQL.
type NewsStore struct {
	pool *pgxpool.Pool
}

// NewNewsStore creates a new PostgreSQL-backed news store.
func NewNewsStore(pool *pgxpool.Pool) *NewsStore {
	return &NewsStore{pool: pool}
}

// Create stores a new article with its tags and image references in one
// transaction.
func (s *NewsStore) Create(ctx context.Context, news *models.News) error {
	if err := assignIdentity(&news.ID, &news.CreatedAt); err != nil {
		return err
	}
	news.UpdatedAt = news.CreatedAt

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `
		INSERT INTO news (
			id, title, short_description, full_description, date, year,
			category, location, author, status, views, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10, $11, $12, $13
		)
	`

	_, err = tx.Exec(ctx, query,
		news.ID, news.Title, news.ShortDescription, news.FullDescription,
		news.Date, news.Year, news.Category, news.Location, news.Author,
		news.Status, news.Views, news.CreatedAt, news.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create news: %w", mapPostgresError(err))
	}

	if err := insertNewsRefs(ctx, tx, news); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit news: %w", err)
	}

	log.Debug().Str("news_id", news.ID.String()).Str("title", news.Title).Msg("Created news")
	return nil
}

// Get retrieves an article by id, including tags and image references.
func (s *NewsStore) Get(ctx context.Context, id uuid.UUID) (*models.News, error) {
	query := `
		SELECT id, title, short_description, full_description, date, year,
		       COALESCE(category, ''), COALESCE(location, ''), COALESCE(author, ''),
		       status, views, created_at, updated_at
		FROM news
		WHERE id = $1
	`

	var n models.News
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.Title, &n.ShortDescription, &n.FullDescription, &n.Date, &n.Year,
		&n.Category, &n.Location, &n.Author, &n.Status, &n.Views, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNewsNotFound
		}
		return nil, fmt.Errorf("failed to get news: %w", mapPostgresError(err))
	}

	if err := s.loadRefs(ctx, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Update replaces an existing article and rewrites its tag/image references.
func (s *NewsStore) Update(ctx context.Context, news *models.News) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	news.UpdatedAt = time.Now()

	query := `
		UPDATE news SET
			title = $2, short_description = $3, full_description = $4,
			date = $5, year = $6, category = NULLIF($7, ''), location = NULLIF($8, ''),
			author = NULLIF($9, ''), status = $10, updated_at = $11
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		news.ID, news.Title, news.ShortDescription, news.FullDescription,
		news.Date, news.Year, news.Category, news.Location, news.Author,
		news.Status, news.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update news: %w", mapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNewsNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM news_tags WHERE news_id = $1`, news.ID); err != nil {
		return fmt.Errorf("failed to clear news tags: %w", mapPostgresError(err))
	}
	if _, err := tx.Exec(ctx, `DELETE FROM news_images WHERE news_id = $1`, news.ID); err != nil {
		return fmt.Errorf("failed to clear news images: %w", mapPostgresError(err))
	}
	if err := insertNewsRefs(ctx, tx, news); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit news update: %w", err)
	}
	return nil
}

// Delete removes an article; tags and image references cascade.
func (s *NewsStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete news: %w", mapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNewsNotFound
	}
	return nil
}

// List returns a page of articles matching the filter, newest date first.
func (s *NewsStore) List(ctx context.Context, filter models.NewsFilter) ([]*models.News, int, error) {
	conditions := ""
	args := []any{}
	add := func(cond string, vals ...any) {
		placeholders := make([]any, len(vals))
		for i, v := range vals {
			args = append(args, v)
			placeholders[i] = len(args)
		}
		if conditions == "" {
			conditions = " WHERE "
		} else {
			conditions += " AND "
		}
		conditions += fmt.Sprintf(cond, placeholders...)
	}

	if !filter.IncludeDrafts {
		conditions = " WHERE status = 'published'"
	}
	if filter.Year != 0 {
		add("year = $%d", filter.Year)
	}
	if filter.Category != "" {
		add("(category = $%d OR EXISTS (SELECT 1 FROM news_tags WHERE news_id = news.id AND tag ILIKE $%d))",
			filter.Category, filter.Category)
	}
	if filter.Search != "" {
		add("(title ILIKE $%d OR short_description ILIKE $%d)",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM news"+conditions, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count news: %w", mapPostgresError(err))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	query := fmt.Sprintf(`
		SELECT id, title, short_description, full_description, date, year,
		       COALESCE(category, ''), COALESCE(location, ''), COALESCE(author, ''),
		       status, views, created_at, updated_at
		FROM news%s
		ORDER BY date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, conditions, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list news: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var items []*models.News
	for rows.Next() {
		var n models.News
		err := rows.Scan(
			&n.ID, &n.Title, &n.ShortDescription, &n.FullDescription, &n.Date, &n.Year,
			&n.Category, &n.Location, &n.Author, &n.Status, &n.Views, &n.CreatedAt, &n.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan news: %w", err)
		}
		items = append(items, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate news: %w", mapPostgresError(err))
	}

	for _, n := range items {
		if err := s.loadRefs(ctx, n); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

// IncrementViews bumps the view counter.
func (s *NewsStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `UPDATE news SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment news views: %w", mapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNewsNotFound
	}
	return nil
}

// Years returns distinct publication years with counts, newest first.
func (s *NewsStore) Years(ctx context.Context) ([]models.YearCount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT year, COUNT(*)
		FROM news
		WHERE status = 'published'
		GROUP BY year
		ORDER BY year DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list news years: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var years []models.YearCount
	for rows.Next() {
		var yc models.YearCount
		if err := rows.Scan(&yc.Year, &yc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan year count: %w", err)
		}
		years = append(years, yc)
	}
	return years, rows.Err()
}

func (s *NewsStore) loadRefs(ctx context.Context, n *models.News) error {
	rows, err := s.pool.Query(ctx, `SELECT tag FROM news_tags WHERE news_id = $1 ORDER BY tag`, n.ID)
	if err != nil {
		return fmt.Errorf("failed to load news tags: %w", mapPostgresError(err))
	}
	defer rows.Close()
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return fmt.Errorf("failed to scan news tag: %w", err)
		}
		n.Tags = append(n.Tags, tag)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	imgRows, err := s.pool.Query(ctx, `SELECT image_id FROM news_images WHERE news_id = $1 ORDER BY ord`, n.ID)
	if err != nil {
		return fmt.Errorf("failed to load news images: %w", mapPostgresError(err))
	}
	defer imgRows.Close()
	for imgRows.Next() {
		var id uuid.UUID
		if err := imgRows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan news image: %w", err)
		}
		n.ImageIDs = append(n.ImageIDs, id)
	}
	return imgRows.Err()
}

func insertNewsRefs(ctx context.Context, tx pgx.Tx, news *models.News) error {
	for _, tag := range news.Tags {
		if _, err := tx.Exec(ctx, `INSERT INTO news_tags (news_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING`, news.ID, tag); err != nil {
			return fmt.Errorf("failed to insert news tag: %w", mapPostgresError(err))
		}
	}
	for i, imageID := range news.ImageIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO news_images (news_id, image_id, ord) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, news.ID, imageID, i); err != nil {
			return fmt.Errorf("failed to insert news image ref: %w", mapPostgresError(err))
		}
	}
	return nil
}
