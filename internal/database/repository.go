package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gostream/gostream/pkg/models"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a catalog record does not exist
var ErrNotFound = errors.New("video not found")

// Repository provides catalog store operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Health checks the underlying store connection
func (r *Repository) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

// ListOptions filters and paginates catalog listings
type ListOptions struct {
	Category string
	Search   string
	Limit    int
	Page     int
}

const videoColumns = `id, title, description, thumbnail, video_url, duration, category,
	       rating, release_year, cast_members, director, created_at`

func scanVideo(row pgx.Row) (*models.VideoAsset, error) {
	var video models.VideoAsset
	err := row.Scan(
		&video.ID, &video.Title, &video.Description, &video.Thumbnail, &video.VideoURL,
		&video.Duration, &video.Category, &video.Rating, &video.ReleaseYear,
		&video.Cast, &video.Director, &video.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// CreateVideo creates a new catalog record
func (r *Repository) CreateVideo(ctx context.Context, video *models.VideoAsset) error {
	if video.ID == "" {
		video.ID = uuid.New().String()
	}
	if video.Cast == nil {
		video.Cast = []string{}
	}

	query := `
		INSERT INTO videos (id, title, description, thumbnail, video_url, duration, category, rating, release_year, cast_members, director)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		video.ID, video.Title, video.Description, video.Thumbnail, video.VideoURL,
		video.Duration, video.Category, video.Rating, video.ReleaseYear,
		video.Cast, video.Director,
	).Scan(&video.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}

	return nil
}

// GetVideo retrieves a catalog record by ID
func (r *Repository) GetVideo(ctx context.Context, id string) (*models.VideoAsset, error) {
	query := fmt.Sprintf(`SELECT %s FROM videos WHERE id = $1`, videoColumns)

	video, err := scanVideo(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	return video, nil
}

// ListVideos retrieves catalog records with optional filtering and pagination
func (r *Repository) ListVideos(ctx context.Context, opts ListOptions) (*models.VideoList, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}

	var conditions []string
	var args []interface{}

	if opts.Category != "" {
		args = append(args, opts.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM videos %s`, where)

	var total int
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count videos: %w", err)
	}

	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)
	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM videos
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, videoColumns, where, len(args)-1, len(args))

	rows, err := r.db.Pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	videos := []*models.VideoAsset{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit

	return &models.VideoList{
		Videos:      videos,
		TotalPages:  totalPages,
		CurrentPage: opts.Page,
	}, nil
}

// UpdateVideo applies a partial update and returns the updated record
func (r *Repository) UpdateVideo(ctx context.Context, id string, update *models.VideoUpdate) (*models.VideoAsset, error) {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Category != nil {
		add("category", *update.Category)
	}
	if update.Duration != nil {
		add("duration", *update.Duration)
	}
	if update.Rating != nil {
		add("rating", *update.Rating)
	}
	if update.ReleaseYear != nil {
		add("release_year", *update.ReleaseYear)
	}
	if update.Cast != nil {
		add("cast_members", *update.Cast)
	}
	if update.Director != nil {
		add("director", *update.Director)
	}

	if len(sets) == 0 {
		return r.GetVideo(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE videos
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), len(args), videoColumns)

	video, err := scanVideo(r.db.Pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update video: %w", err)
	}

	return video, nil
}

// DeleteVideo removes a catalog record and returns it, so callers can
// clean up the files it referenced
func (r *Repository) DeleteVideo(ctx context.Context, id string) (*models.VideoAsset, error) {
	query := fmt.Sprintf(`DELETE FROM videos WHERE id = $1 RETURNING %s`, videoColumns)

	video, err := scanVideo(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete video: %w", err)
	}

	return video, nil
}
