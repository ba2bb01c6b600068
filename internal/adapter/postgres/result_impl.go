package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/user/playlist-scraper/internal/entity"
)

// ResultRepoImpl provides a concrete implementation for the ResultRepository interface using PostgreSQL.
type ResultRepoImpl struct {
	db DB
}

// NewResultRepo creates a new instance of ResultRepoImpl.
func NewResultRepo(db DB) *ResultRepoImpl {
	return &ResultRepoImpl{db: db}
}

// Save appends a record. A playlist is stored at most once per run.
func (r *ResultRepoImpl) Save(ctx context.Context, rec *entity.ResultRecord) error {
	query := `
		INSERT INTO playlist_results (run_id, url, playlist_id, title, description, owner, image_url,
			followers_text, track_count, emails, has_email, follower_count, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (run_id, url) DO NOTHING;
	`
	_, err := r.db.Exec(ctx, query,
		rec.RunID,
		rec.URL,
		rec.PlaylistID,
		rec.Title,
		rec.Description,
		rec.Owner,
		rec.ImageURL,
		rec.FollowersText,
		rec.TrackCount,
		rec.Emails,
		rec.HasEmail,
		rec.FollowerCount,
		rec.ScrapedAt,
	)
	return err
}

// ListByRun retrieves the records of a run in insertion order.
func (r *ResultRepoImpl) ListByRun(ctx context.Context, runID string) ([]*entity.ResultRecord, error) {
	query := `
		SELECT run_id, url, playlist_id, title, description, owner, image_url,
			followers_text, track_count, emails, has_email, follower_count, scraped_at
		FROM playlist_results
		WHERE run_id = $1
		ORDER BY id ASC;
	`
	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*entity.ResultRecord{}
	for rows.Next() {
		var rec entity.ResultRecord
		var followerCount pgtype.Int8
		if err := rows.Scan(
			&rec.RunID,
			&rec.URL,
			&rec.PlaylistID,
			&rec.Title,
			&rec.Description,
			&rec.Owner,
			&rec.ImageURL,
			&rec.FollowersText,
			&rec.TrackCount,
			&rec.Emails,
			&rec.HasEmail,
			&followerCount,
			&rec.ScrapedAt,
		); err != nil {
			return nil, err
		}
		if followerCount.Valid {
			n := followerCount.Int64
			rec.FollowerCount = &n
		}
		if rec.Emails == nil {
			rec.Emails = []string{}
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}
