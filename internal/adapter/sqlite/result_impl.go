package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/user/playlist-scraper/internal/entity"
)

// ResultRepoImpl implements ResultRepository on the local dataset.
type ResultRepoImpl struct {
	db *sql.DB
}

// Save appends a record. Emails are stored as a JSON array.
func (r *ResultRepoImpl) Save(ctx context.Context, rec *entity.ResultRecord) error {
	emails, err := json.Marshal(rec.Emails)
	if err != nil {
		return fmt.Errorf("failed to serialize emails: %w", err)
	}

	var followerCount sql.NullInt64
	if rec.FollowerCount != nil {
		followerCount = sql.NullInt64{Int64: *rec.FollowerCount, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
	INSERT INTO playlist_results (run_id, url, playlist_id, title, description, owner, image_url,
		followers_text, track_count, emails, has_email, follower_count, scraped_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, url) DO NOTHING`,
		rec.RunID, rec.URL, rec.PlaylistID, rec.Title, rec.Description, rec.Owner, rec.ImageURL,
		rec.FollowersText, rec.TrackCount, string(emails), rec.HasEmail, followerCount,
		rec.ScrapedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// ListByRun returns the records of a run in append order.
func (r *ResultRepoImpl) ListByRun(ctx context.Context, runID string) ([]*entity.ResultRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT run_id, url, playlist_id, title, description, owner, image_url,
		followers_text, track_count, emails, has_email, follower_count, scraped_at
	FROM playlist_results
	WHERE run_id = ?
	ORDER BY id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	records := []*entity.ResultRecord{}
	for rows.Next() {
		var (
			rec           entity.ResultRecord
			emails        string
			followerCount sql.NullInt64
			scrapedAt     string
		)
		if err := rows.Scan(&rec.RunID, &rec.URL, &rec.PlaylistID, &rec.Title, &rec.Description,
			&rec.Owner, &rec.ImageURL, &rec.FollowersText, &rec.TrackCount, &emails, &rec.HasEmail,
			&followerCount, &scrapedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if err := json.Unmarshal([]byte(emails), &rec.Emails); err != nil {
			return nil, fmt.Errorf("failed to decode emails: %w", err)
		}
		if rec.Emails == nil {
			rec.Emails = []string{}
		}
		if followerCount.Valid {
			n := followerCount.Int64
			rec.FollowerCount = &n
		}
		if rec.ScrapedAt, err = time.Parse(time.RFC3339Nano, scrapedAt); err != nil {
			return nil, fmt.Errorf("failed to parse scraped_at: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
