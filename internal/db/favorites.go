package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ToggleFavorite flips userID's favorite on a resume and reports the new state.
func (db *DB) ToggleFavorite(ctx context.Context, userID uuid.UUID, resumeID int64) (bool, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && rErr != pgx.ErrTxClosed {
			fmt.Printf("Warning: failed to rollback favorite toggle: %v\n", rErr)
		}
	}()

	tag, err := tx.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND resume_id = $2`,
		userID, resumeID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	favorited := tag.RowsAffected() == 0
	if favorited {
		if _, err := tx.Exec(ctx,
			`INSERT INTO favorites (user_id, resume_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			userID, resumeID,
		); err != nil {
			return false, fmt.Errorf("failed to add favorite: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit favorite toggle: %w", err)
	}
	return favorited, nil
}

// RecordView counts one view of a resume
func (db *DB) RecordView(ctx context.Context, resumeID int64) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO resume_analytics (resume_id, views) VALUES ($1, 1)
		 ON CONFLICT (resume_id) DO UPDATE SET views = resume_analytics.views + 1`,
		resumeID,
	)
	if err != nil {
		return fmt.Errorf("failed to record view of resume %d: %w", resumeID, err)
	}
	return nil
}

// RecordDownload counts one download of a resume
func (db *DB) RecordDownload(ctx context.Context, resumeID int64) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO resume_analytics (resume_id, downloads) VALUES ($1, 1)
		 ON CONFLICT (resume_id) DO UPDATE SET downloads = resume_analytics.downloads + 1`,
		resumeID,
	)
	if err != nil {
		return fmt.Errorf("failed to record download of resume %d: %w", resumeID, err)
	}
	return nil
}

// GetUserStats totals views and downloads over userID's resumes, and favorites
// placed on them by other users.
func (db *DB) GetUserStats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	var s Stats
	err := db.pool.QueryRow(ctx,
		`SELECT
		   COALESCE((SELECT SUM(a.views) FROM resume_analytics a JOIN resumes r ON r.id = a.resume_id WHERE r.user_id = $1), 0),
		   COALESCE((SELECT SUM(a.downloads) FROM resume_analytics a JOIN resumes r ON r.id = a.resume_id WHERE r.user_id = $1), 0),
		   (SELECT COUNT(*) FROM favorites f JOIN resumes r ON r.id = f.resume_id WHERE r.user_id = $1 AND f.user_id <> $1)`,
		userID,
	).Scan(&s.Views, &s.Downloads, &s.Favorites)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return &s, nil
}
