package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-studio/internal/types"
)

// DefaultOrdering is applied when no valid ordering key is requested.
const DefaultOrdering = "-created_at"

// orderColumns maps public ordering keys to SQL columns.
var orderColumns = map[string]string{
	"created_at":     "r.created_at",
	"updated_at":     "r.updated_at",
	"title":          "r.title",
	"user__username": "u.username",
}

// OrderBy translates a comma-separated ordering such as "-created_at,title" into
// an ORDER BY list. Unknown keys are ignored.
func OrderBy(ordering string) string {
	var parts []string
	for _, key := range strings.Split(ordering, ",") {
		key = strings.TrimSpace(key)
		dir := "ASC"
		if strings.HasPrefix(key, "-") {
			dir = "DESC"
			key = key[1:]
		}
		col, ok := orderColumns[key]
		if !ok {
			continue
		}
		parts = append(parts, col+" "+dir)
	}
	if len(parts) == 0 {
		parts = []string{"r.created_at DESC"}
	}
	return strings.Join(parts, ", ") + ", r.id DESC"
}

const resumeColumns = `r.id, r.user_id, u.username, r.title, r.template, r.resume_status,
	r.privacy_setting, r.is_anonymized, r.content, r.created_at, r.updated_at,
	COALESCE(a.views, 0), COALESCE(a.downloads, 0),
	(SELECT COUNT(*) FROM favorites f WHERE f.resume_id = r.id),
	EXISTS(SELECT 1 FROM favorites f WHERE f.resume_id = r.id AND f.user_id = $1)`

const resumeFrom = `FROM resumes r
	JOIN users u ON u.id = r.user_id
	LEFT JOIN resume_analytics a ON a.resume_id = r.id`

func scanResume(row pgx.Row) (*Resume, error) {
	var r Resume
	err := row.Scan(&r.ID, &r.UserID, &r.Username, &r.Title, &r.Template, &r.Status,
		&r.Privacy, &r.IsAnonymized, &r.Content, &r.CreatedAt, &r.UpdatedAt,
		&r.Views, &r.Downloads, &r.FavoriteCount, &r.IsFavorited)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateResume inserts a resume owned by userID and returns its ID
func (db *DB) CreateResume(ctx context.Context, userID uuid.UUID, in ResumeInput) (int64, error) {
	var id int64
	err := db.pool.QueryRow(ctx,
		`INSERT INTO resumes (user_id, title, template, resume_status, privacy_setting, is_anonymized, content)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		userID, in.Title, in.Template, in.Status, in.Privacy, in.IsAnonymized, in.Content,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create resume: %w", err)
	}
	return id, nil
}

// GetResume retrieves a resume as seen by viewer. It returns nil, nil when no row matches.
func (db *DB) GetResume(ctx context.Context, id int64, viewer uuid.UUID) (*Resume, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+resumeColumns+` `+resumeFrom+` WHERE r.id = $2`,
		viewer, id,
	)
	r, err := scanResume(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume %d: %w", id, err)
	}
	return r, nil
}

// whereClause builds the filter for f with placeholders numbered from start.
func whereClause(f ResumeFilters, start int) (string, []any) {
	query := " WHERE 1=1"
	args := []any{}
	argNum := start

	if f.OwnerID != nil {
		query += fmt.Sprintf(" AND r.user_id = $%d", argNum)
		args = append(args, *f.OwnerID)
		argNum++
	}
	if f.ExcludeOwner != nil {
		query += fmt.Sprintf(" AND r.user_id <> $%d", argNum)
		args = append(args, *f.ExcludeOwner)
		argNum++
	}
	if f.FavoritedBy != nil {
		query += fmt.Sprintf(" AND EXISTS(SELECT 1 FROM favorites fb WHERE fb.resume_id = r.id AND fb.user_id = $%d)", argNum)
		args = append(args, *f.FavoritedBy)
	}
	if f.PublicOnly {
		query += fmt.Sprintf(" AND r.privacy_setting = '%s'", types.PrivacyPublic)
	}
	return query, args
}

// ListResumes returns one page of resumes matching f and the total number of matches.
// A zero Limit returns every match.
func (db *DB) ListResumes(ctx context.Context, f ResumeFilters) ([]Resume, int, error) {
	where, args := whereClause(f, 1)

	var total int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) `+resumeFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count resumes: %w", err)
	}

	where, args = whereClause(f, 2)
	query := `SELECT ` + resumeColumns + ` ` + resumeFrom + where + ` ORDER BY ` + OrderBy(f.Ordering)
	args = append([]any{f.Viewer}, args...)
	argNum := len(args) + 1
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, f.Limit)
		argNum++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, f.Offset)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	resumes := []Resume{}
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan resume: %w", err)
		}
		resumes = append(resumes, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate resumes: %w", err)
	}
	return resumes, total, nil
}

// UpdateResume replaces every writable column of a resume. It reports false when no row matches.
func (db *DB) UpdateResume(ctx context.Context, id int64, in ResumeInput) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE resumes
		 SET title = $2, template = $3, resume_status = $4, privacy_setting = $5,
		     is_anonymized = $6, content = $7, updated_at = NOW()
		 WHERE id = $1`,
		id, in.Title, in.Template, in.Status, in.Privacy, in.IsAnonymized, in.Content,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update resume %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateResumeStatus sets the lifecycle status. It reports false when no row matches.
func (db *DB) UpdateResumeStatus(ctx context.Context, id int64, status types.Status) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE resumes SET resume_status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update status of resume %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteResume removes a resume with its favorites and analytics (via cascade).
// It reports false when no row matches.
func (db *DB) DeleteResume(ctx context.Context, id int64) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete resume %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
