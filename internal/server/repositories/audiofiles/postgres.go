package audiofiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/grapevine/internal/common"
	"github.com/dmitrijs2005/grapevine/internal/dbx"
	"github.com/dmitrijs2005/grapevine/internal/server/models"
)

const fileColumns = `id, title, description, user_id, file_url, metadata, created_at, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(row scanner) (*models.AudioFile, error) {
	f := &models.AudioFile{}
	var meta []byte
	if err := row.Scan(&f.ID, &f.Title, &f.Description, &f.UserID, &f.FileURL, &meta, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &f.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	if f.Metadata.Tags == nil {
		f.Metadata.Tags = []string{}
	}
	return f, nil
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, file *models.AudioFile) (*models.AudioFile, error) {
	meta, err := encodeMetadata(file.Metadata)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO audio_files (title, description, user_id, file_url, metadata)
		 VALUES ($1, $2, $3, $4, $5::jsonb)
		 RETURNING ` + fileColumns

	created, err := scanFile(r.db.QueryRowContext(ctx, query,
		file.Title, file.Description, file.UserID, file.FileURL, meta))
	if err != nil {
		return nil, mapError(err)
	}
	return created, nil
}

// List returns one page of the owner's files, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter models.AudioFileFilter) ([]*models.AudioFile, error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return nil, err
	}

	n := len(args)
	query := `SELECT ` + fileColumns + ` FROM audio_files WHERE ` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.AudioFile{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, filter models.AudioFileFilter) (int, error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return 0, err
	}

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audio_files WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) GetOwned(ctx context.Context, id, userID int64, forUpdate bool) (*models.AudioFile, error) {
	query := `SELECT ` + fileColumns + ` FROM audio_files WHERE id = $1 AND user_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	f, err := scanFile(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, mapError(err)
	}
	return f, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id, userID int64, patch models.AudioFilePatch) (*models.AudioFile, error) {
	var tags any
	if patch.Tags != nil {
		b, err := json.Marshal(patch.Tags)
		if err != nil {
			return nil, fmt.Errorf("encode tags: %w", err)
		}
		tags = string(b)
	}

	query :=
		`UPDATE audio_files SET
		   title = COALESCE($3, title),
		   description = COALESCE($4, description),
		   metadata = CASE WHEN $5::jsonb IS NULL THEN metadata ELSE jsonb_set(metadata, '{tags}', $5::jsonb) END,
		   updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + fileColumns

	f, err := scanFile(r.db.QueryRowContext(ctx, query, id, userID, nullable(patch.Title), nullable(patch.Description), tags))
	if err != nil {
		return nil, mapError(err)
	}
	return f, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audio_files WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildWhere renders the owner, search and tag conditions of filter with
// positional arguments starting at $1.
func buildWhere(filter models.AudioFileFilter) (string, []any, error) {
	conds := []string{"user_id = $1"}
	args := []any{filter.UserID}

	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+likeEscaper.Replace(s)+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	if len(filter.Tags) > 0 {
		b, err := json.Marshal(filter.Tags)
		if err != nil {
			return "", nil, fmt.Errorf("encode tags: %w", err)
		}
		args = append(args, string(b))
		conds = append(conds, fmt.Sprintf("metadata->'tags' @> $%d::jsonb", len(args)))
	}

	return strings.Join(conds, " AND "), args, nil
}

func encodeMetadata(m models.AudioMetadata) (string, error) {
	if m.Tags == nil {
		m.Tags = []string{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(b), nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
