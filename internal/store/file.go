package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/docdrop-io/apiserver/types"
)

// FileRepository handles postgres persistence for file records.
type FileRepository struct {
	db *sql.DB
}

func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Get(ctx context.Context, id string) (types.FileRecord, error) {
	const query = `
		SELECT id, filename, uploader, created_at
		FROM files
		WHERE id = $1`
	var record types.FileRecord
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.Filename,
		&record.Uploader,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.FileRecord{}, ErrNotFound
		}
		return types.FileRecord{}, err
	}
	return record, nil
}

func (r *FileRepository) List(ctx context.Context) ([]types.FileRecord, error) {
	const query = `
		SELECT id, filename, uploader, created_at
		FROM files
		ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]types.FileRecord, 0)
	for rows.Next() {
		var record types.FileRecord
		if err := rows.Scan(
			&record.ID,
			&record.Filename,
			&record.Uploader,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *FileRepository) Create(ctx context.Context, record types.FileRecord) (types.FileRecord, error) {
	record.CreatedAt = time.Now()

	const query = `
		INSERT INTO files (id, filename, uploader, created_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.Filename,
		record.Uploader,
		record.CreatedAt,
	); err != nil {
		return types.FileRecord{}, err
	}
	return record, nil
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM files WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
