// Package sqlite is the embedded PersistenceGateway driver backed by modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"econote-be/internal/entity"
	"econote-be/internal/mapper"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver.
)

type Gateway struct {
	db *sql.DB
}

// Open opens or creates the database file and applies migrations.
func Open(path string) (*Gateway, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single writer avoids SQLITE_BUSY under concurrent sessions.
	db.SetMaxOpenConns(1)

	g := &Gateway{db: db}
	if err := g.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return g, nil
}

func (g *Gateway) Close() error {
	return g.db.Close()
}

func (g *Gateway) migrate() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS notebooks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			page_ids TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS pages (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			strokes TEXT NOT NULL,
			image_data TEXT,
			is_scanned INTEGER NOT NULL DEFAULT 0,
			ocr_text TEXT,
			ocr_language TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_notebooks_user_id ON notebooks(user_id);`,
	}
	for _, stmt := range stmts {
		if _, err := g.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gateway) GetPage(ctx context.Context, id uuid.UUID) (*entity.Page, error) {
	row := g.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, strokes, image_data, is_scanned, ocr_text, ocr_language, created_at, updated_at
		 FROM pages WHERE id = ?`, id.String())

	var (
		pid, userId, title, strokes, createdAt string
		imageData, ocrText, ocrLanguage        sql.NullString
		updatedAt                              sql.NullString
		isScanned                              bool
	)
	err := row.Scan(&pid, &userId, &title, &strokes, &imageData, &isScanned, &ocrText, &ocrLanguage, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get page %s: %w", id, err)
	}

	page := &entity.Page{
		Title:       title,
		IsScanned:   isScanned,
		ImageData:   nullable(imageData),
		OcrText:     nullable(ocrText),
		OcrLanguage: nullable(ocrLanguage),
	}
	if page.Id, err = uuid.Parse(pid); err != nil {
		return nil, err
	}
	if page.UserId, err = uuid.Parse(userId); err != nil {
		return nil, err
	}
	if page.Strokes, err = mapper.DecodeStrokes([]byte(strokes)); err != nil {
		return nil, err
	}
	if page.CreatedAt, page.UpdatedAt, err = parseTimes(createdAt, updatedAt); err != nil {
		return nil, err
	}
	return page, nil
}

func (g *Gateway) SavePage(ctx context.Context, page *entity.Page) error {
	strokes, err := mapper.EncodeStrokes(page.Strokes)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if page.CreatedAt.IsZero() {
		page.CreatedAt = now
	}

	_, err = g.db.ExecContext(ctx,
		`INSERT INTO pages (id, user_id, title, strokes, image_data, is_scanned, ocr_text, ocr_language, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			title = excluded.title,
			strokes = excluded.strokes,
			image_data = excluded.image_data,
			is_scanned = excluded.is_scanned,
			ocr_text = excluded.ocr_text,
			ocr_language = excluded.ocr_language,
			updated_at = excluded.updated_at`,
		page.Id.String(),
		page.UserId.String(),
		page.Title,
		string(strokes),
		page.ImageData,
		page.IsScanned,
		page.OcrText,
		page.OcrLanguage,
		page.CreatedAt.UTC().Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save page %s: %w", page.Id, err)
	}
	page.UpdatedAt = &now
	return nil
}

func (g *Gateway) DeletePage(ctx context.Context, id uuid.UUID) error {
	if _, err := g.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete page %s: %w", id, err)
	}
	return nil
}

func (g *Gateway) GetNotebook(ctx context.Context, id uuid.UUID) (*entity.Notebook, error) {
	row := g.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, page_ids, created_at, updated_at FROM notebooks WHERE id = ?`, id.String())
	notebook, err := scanNotebook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notebook %s: %w", id, err)
	}
	return notebook, nil
}

func (g *Gateway) SaveNotebook(ctx context.Context, notebook *entity.Notebook) error {
	pageIds, err := mapper.EncodePageIds(notebook.PageIds)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if notebook.CreatedAt.IsZero() {
		notebook.CreatedAt = now
	}

	_, err = g.db.ExecContext(ctx,
		`INSERT INTO notebooks (id, user_id, title, page_ids, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			title = excluded.title,
			page_ids = excluded.page_ids,
			updated_at = excluded.updated_at`,
		notebook.Id.String(),
		notebook.UserId.String(),
		notebook.Title,
		string(pageIds),
		notebook.CreatedAt.UTC().Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save notebook %s: %w", notebook.Id, err)
	}
	notebook.UpdatedAt = &now
	return nil
}

// DeleteNotebook removes the notebook and the pages it references.
func (g *Gateway) DeleteNotebook(ctx context.Context, id uuid.UUID) (err error) {
	notebook, err := g.GetNotebook(ctx, id)
	if err != nil || notebook == nil {
		return err
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, pageId := range notebook.PageIds {
		if _, err = tx.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, pageId.String()); err != nil {
			return fmt.Errorf("delete page %s: %w", pageId, err)
		}
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM notebooks WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete notebook %s: %w", id, err)
	}
	return tx.Commit()
}

func (g *Gateway) ListNotebooks(ctx context.Context, userId uuid.UUID) ([]*entity.Notebook, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT id, user_id, title, page_ids, created_at, updated_at FROM notebooks
		 WHERE user_id = ? ORDER BY created_at ASC`, userId.String())
	if err != nil {
		return nil, fmt.Errorf("list notebooks: %w", err)
	}
	defer rows.Close()

	notebooks := make([]*entity.Notebook, 0)
	for rows.Next() {
		nb, err := scanNotebook(rows)
		if err != nil {
			return nil, err
		}
		notebooks = append(notebooks, nb)
	}
	return notebooks, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNotebook(s scanner) (*entity.Notebook, error) {
	var (
		id, userId, title, pageIds, createdAt string
		updatedAt                             sql.NullString
	)
	if err := s.Scan(&id, &userId, &title, &pageIds, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	nb := &entity.Notebook{Title: title}
	var err error
	if nb.Id, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if nb.UserId, err = uuid.Parse(userId); err != nil {
		return nil, err
	}
	if nb.PageIds, err = mapper.DecodePageIds([]byte(pageIds)); err != nil {
		return nil, err
	}
	if nb.CreatedAt, nb.UpdatedAt, err = parseTimes(createdAt, updatedAt); err != nil {
		return nil, err
	}
	return nb, nil
}

func parseTimes(created string, updated sql.NullString) (time.Time, *time.Time, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return time.Time{}, nil, err
	}
	if !updated.Valid {
		return createdAt, nil, nil
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, updated.String)
	if err != nil {
		return time.Time{}, nil, err
	}
	return createdAt, &updatedAt, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
