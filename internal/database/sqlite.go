package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leca/flipbook/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements Database backed by SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) an SQLite database at dsn, runs schema
// creation, the one-time legacy migration, and default-page seeding.
// For in-memory use pass "file::memory:?cache=shared".
func NewSQLiteDB(dsn string) (*SQLiteDB, error) {
	// foreign_keys is off by default in SQLite and cascade delete depends
	// on it; set pragmas through the DSN so every pooled connection gets them.
	if !strings.Contains(dsn, "_pragma=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if err := migrateLegacyItems(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate legacy items: %w", err)
	}
	if err := seedDefaultPages(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed pages: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Ping runs a trivial query to verify the store is reachable.
func (s *SQLiteDB) Ping() error {
	var one int
	return s.db.QueryRow(`SELECT 1`).Scan(&one)
}

// ---------------------------------------------------------------------------
// Pages
// ---------------------------------------------------------------------------

func (s *SQLiteDB) ListPages() ([]*model.Page, error) {
	rows, err := s.db.Query(`
		SELECT id, title, sort_order, created_at, updated_at
		FROM pages
		ORDER BY sort_order ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()
	return scanPages(rows)
}

func (s *SQLiteDB) CreatePage(title string) (*model.Page, error) {
	// Read-max-then-insert is not transactionally isolated; two concurrent
	// creates can allocate the same sort_order. Accepted: sort_order is
	// neither unique nor contiguous, ties break on id.
	var maxOrder int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(sort_order), 0) FROM pages`).Scan(&maxOrder)
	if err != nil {
		return nil, fmt.Errorf("max page order: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`
		INSERT INTO pages (title, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		title, maxOrder+1, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert page: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("page id: %w", err)
	}
	return s.getPage(id)
}

func (s *SQLiteDB) UpdatePage(id int64, upd model.PageUpdate) (*model.Page, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`
		UPDATE pages
		SET title = COALESCE(?, title),
		    sort_order = COALESCE(?, sort_order),
		    updated_at = ?
		WHERE id = ?`,
		upd.Title, upd.SortOrder, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update page: %w", err)
	}
	if err := checkRowsAffected(res); err != nil {
		return nil, err
	}
	return s.getPage(id)
}

func (s *SQLiteDB) DeletePage(id int64) error {
	res, err := s.db.Exec(`DELETE FROM pages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteDB) getPage(id int64) (*model.Page, error) {
	row := s.db.QueryRow(`
		SELECT id, title, sort_order, created_at, updated_at
		FROM pages WHERE id = ?`,
		id,
	)
	p, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ---------------------------------------------------------------------------
// Blocks
// ---------------------------------------------------------------------------

func (s *SQLiteDB) ListBlocks(pageID int64) ([]*model.Block, error) {
	rows, err := s.db.Query(`
		SELECT id, page_id, block_type, content, sort_order, created_at, updated_at
		FROM page_blocks
		WHERE page_id = ?
		ORDER BY sort_order ASC, id ASC`,
		pageID,
	)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()
	return scanBlocks(rows)
}

func (s *SQLiteDB) CreateBlock(pageID int64, blockType, content string) (*model.Block, error) {
	var maxOrder int
	err := s.db.QueryRow(
		`SELECT COALESCE(MAX(sort_order), 0) FROM page_blocks WHERE page_id = ?`,
		pageID,
	).Scan(&maxOrder)
	if err != nil {
		return nil, fmt.Errorf("max block order: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`
		INSERT INTO page_blocks (page_id, block_type, content, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		pageID, blockType, content, maxOrder+1, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert block: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("block id: %w", err)
	}
	return s.getBlock(pageID, id)
}

func (s *SQLiteDB) UpdateBlock(pageID, blockID int64, upd model.BlockUpdate) (*model.Block, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`
		UPDATE page_blocks
		SET block_type = ?,
		    content = ?,
		    sort_order = COALESCE(?, sort_order),
		    updated_at = ?
		WHERE id = ? AND page_id = ?`,
		upd.BlockType, upd.Content, upd.SortOrder, now, blockID, pageID,
	)
	if err != nil {
		return nil, fmt.Errorf("update block: %w", err)
	}
	if err := checkRowsAffected(res); err != nil {
		return nil, err
	}
	return s.getBlock(pageID, blockID)
}

func (s *SQLiteDB) DeleteBlock(pageID, blockID int64) error {
	res, err := s.db.Exec(
		`DELETE FROM page_blocks WHERE id = ? AND page_id = ?`,
		blockID, pageID,
	)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteDB) getBlock(pageID, blockID int64) (*model.Block, error) {
	row := s.db.QueryRow(`
		SELECT id, page_id, block_type, content, sort_order, created_at, updated_at
		FROM page_blocks WHERE id = ? AND page_id = ?`,
		blockID, pageID,
	)
	b, err := scanBlock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// ---------------------------------------------------------------------------
// Uploaded images
// ---------------------------------------------------------------------------

func (s *SQLiteDB) CreateUploadedImage(img *model.UploadedImage) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(`
		INSERT INTO uploaded_images (mime_type, file_name, image_data, width, height, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		img.MimeType, img.FileName, img.ImageData, img.Width, img.Height,
		now.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert uploaded image: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("uploaded image id: %w", err)
	}
	img.ID = id
	img.CreatedAt = now
	return id, nil
}

func (s *SQLiteDB) GetUploadedImage(id int64) (*model.UploadedImage, error) {
	img := &model.UploadedImage{}
	var createdStr string
	err := s.db.QueryRow(`
		SELECT id, mime_type, file_name, image_data, width, height, created_at
		FROM uploaded_images WHERE id = ?`,
		id,
	).Scan(&img.ID, &img.MimeType, &img.FileName, &img.ImageData, &img.Width, &img.Height, &createdStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get uploaded image: %w", err)
	}
	img.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	return img, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanPage(row scannable) (*model.Page, error) {
	p := &model.Page{}
	var createdStr, updatedStr string

	err := row.Scan(&p.ID, &p.Title, &p.SortOrder, &createdStr, &updatedStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan page: %w", err)
	}

	p.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
	return p, nil
}

func scanPages(rows *sql.Rows) ([]*model.Page, error) {
	pages := []*model.Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func scanBlock(row scannable) (*model.Block, error) {
	b := &model.Block{}
	var createdStr, updatedStr string

	err := row.Scan(&b.ID, &b.PageID, &b.BlockType, &b.Content, &b.SortOrder, &createdStr, &updatedStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan block: %w", err)
	}

	b.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	b.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
	return b, nil
}

func scanBlocks(rows *sql.Rows) ([]*model.Block, error) {
	blocks := []*model.Block{}
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
