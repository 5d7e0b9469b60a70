package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS pages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    sort_order INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS page_blocks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    page_id INTEGER NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
    block_type TEXT NOT NULL CHECK (block_type IN ('text', 'image')),
    content TEXT NOT NULL,
    sort_order INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS uploaded_images (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    mime_type TEXT NOT NULL,
    file_name TEXT NOT NULL,
    image_data BLOB NOT NULL,
    width INTEGER NOT NULL DEFAULT 0,
    height INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_page_blocks_page_id_sort_order
    ON page_blocks (page_id, sort_order, id);
`

// migrateLegacyItems performs the one-time migration of the legacy
// page_items table into pages + page_blocks. It runs only when the legacy
// table exists and page_blocks is empty; once any block exists it is a
// no-op, even if legacy data remains.
func migrateLegacyItems(db *sql.DB) error {
	var legacyCount int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'page_items'`,
	).Scan(&legacyCount)
	if err != nil {
		return fmt.Errorf("check legacy table: %w", err)
	}
	if legacyCount == 0 {
		return nil
	}

	var blockCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM page_blocks`).Scan(&blockCount); err != nil {
		return fmt.Errorf("count blocks: %w", err)
	}
	if blockCount > 0 {
		return nil
	}

	// Each legacy page key becomes a page; page order follows the earliest
	// item timestamp per key.
	rows, err := db.Query(`
		SELECT page_key, MIN(created_at) AS created_first
		FROM page_items
		GROUP BY page_key
		ORDER BY created_first ASC`)
	if err != nil {
		return fmt.Errorf("list legacy pages: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key, createdFirst string
		if err := rows.Scan(&key, &createdFirst); err != nil {
			return fmt.Errorf("scan legacy page: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list legacy pages: %w", err)
	}

	for i, key := range keys {
		title := strings.ReplaceAll(key, "-", " ")
		if title == "" {
			title = fmt.Sprintf("Page %d", i+1)
		}

		now := time.Now().UTC().Format(time.RFC3339)
		res, err := db.Exec(`
			INSERT INTO pages (title, sort_order, created_at, updated_at)
			VALUES (?, ?, ?, ?)`,
			title, i+1, now, now,
		)
		if err != nil {
			return fmt.Errorf("insert migrated page: %w", err)
		}
		pageID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("migrated page id: %w", err)
		}

		if err := migrateLegacyItemsForPage(db, pageID, key); err != nil {
			return err
		}
	}

	return nil
}

// migrateLegacyItemsForPage copies one key's legacy items into text blocks,
// preserving the original timestamps.
func migrateLegacyItemsForPage(db *sql.DB, pageID int64, pageKey string) error {
	rows, err := db.Query(`
		SELECT content, created_at
		FROM page_items
		WHERE page_key = ?
		ORDER BY created_at ASC, id ASC`,
		pageKey,
	)
	if err != nil {
		return fmt.Errorf("list legacy items: %w", err)
	}
	defer rows.Close()

	type legacyItem struct {
		content   string
		createdAt string
	}
	var items []legacyItem
	for rows.Next() {
		var it legacyItem
		if err := rows.Scan(&it.content, &it.createdAt); err != nil {
			return fmt.Errorf("scan legacy item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list legacy items: %w", err)
	}

	for j, it := range items {
		_, err := db.Exec(`
			INSERT INTO page_blocks (page_id, block_type, content, sort_order, created_at, updated_at)
			VALUES (?, 'text', ?, ?, ?, ?)`,
			pageID, it.content, j+1, it.createdAt, it.createdAt,
		)
		if err != nil {
			return fmt.Errorf("insert migrated block: %w", err)
		}
	}
	return nil
}

// seedDefaultPages inserts the starter pages when the store has none.
func seedDefaultPages(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM pages`).Scan(&count); err != nil {
		return fmt.Errorf("count pages: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	titles := []string{"Page 1", "Page 2", "Page 3", "The End"}
	for i, title := range titles {
		_, err := db.Exec(`
			INSERT INTO pages (title, sort_order, created_at, updated_at)
			VALUES (?, ?, ?, ?)`,
			title, i+1, now, now,
		)
		if err != nil {
			return fmt.Errorf("seed page: %w", err)
		}
	}
	return nil
}
