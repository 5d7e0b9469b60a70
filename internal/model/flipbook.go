package model

import "time"

// Block types accepted by the API.
const (
	BlockTypeText  = "text"
	BlockTypeImage = "image"
)

// ValidBlockType reports whether t is one of the accepted block types.
func ValidBlockType(t string) bool {
	return t == BlockTypeText || t == BlockTypeImage
}

// Page is an ordered container of content blocks, displayed as one leaf
// of the flip book. Display order is ascending (SortOrder, ID); sort
// order values are not required to be contiguous or unique.
type Page struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Block is a single unit of content belonging to a page. Content holds
// the literal body for text blocks and an image URL for image blocks.
type Block struct {
	ID        int64     `json:"id"`
	PageID    int64     `json:"pageId"`
	BlockType string    `json:"blockType"`
	Content   string    `json:"content"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UploadedImage is an immutable stored image blob, addressed only by the
// URL embedding its ID. Width and Height are probed at upload time and
// are zero when the payload could not be decoded.
type UploadedImage struct {
	ID        int64
	MimeType  string
	FileName  string
	ImageData []byte
	Width     int
	Height    int
	CreatedAt time.Time
}

// PageUpdate carries the fields of a partial page update. Nil means the
// field was absent from the request and the stored value is kept.
type PageUpdate struct {
	Title     *string
	SortOrder *int
}

// BlockUpdate carries a full block replacement. BlockType and Content
// are required; SortOrder follows the same absent-means-keep rule as
// PageUpdate.
type BlockUpdate struct {
	BlockType string
	Content   string
	SortOrder *int
}
