package database

import (
	"errors"

	"github.com/leca/flipbook/internal/model"
)

// ErrNotFound is returned when an id-addressed row does not exist, or when
// a block's page and id do not match.
var ErrNotFound = errors.New("not found")

// Database defines the persistence interface for all domain objects.
type Database interface {
	// Ping verifies the store is reachable.
	Ping() error

	// Pages
	ListPages() ([]*model.Page, error)
	CreatePage(title string) (*model.Page, error)
	UpdatePage(id int64, upd model.PageUpdate) (*model.Page, error)
	DeletePage(id int64) error

	// Blocks
	ListBlocks(pageID int64) ([]*model.Block, error)
	CreateBlock(pageID int64, blockType, content string) (*model.Block, error)
	UpdateBlock(pageID, blockID int64, upd model.BlockUpdate) (*model.Block, error)
	DeleteBlock(pageID, blockID int64) error

	// Uploaded images
	CreateUploadedImage(img *model.UploadedImage) (int64, error)
	GetUploadedImage(id int64) (*model.UploadedImage, error)

	Close() error
}
