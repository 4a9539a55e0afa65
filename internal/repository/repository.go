// Package repository persists the group list to a backing file.
package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/yakoovad/studygroups/internal/model"
)

type Encoding string

const (
	EncodingSnapshot Encoding = "snapshot"
	EncodingRows     Encoding = "rows"
	EncodingSQLite   Encoding = "sqlite"
)

// GroupRepository loads and stores the whole group list at once.
// Load returns an empty list when the backing file does not exist yet.
type GroupRepository interface {
	Load(ctx context.Context) ([]*model.Group, error)
	Save(ctx context.Context, groups []*model.Group) error
	Close() error
}

func New(encoding Encoding, path string) (GroupRepository, error) {
	switch encoding {
	case EncodingSnapshot:
		return NewSnapshotGroupRepository(path), nil
	case EncodingRows:
		return NewRowsGroupRepository(path), nil
	case EncodingSQLite:
		return NewSQLiteGroupRepository(path)
	default:
		return nil, errors.Wrap(ErrUnknownEncoding, string(encoding))
	}
}
