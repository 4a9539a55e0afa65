package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/yakoovad/studygroups/internal/model"
)

const snapshotVersion = 1

type snapshot struct {
	Version int            `msgpack:"version"`
	Groups  []*model.Group `msgpack:"groups"`
}

type snapshotGroupRepository struct {
	path string
}

// NewSnapshotGroupRepository stores the full group list, members included,
// as one msgpack document rewritten on every save.
func NewSnapshotGroupRepository(path string) GroupRepository {
	return &snapshotGroupRepository{path: path}
}

func (s *snapshotGroupRepository) Load(ctx context.Context) ([]*model.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := readFile(s.path)
	if err != nil {
		return nil, errors.Wrapf(ErrRead, "%s: %v", s.path, err)
	}
	if data == nil {
		return []*model.Group{}, nil
	}

	var snap snapshot
	if err = msgpack.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(ErrRead, "%s: decode: %v", s.path, err)
	}
	if snap.Version != snapshotVersion {
		return nil, errors.Wrapf(ErrRead, "%s: %v %d", s.path, ErrUnsupportedFormat, snap.Version)
	}

	groups := make([]*model.Group, 0, len(snap.Groups))
	for _, g := range snap.Groups {
		if g == nil {
			continue
		}
		members := make([]*model.Member, 0, len(g.Members))
		for _, m := range g.Members {
			if m != nil {
				members = append(members, m)
			}
		}
		g.Members = members
		groups = append(groups, g)
	}

	return groups, nil
}

func (s *snapshotGroupRepository) Save(ctx context.Context, groups []*model.Group) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := msgpack.Marshal(&snapshot{Version: snapshotVersion, Groups: groups})
	if err != nil {
		return errors.Wrapf(ErrWrite, "encode: %v", err)
	}

	if err = writeFileAtomic(s.path, data); err != nil {
		return errors.Wrapf(ErrWrite, "%s: %v", s.path, err)
	}

	return nil
}

func (s *snapshotGroupRepository) Close() error {
	return nil
}
