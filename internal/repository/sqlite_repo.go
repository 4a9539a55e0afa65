package repository

import (
	"context"
	"database/sql"
	"sync"

	"github.com/pkg/errors"
	"github.com/yakoovad/studygroups/internal/db"
	"github.com/yakoovad/studygroups/internal/model"
	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS study_group (
	position INTEGER PRIMARY KEY,
	name     TEXT NOT NULL,
	subject  TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS member (
	group_position INTEGER NOT NULL REFERENCES study_group(position) ON DELETE CASCADE,
	position       INTEGER NOT NULL,
	name           TEXT NOT NULL,
	identifier     TEXT NOT NULL,
	PRIMARY KEY (group_position, position)
)`,
}

type sqliteGroupRepository struct {
	path string
	db   *sql.DB
	tx   db.Transactor

	initOnce sync.Once
	initErr  error
}

// NewSQLiteGroupRepository keeps the group list in a SQLite database. The file
// is opened lazily so an unreadable database surfaces from Load, not here.
func NewSQLiteGroupRepository(path string) (GroupRepository, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	sqlDB.SetMaxOpenConns(1)

	return &sqliteGroupRepository{
		path: path,
		db:   sqlDB,
		tx:   db.NewSQLTransactor(sqlDB),
	}, nil
}

func (s *sqliteGroupRepository) init(ctx context.Context) error {
	s.initOnce.Do(func() {
		stmts := append([]string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA foreign_keys=ON",
		}, sqliteSchema...)
		for _, stmt := range stmts {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				s.initErr = errors.Wrapf(err, "init %s", s.path)
				return
			}
		}
	})
	return s.initErr
}

func (s *sqliteGroupRepository) Load(ctx context.Context) ([]*model.Group, error) {
	if err := s.init(ctx); err != nil {
		return nil, errors.Wrapf(ErrRead, "%v", err)
	}

	e := db.ExecutorFromContext(ctx, s.db)

	rows, err := e.QueryContext(ctx, "SELECT position, name, subject FROM study_group ORDER BY position")
	if err != nil {
		return nil, errors.Wrapf(ErrRead, "query groups: %v", err)
	}

	groups := make([]*model.Group, 0)
	byPosition := make(map[int64]*model.Group)
	for rows.Next() {
		var (
			pos int64
			g   = model.NewGroup("", "")
		)
		if err = rows.Scan(&pos, &g.Name, &g.Subject); err != nil {
			rows.Close()
			return nil, errors.Wrapf(ErrRead, "scan group: %v", err)
		}
		groups = append(groups, g)
		byPosition[pos] = g
	}
	if err = rows.Close(); err != nil {
		return nil, errors.Wrapf(ErrRead, "close groups: %v", err)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrapf(ErrRead, "iterate groups: %v", err)
	}

	rows, err = e.QueryContext(ctx,
		"SELECT group_position, name, identifier FROM member ORDER BY group_position, position")
	if err != nil {
		return nil, errors.Wrapf(ErrRead, "query members: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pos int64
			m   model.Member
		)
		if err = rows.Scan(&pos, &m.Name, &m.ID); err != nil {
			return nil, errors.Wrapf(ErrRead, "scan member: %v", err)
		}
		if g, ok := byPosition[pos]; ok {
			g.Members = append(g.Members, &m)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrapf(ErrRead, "iterate members: %v", err)
	}

	return groups, nil
}

func (s *sqliteGroupRepository) Save(ctx context.Context, groups []*model.Group) error {
	if err := s.init(ctx); err != nil {
		return errors.Wrapf(ErrWrite, "%v", err)
	}

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		e := db.ExecutorFromContext(txCtx, s.db)

		if _, err := e.ExecContext(txCtx, "DELETE FROM member"); err != nil {
			return err
		}
		if _, err := e.ExecContext(txCtx, "DELETE FROM study_group"); err != nil {
			return err
		}

		for i, g := range groups {
			if _, err := e.ExecContext(txCtx,
				"INSERT INTO study_group (position, name, subject) VALUES (?, ?, ?)",
				i, g.Name, g.Subject); err != nil {
				return errors.Wrapf(err, "insert group %q", g.Name)
			}

			for j, m := range g.Members {
				if _, err := e.ExecContext(txCtx,
					"INSERT INTO member (group_position, position, name, identifier) VALUES (?, ?, ?, ?)",
					i, j, m.Name, m.ID); err != nil {
					return errors.Wrapf(err, "insert member of %q", g.Name)
				}
			}
		}

		return nil
	})
	if err != nil {
		return errors.Wrapf(ErrWrite, "%v", err)
	}

	return nil
}

func (s *sqliteGroupRepository) Close() error {
	return s.db.Close()
}
