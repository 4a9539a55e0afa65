package repository

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"strings"

	"github.com/pkg/errors"
	"github.com/yakoovad/studygroups/internal/model"
	"github.com/yakoovad/studygroups/pkg/logger"
	"go.uber.org/zap"
)

var errMultiline = errors.New("field contains a line break")

type rowsGroupRepository struct {
	path string
}

// NewRowsGroupRepository stores one "name,subject" line per group. Members are
// not persisted. Every save rewrites the whole file. Fields holding a comma or
// quote are quoted; all other rows match the plain legacy format.
func NewRowsGroupRepository(path string) GroupRepository {
	return &rowsGroupRepository{path: path}
}

func (r *rowsGroupRepository) Load(ctx context.Context) ([]*model.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := logger.FromContext(ctx)

	data, err := readFile(r.path)
	if err != nil {
		return nil, errors.Wrapf(ErrRead, "%s: %v", r.path, err)
	}

	groups := make([]*model.Group, 0)
	if data == nil {
		return groups, nil
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for n := 1; sc.Scan(); n++ {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields, ok := parseRow(line)
		if !ok {
			l.Warn("skipping malformed row",
				zap.String("path", r.path),
				zap.Int("line", n),
				zap.String("row", line))
			continue
		}

		groups = append(groups, model.NewGroup(
			strings.TrimSpace(fields[0]),
			strings.TrimSpace(fields[1]),
		))
	}
	if err = sc.Err(); err != nil {
		return nil, errors.Wrapf(ErrRead, "%s: %v", r.path, err)
	}

	return groups, nil
}

// parseRow reads one line as a quoted CSV record and falls back to a plain
// comma split for legacy rows whose quotes are not CSV quoting.
func parseRow(line string) ([]string, bool) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1

	if record, err := cr.Read(); err == nil && len(record) == 2 {
		return record, true
	}

	if fields := strings.Split(line, ","); len(fields) == 2 {
		return fields, true
	}

	return nil, false
}

func (r *rowsGroupRepository) Save(ctx context.Context, groups []*model.Group) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	for _, g := range groups {
		if strings.ContainsAny(g.Name, "\r\n") || strings.ContainsAny(g.Subject, "\r\n") {
			return errors.Wrapf(ErrWrite, "group %q: %v", g.Name, errMultiline)
		}
		if err := cw.Write([]string{g.Name, g.Subject}); err != nil {
			return errors.Wrapf(ErrWrite, "encode %q: %v", g.Name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrapf(ErrWrite, "encode: %v", err)
	}

	if err := writeFileAtomic(r.path, buf.Bytes()); err != nil {
		return errors.Wrapf(ErrWrite, "%s: %v", r.path, err)
	}

	return nil
}

func (r *rowsGroupRepository) Close() error {
	return nil
}
