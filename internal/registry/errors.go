package registry

import "github.com/pkg/errors"

var (
	ErrDuplicateName = errors.New("group name already exists")
	ErrNotFound      = errors.New("not found")
)
