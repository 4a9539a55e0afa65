package repository

import "github.com/pkg/errors"

var (
	ErrRead              = errors.New("read groups")
	ErrWrite             = errors.New("write groups")
	ErrUnknownEncoding   = errors.New("unknown storage encoding")
	ErrUnsupportedFormat = errors.New("unsupported snapshot version")
)
