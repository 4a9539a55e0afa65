package model

import "fmt"

// IdentifierKind selects which format a member identifier must follow.
type IdentifierKind string

const (
	IdentifierStudentID IdentifierKind = "student_id"
	IdentifierEmail     IdentifierKind = "email"
)

type Member struct {
	Name string `json:"name" msgpack:"name" validate:"required"`
	ID   string `json:"id" msgpack:"id" validate:"required"`
}

func (m *Member) Clone() *Member {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func (m *Member) String() string {
	return fmt.Sprintf("%s (%s)", m.Name, m.ID)
}
