package model

import "fmt"

type Group struct {
	Name    string    `json:"group_name" msgpack:"name" validate:"required,single_line"`
	Subject string    `json:"subject" msgpack:"subject" validate:"required,single_line"`
	Members []*Member `json:"members" msgpack:"members"`
}

func NewGroup(name, subject string, members ...*Member) *Group {
	g := &Group{
		Name:    name,
		Subject: subject,
		Members: make([]*Member, 0, len(members)),
	}
	for _, m := range members {
		g.Members = append(g.Members, m.Clone())
	}
	return g
}

// Clone returns a deep copy, members included.
func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	return NewGroup(g.Name, g.Subject, g.Members...)
}

func (g *Group) String() string {
	return fmt.Sprintf("%s - %s (%d members)", g.Name, g.Subject, len(g.Members))
}
