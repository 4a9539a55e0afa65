// Package registry holds study groups in memory together with the subject
// index and the name set derived from them.
//
// Every method mutates the group list, the index and the name set together,
// and hands out copies, so callers cannot leave the derived structures stale.
package registry

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/yakoovad/studygroups/internal/model"
)

type Registry struct {
	groups    []*model.Group
	bySubject map[string][]*model.Group
	names     map[string]*model.Group
}

// New builds a registry from a loaded group list. Groups whose name repeats
// an earlier one are dropped and their names returned.
func New(groups ...*model.Group) (*Registry, []string) {
	r := &Registry{
		groups:    make([]*model.Group, 0, len(groups)),
		bySubject: make(map[string][]*model.Group),
		names:     make(map[string]*model.Group, len(groups)),
	}

	var skipped []string
	for _, g := range groups {
		if g == nil {
			continue
		}
		if _, ok := r.names[nameKey(g.Name)]; ok {
			skipped = append(skipped, g.Name)
			continue
		}
		r.insert(g.Clone())
	}

	return r, skipped
}

// Create adds a group with the given founders (zero or one in practice).
func (r *Registry) Create(name, subject string, founders ...*model.Member) (*model.Group, error) {
	if _, ok := r.names[nameKey(name)]; ok {
		return nil, errors.Wrap(ErrDuplicateName, name)
	}

	g := model.NewGroup(name, subject, founders...)
	r.insert(g)

	return g.Clone(), nil
}

// Join appends member to the group matching name, case-insensitively.
// Repeat joins by the same identifier are allowed.
func (r *Registry) Join(name string, member *model.Member) (*model.Group, error) {
	g, ok := r.names[nameKey(name)]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "group %q", name)
	}

	g.Members = append(g.Members, member.Clone())

	return g.Clone(), nil
}

// Leave removes the first member of the group whose identifier equals memberID.
func (r *Registry) Leave(name, memberID string) (*model.Group, error) {
	g, ok := r.names[nameKey(name)]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "group %q", name)
	}

	for i, m := range g.Members {
		if m.ID == memberID {
			g.Members = append(g.Members[:i:i], g.Members[i+1:]...)
			return g.Clone(), nil
		}
	}

	return nil, errors.Wrapf(ErrNotFound, "member %q in group %q", memberID, name)
}

// SearchBySubject returns the groups with exactly this subject, in creation order.
func (r *Registry) SearchBySubject(subject string) []*model.Group {
	return cloneAll(r.bySubject[subject])
}

// Delete removes the group from the list, the name set and the subject index.
func (r *Registry) Delete(name string) (*model.Group, error) {
	g, ok := r.names[nameKey(name)]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "group %q", name)
	}

	r.groups = without(r.groups, g)
	delete(r.names, nameKey(name))

	bucket := without(r.bySubject[g.Subject], g)
	if len(bucket) == 0 {
		delete(r.bySubject, g.Subject)
	} else {
		r.bySubject[g.Subject] = bucket
	}

	return g.Clone(), nil
}

func (r *Registry) Get(name string) (*model.Group, error) {
	g, ok := r.names[nameKey(name)]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "group %q", name)
	}
	return g.Clone(), nil
}

// ListAll returns every group in insertion order.
func (r *Registry) ListAll() []*model.Group {
	return cloneAll(r.groups)
}

// Subjects returns the distinct subjects in the order they first appear.
func (r *Registry) Subjects() []string {
	subjects := make([]string, 0, len(r.bySubject))
	seen := make(map[string]struct{}, len(r.bySubject))

	for _, g := range r.groups {
		if _, ok := seen[g.Subject]; ok {
			continue
		}
		seen[g.Subject] = struct{}{}
		subjects = append(subjects, g.Subject)
	}

	return subjects
}

func (r *Registry) Len() int {
	return len(r.groups)
}

func (r *Registry) insert(g *model.Group) {
	r.groups = append(r.groups, g)
	r.names[nameKey(g.Name)] = g
	r.bySubject[g.Subject] = append(r.bySubject[g.Subject], g)
}

func nameKey(name string) string {
	return strings.ToLower(name)
}

func without(groups []*model.Group, target *model.Group) []*model.Group {
	out := make([]*model.Group, 0, len(groups))
	for _, g := range groups {
		if g != target {
			out = append(out, g)
		}
	}
	return out
}

func cloneAll(groups []*model.Group) []*model.Group {
	out := make([]*model.Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Clone())
	}
	return out
}
