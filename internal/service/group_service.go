package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/yakoovad/studygroups/internal/model"
	"github.com/yakoovad/studygroups/internal/registry"
	"github.com/yakoovad/studygroups/internal/repository"
	"github.com/yakoovad/studygroups/internal/validation"
	"github.com/yakoovad/studygroups/pkg/logger"
	"go.uber.org/zap"
)

type CreateGroupRequest struct {
	GroupName string        `json:"group_name" validate:"required,single_line"`
	Subject   string        `json:"subject" validate:"required,single_line"`
	Founder   *model.Member `json:"founder,omitempty"`
}

type JoinGroupRequest struct {
	GroupName string        `json:"group_name" validate:"required"`
	Member    *model.Member `json:"member" validate:"required"`
}

// GroupService runs every user action against the registry and writes the
// result through the repository before returning. A failed write is reported
// but the in-memory change is kept.
type GroupService struct {
	groups   *registry.Registry
	repo     repository.GroupRepository
	validate *validation.Validator

	founderRequired bool
}

func NewGroupService(v *validation.Validator) *GroupService {
	groups, _ := registry.New()
	return &GroupService{
		groups:          groups,
		validate:        v,
		founderRequired: true,
	}
}

func (s *GroupService) WithGroupRepo(r repository.GroupRepository) *GroupService {
	s.repo = r
	return s
}

func (s *GroupService) WithFounderRequired(required bool) *GroupService {
	s.founderRequired = required
	return s
}

// Open replaces the registry with the repository contents. When loading
// fails the registry starts empty and a PERSISTENCE_READ notice is returned.
func (s *GroupService) Open(ctx context.Context) *Error {
	l := logger.FromContext(ctx)

	loaded, err := s.repo.Load(ctx)
	if err != nil {
		l.Warn("failed to load groups, starting empty", zap.Error(err))
		s.groups, _ = registry.New()
		return NewError(ErrorCodePersistenceRead, errors.Wrap(err, "could not load saved groups").Error())
	}

	groups, skipped := registry.New(loaded...)
	if len(skipped) > 0 {
		l.Warn("dropped groups with duplicate names", zap.Strings("group_names", skipped))
	}
	s.groups = groups

	l.Debug("groups loaded", zap.Int("count", groups.Len()))

	return nil
}

func (s *GroupService) CreateGroup(ctx context.Context, req *CreateGroupRequest) (*model.Group, *Error) {
	l := logger.FromContext(ctx)

	req.GroupName = strings.TrimSpace(req.GroupName)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Founder = trimMember(req.Founder)

	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if req.Founder != nil || s.founderRequired {
		if err := s.validate.Member(req.Founder); err != nil {
			return nil, validationError(err)
		}
	}

	l.Info("creating group", zap.String("group_name", req.GroupName), zap.String("subject", req.Subject))

	var founders []*model.Member
	if req.Founder != nil {
		founders = append(founders, req.Founder)
	}

	group, err := s.groups.Create(req.GroupName, req.Subject, founders...)
	if errors.Is(err, registry.ErrDuplicateName) {
		l.Warn("group already exists", zap.String("group_name", req.GroupName))
		return nil, NewError(ErrorCodeGroupExists, "group name already exists")
	}
	if err != nil {
		l.Error("failed to create group", zap.String("group_name", req.GroupName), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to create group")
	}

	return group, s.persist(ctx)
}

func (s *GroupService) JoinGroup(ctx context.Context, req *JoinGroupRequest) (*model.Group, *Error) {
	l := logger.FromContext(ctx)

	req.GroupName = strings.TrimSpace(req.GroupName)
	req.Member = trimMember(req.Member)

	if err := s.validate.Required("group_name", req.GroupName); err != nil {
		return nil, validationError(err)
	}
	if err := s.validate.Member(req.Member); err != nil {
		return nil, validationError(err)
	}

	l.Info("joining group", zap.String("group_name", req.GroupName), zap.String("member_id", req.Member.ID))

	group, err := s.groups.Join(req.GroupName, req.Member)
	if errors.Is(err, registry.ErrNotFound) {
		l.Warn("group not found", zap.String("group_name", req.GroupName))
		return nil, NewError(ErrorCodeNotFound, "group not found")
	}
	if err != nil {
		l.Error("failed to join group", zap.String("group_name", req.GroupName), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to join group")
	}

	return group, s.persist(ctx)
}

func (s *GroupService) LeaveGroup(ctx context.Context, groupName, memberID string) (*model.Group, *Error) {
	l := logger.FromContext(ctx)

	groupName = strings.TrimSpace(groupName)
	memberID = strings.TrimSpace(memberID)

	if err := s.validate.Required("group_name", groupName); err != nil {
		return nil, validationError(err)
	}
	if err := s.validate.Required("id", memberID); err != nil {
		return nil, validationError(err)
	}

	l.Info("leaving group", zap.String("group_name", groupName), zap.String("member_id", memberID))

	group, err := s.groups.Leave(groupName, memberID)
	if errors.Is(err, registry.ErrNotFound) {
		l.Warn("group or member not found", zap.String("group_name", groupName), zap.String("member_id", memberID))
		return nil, NewError(ErrorCodeNotFound, "group or member not found")
	}
	if err != nil {
		l.Error("failed to leave group", zap.String("group_name", groupName), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to leave group")
	}

	return group, s.persist(ctx)
}

// DeleteGroup removes the group from the registry and rewrites the backing file.
func (s *GroupService) DeleteGroup(ctx context.Context, groupName string) (*model.Group, *Error) {
	l := logger.FromContext(ctx)

	groupName = strings.TrimSpace(groupName)
	if err := s.validate.Required("group_name", groupName); err != nil {
		return nil, validationError(err)
	}

	l.Info("deleting group", zap.String("group_name", groupName))

	group, err := s.groups.Delete(groupName)
	if errors.Is(err, registry.ErrNotFound) {
		l.Warn("group not found", zap.String("group_name", groupName))
		return nil, NewError(ErrorCodeNotFound, "group not found")
	}
	if err != nil {
		l.Error("failed to delete group", zap.String("group_name", groupName), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to delete group")
	}

	return group, s.persist(ctx)
}

// SearchBySubject matches the subject exactly. An empty result comes with a
// NO_RESULTS notice.
func (s *GroupService) SearchBySubject(ctx context.Context, subject string) ([]*model.Group, *Error) {
	l := logger.FromContext(ctx)

	subject = strings.TrimSpace(subject)
	if err := s.validate.Required("subject", subject); err != nil {
		return nil, validationError(err)
	}

	l.Debug("searching groups", zap.String("subject", subject))

	groups := s.groups.SearchBySubject(subject)
	if len(groups) == 0 {
		return groups, NewError(ErrorCodeNoResults, "no groups for this subject")
	}

	return groups, nil
}

func (s *GroupService) GetGroup(ctx context.Context, groupName string) (*model.Group, *Error) {
	l := logger.FromContext(ctx)
	l.Debug("getting group", zap.String("group_name", groupName))

	group, err := s.groups.Get(strings.TrimSpace(groupName))
	if errors.Is(err, registry.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "group not found")
	}
	if err != nil {
		l.Error("failed to get group", zap.String("group_name", groupName), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get group")
	}

	return group, nil
}

func (s *GroupService) ListGroups(_ context.Context) []*model.Group {
	return s.groups.ListAll()
}

func (s *GroupService) Subjects(_ context.Context) []string {
	return s.groups.Subjects()
}

// Flush writes the current registry; used when a session ends.
func (s *GroupService) Flush(ctx context.Context) *Error {
	return s.persist(ctx)
}

func (s *GroupService) Close() error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Close()
}

func (s *GroupService) persist(ctx context.Context) *Error {
	l := logger.FromContext(ctx)

	if err := s.repo.Save(ctx, s.groups.ListAll()); err != nil {
		l.Error("failed to save groups", zap.Error(err))
		return NewError(ErrorCodePersistenceWrite, errors.Wrap(err, "could not save groups").Error())
	}

	l.Debug("groups saved", zap.Int("count", s.groups.Len()))

	return nil
}

func trimMember(m *model.Member) *model.Member {
	if m == nil {
		return nil
	}
	return &model.Member{
		Name: strings.TrimSpace(m.Name),
		ID:   strings.TrimSpace(m.ID),
	}
}

func validationError(err error) *Error {
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		return NewError(ErrorCodeValidation, fe.Error())
	}
	return NewError(ErrorCodeValidation, err.Error())
}
