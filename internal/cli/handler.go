package cli

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/yakoovad/studygroups/internal/model"
	"github.com/yakoovad/studygroups/internal/service"
	"github.com/yakoovad/studygroups/pkg/logger"
	"go.uber.org/zap"
)

type Handler struct {
	groups *service.GroupService

	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

func (h *Handler) WithGroupService(groups *service.GroupService) *Handler {
	h.groups = groups
	return h
}

func (h *Handler) WithLogger(l *zap.Logger) *Handler {
	h.logger = l
	return h
}

// RegisterCommands adds the group commands and the interactive shell to root.
func (h *Handler) RegisterCommands(root *cobra.Command) {
	root.AddCommand(h.commands()...)
	root.AddCommand(h.shellCommand())
}

func (h *Handler) commands() []*cobra.Command {
	return []*cobra.Command{
		h.createCommand(),
		h.joinCommand(),
		h.leaveCommand(),
		h.searchCommand(),
		h.listCommand(),
		h.showCommand(),
		h.deleteCommand(),
		h.subjectsCommand(),
	}
}

func (h *Handler) createCommand() *cobra.Command {
	var founder model.Member

	cmd := &cobra.Command{
		Use:   "create <group> <subject>",
		Short: "Create a study group with its founding member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := logger.FromContext(cmd.Context())

			req := &service.CreateGroupRequest{
				GroupName: args[0],
				Subject:   args[1],
			}
			if founder.Name != "" || founder.ID != "" {
				req.Founder = &model.Member{Name: founder.Name, ID: founder.ID}
			}

			l.Debug("create command", zap.String("group_name", req.GroupName))

			group, err := h.groups.CreateGroup(cmd.Context(), req)
			if group != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", group)
			}
			return h.transportError(cmd, err)
		},
	}

	cmd.Flags().StringVar(&founder.Name, "name", "", "founder name")
	cmd.Flags().StringVar(&founder.ID, "id", "", "founder student ID or email")

	return cmd
}

func (h *Handler) joinCommand() *cobra.Command {
	var member model.Member

	cmd := &cobra.Command{
		Use:   "join <group>",
		Short: "Add a member to a study group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := h.groups.JoinGroup(cmd.Context(), &service.JoinGroupRequest{
				GroupName: args[0],
				Member:    &model.Member{Name: member.Name, ID: member.ID},
			})
			if group != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "joined %s\n", group)
			}
			return h.transportError(cmd, err)
		},
	}

	cmd.Flags().StringVar(&member.Name, "name", "", "member name")
	cmd.Flags().StringVar(&member.ID, "id", "", "member student ID or email")

	return cmd
}

func (h *Handler) leaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <group> <member-id>",
		Short: "Remove a member from a study group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := h.groups.LeaveGroup(cmd.Context(), args[0], args[1])
			if group != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "left %s\n", group)
			}
			return h.transportError(cmd, err)
		},
	}
}

func (h *Handler) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <subject>",
		Short: "List the groups for a subject (exact match)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := h.groups.SearchBySubject(cmd.Context(), args[0])
			writeGroups(cmd.OutOrStdout(), groups, false)
			return h.transportError(cmd, err)
		},
	}
}

func (h *Handler) listCommand() *cobra.Command {
	var brief bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every group with its members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writeGroups(cmd.OutOrStdout(), h.groups.ListGroups(cmd.Context()), !brief)
			return nil
		},
	}

	cmd.Flags().BoolVar(&brief, "brief", false, "omit members")

	return cmd
}

func (h *Handler) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <group>",
		Short: "Show one group and its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := h.groups.GetGroup(cmd.Context(), args[0])
			if group != nil {
				writeGroups(cmd.OutOrStdout(), []*model.Group{group}, true)
			}
			return h.transportError(cmd, err)
		},
	}
}

func (h *Handler) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <group>",
		Short: "Delete a study group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := h.groups.DeleteGroup(cmd.Context(), args[0])
			if group != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", group.Name)
			}
			return h.transportError(cmd, err)
		},
	}
}

func (h *Handler) subjectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "List the subjects that have groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range h.groups.Subjects(cmd.Context()) {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

// transportError prints notices and turns everything else into a command error.
func (h *Handler) transportError(cmd *cobra.Command, err *service.Error) error {
	if err == nil {
		return nil
	}

	switch err.Code {
	case service.ErrorCodeNoResults, service.ErrorCodePersistenceRead:
		fmt.Fprintf(cmd.ErrOrStderr(), "notice: %s\n", err.Message)
		return nil
	case service.ErrorCodeValidation:
		return errors.Errorf("invalid input: %s", err.Message)
	case service.ErrorCodeGroupExists, service.ErrorCodeNotFound:
		return errors.New(err.Message)
	case service.ErrorCodePersistenceWrite:
		return errors.Errorf("change kept in memory but not saved: %s", err.Message)
	default:
		h.logger.Error("unexpected service error", zap.String("code", string(err.Code)), zap.String("message", err.Message))
		return errors.New(err.Message)
	}
}

func writeGroups(w io.Writer, groups []*model.Group, withMembers bool) {
	for _, g := range groups {
		fmt.Fprintln(w, g)
		if !withMembers {
			continue
		}
		for _, m := range g.Members {
			fmt.Fprintf(w, "  - %s\n", m)
		}
	}
}
