package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/yakoovad/studygroups/pkg/logger"
	"go.uber.org/zap"
)

const shellPrompt = "studygroups> "

var ErrUnterminatedQuote = errors.New("unterminated quote")

func (h *Handler) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session; state is saved again on exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.runShell(cmd)
		},
	}
}

func (h *Handler) runShell(cmd *cobra.Command) error {
	l := logger.FromContext(cmd.Context())
	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())

	l.Debug("shell started")

	for {
		fmt.Fprint(out, shellPrompt)
		if !in.Scan() {
			fmt.Fprintln(out)
			break
		}

		line := strings.TrimSpace(in.Text())
		if line == "exit" || line == "quit" {
			break
		}
		if line == "" {
			continue
		}

		args, err := SplitArgs(line)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			continue
		}

		if err = h.sessionRoot(cmd, args).ExecuteContext(cmd.Context()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
	}

	if err := in.Err(); err != nil {
		l.Warn("reading shell input failed", zap.Error(err))
	}

	l.Debug("shell finished, saving groups")

	return h.transportError(cmd, h.groups.Flush(cmd.Context()))
}

// sessionRoot builds a fresh command tree per line so flag values never
// carry over from one line to the next.
func (h *Handler) sessionRoot(parent *cobra.Command, args []string) *cobra.Command {
	root := &cobra.Command{
		Use:           "studygroups",
		Short:         "Type a command, \"help\" for the list, \"exit\" to save and quit",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(h.commands()...)
	root.SetArgs(args)
	root.SetIn(parent.InOrStdin())
	root.SetOut(parent.OutOrStdout())
	root.SetErr(parent.ErrOrStderr())

	return root
}

// SplitArgs splits a shell line on blanks. Single and double quotes group
// words; inside double quotes a backslash escapes the next character.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quote == '"' && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 || escaped {
		return nil, ErrUnterminatedQuote
	}
	if inWord {
		args = append(args, cur.String())
	}

	return args, nil
}
