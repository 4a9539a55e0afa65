package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/yakoovad/studygroups/internal/cli"
	"github.com/yakoovad/studygroups/internal/config"
	"github.com/yakoovad/studygroups/internal/lockfile"
	"github.com/yakoovad/studygroups/internal/repository"
	"github.com/yakoovad/studygroups/internal/service"
	"github.com/yakoovad/studygroups/internal/validation"
	"github.com/yakoovad/studygroups/pkg/logger"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	dataPath   string
	encoding   string
	verbose    bool
}

type app struct {
	opts    options
	handler *cli.Handler

	log    *zap.Logger
	groups *service.GroupService

	lockMu sync.Mutex
	lock   *lockfile.Lock
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	defer close(done)

	// Every mutation is already on disk; an interrupt only needs the lock gone.
	go func() {
		select {
		case <-sigCh:
			_ = a.releaseLock()
			os.Exit(130)
		case <-done:
		}
	}()

	err := root.ExecuteContext(context.Background())
	if serr := a.stop(); err == nil {
		err = serr
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "studygroups",
		Short:         "Create, join and search study groups kept in a local data file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.start(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "studygroups.yaml", "config file")
	flags.StringVar(&a.opts.dataPath, "data", "", "data file (overrides config)")
	flags.StringVar(&a.opts.encoding, "encoding", "", "storage encoding: snapshot, rows or sqlite (overrides config)")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "debug logging")

	a.handler = cli.NewHandler(zap.NewNop())
	a.handler.RegisterCommands(root)
	root.AddCommand(a.configCommand())

	return root
}

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
		// config commands never open the data file
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the --config path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.opts.configPath); err == nil && !force {
				return errors.Errorf("%s already exists (use --force to overwrite)", a.opts.configPath)
			}

			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if err = cfg.Save(a.opts.configPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", a.opts.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

// loadConfig reads the config file and applies command-line overrides.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return nil, err
	}
	if a.opts.encoding != "" {
		cfg.Storage.Encoding = repository.Encoding(a.opts.encoding)
	}
	if a.opts.dataPath != "" {
		cfg.Storage.Path = a.opts.dataPath
	}
	if a.opts.verbose {
		cfg.Logging.Level = "debug"
	}
	if err = cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// start loads config, takes the data file lock and opens the registry.
func (a *app) start(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	a.log, err = logger.NewLoggerWithLevel(cfg.Logging.Level)
	if err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	ctx := logger.WithLogger(cmd.Context(), a.log)
	cmd.SetContext(ctx)

	dataPath := cfg.DataPath()
	a.log.Debug("starting", zap.String("data", dataPath), zap.String("encoding", string(cfg.Storage.Encoding)))

	if cfg.Storage.Lock {
		lock, err := lockfile.Acquire(dataPath + ".lock")
		if err != nil {
			return err
		}
		a.lockMu.Lock()
		a.lock = lock
		a.lockMu.Unlock()
	}

	v, err := validation.New(validation.Rules{
		Identifier:       cfg.Members.Identifier,
		LettersOnlyNames: cfg.Members.LettersOnlyNames,
	})
	if err != nil {
		return err
	}

	repo, err := repository.New(cfg.Storage.Encoding, dataPath)
	if err != nil {
		return err
	}

	a.groups = service.NewGroupService(v).
		WithGroupRepo(repo).
		WithFounderRequired(cfg.Members.FounderRequired)

	if serr := a.groups.Open(ctx); serr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "notice: %s\n", serr.Message)
	}

	a.handler.WithGroupService(a.groups).WithLogger(a.log)

	return nil
}

// stop is safe to call more than once.
func (a *app) stop() error {
	var err error

	if a.groups != nil {
		if cerr := a.groups.Close(); cerr != nil {
			a.log.Warn("failed to close repository", zap.Error(cerr))
			err = cerr
		}
		a.groups = nil
	}
	if lerr := a.releaseLock(); lerr != nil {
		a.log.Warn("failed to release lock", zap.Error(lerr))
		err = lerr
	}
	if a.log != nil {
		_ = a.log.Sync()
	}

	return err
}

func (a *app) releaseLock() error {
	a.lockMu.Lock()
	defer a.lockMu.Unlock()

	if a.lock == nil {
		return nil
	}
	err := a.lock.Release()
	a.lock = nil
	return err
}
