package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nhle/todo-projects/internal/app"
	"github.com/nhle/todo-projects/internal/logging"
	"github.com/nhle/todo-projects/internal/model"
	"github.com/nhle/todo-projects/internal/report"
	"github.com/nhle/todo-projects/internal/store"
	"github.com/nhle/todo-projects/internal/theme"
	"github.com/nhle/todo-projects/internal/ui/details"
)

type rootOptions struct {
	configPath string
	dataDir    string
	backend    string
}

// session is what every command needs: the loaded config, an open
// store and the log file to close afterwards.
type session struct {
	cfg   *model.AppConfig
	store store.Store
	log   io.Closer
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		log.Warn("closing store", "err", err)
	}
	if s.log != nil {
		_ = s.log.Close()
	}
}

func openSession(opts *rootOptions) (*session, error) {
	cfg, err := model.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.dataDir != "" {
		cfg.Storage.DataDir = opts.dataDir
	}
	if opts.backend != "" {
		cfg.Storage.Backend = opts.backend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	closer, err := logging.Setup(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("starting", "version", Version, "backend", cfg.Storage.Backend, "data_dir", cfg.DataDir())

	st, err := store.Open(cfg)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	return &session{cfg: cfg, store: st, log: closer}, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "todo",
		Short:         "Terminal to-do lists grouped into projects",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			projects, err := s.store.Load(cmd.Context())
			if err != nil {
				return err
			}

			details.DetectStyle()
			p := tea.NewProgram(
				app.New(s.cfg, s.store, projects, app.WithConfigPath(opts.configPath)),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "config file")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "data directory (default: per-user config dir)")
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", `storage backend, "json" or "sqlite"`)

	root.AddCommand(
		newProjectsCmd(opts),
		newExportCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

func newProjectsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects with their task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			projects, err := s.store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects.")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), projectsTable(projects))
			return nil
		},
	}
}

func projectsTable(projects []model.Project) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers("ID", "NAME", "TASKS", "DONE", "SUBTASKS", "COMPLETION")
	for _, p := range projects {
		st := p.Stats()
		t.Row(
			strconv.FormatUint(p.ID, 10),
			p.Name,
			strconv.Itoa(st.Total),
			strconv.Itoa(st.Completed),
			strconv.Itoa(st.Subtasks),
			fmt.Sprintf("%.1f%%", st.CompletionPercent()),
		)
	}
	return t.Render()
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		project string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a project's PDF report",
		Long: "Write a project's PDF report. Without --out the report goes to the\n" +
			"configured export directory as <name>_<unix time>.pdf.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			projects, err := s.store.Load(cmd.Context())
			if err != nil {
				return err
			}

			active, err := resolveProject(projects, project)
			if err != nil {
				return err
			}

			var picker report.DestinationPicker = report.DownloadsPicker{Dir: s.cfg.Export.Dir}
			if out != "" {
				picker = report.FixedPathPicker{Path: out}
			}

			dest, err := report.NewExporter(picker).Export(cmd.Context(), projects, active)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "project name or id (default: first project)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

// resolveProject finds a project by id or case-insensitive name. An
// empty query selects the first project, the one the UI opens with.
func resolveProject(projects []model.Project, query string) (*uint64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.NewState(projects).ActiveProjectID, nil
	}
	if id, err := strconv.ParseUint(query, 10, 64); err == nil {
		for _, p := range projects {
			if p.ID == id {
				return &id, nil
			}
		}
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, query) {
			id := p.ID
			return &id, nil
		}
	}
	return nil, fmt.Errorf("project %q: %w", query, report.ErrProjectNotFound)
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), opts.configPath)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(opts.configPath); err == nil {
				return fmt.Errorf("%s already exists", opts.configPath)
			}
			cfg, err := model.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if err := model.SaveConfig(opts.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), opts.configPath)
			return nil
		},
	})

	return cmd
}
