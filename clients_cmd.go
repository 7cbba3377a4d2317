package main

import (
	"client-registry/app"
	"client-registry/config"
	"client-registry/config/setup"
	"client-registry/models"
	"client-registry/services"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
)

// searchFlags selects the page shown by list and, with --show, after a mutation.
type searchFlags struct {
	page   int
	id     int64
	name   string
	active string
	show   bool
}

func (f *searchFlags) criteria(cmd *cobra.Command) (models.ClientCriteria, error) {
	var criteria models.ClientCriteria
	if cmd.Flags().Changed("id") {
		criteria.ID = models.Int64(f.id)
	}
	if cmd.Flags().Changed("name") {
		criteria.Name = models.String(f.name)
	}
	if f.active != "" {
		active, err := strconv.ParseBool(f.active)
		if err != nil {
			return criteria, fmt.Errorf("--active must be true or false: %w", err)
		}
		criteria.Active = &active
	}
	return criteria, nil
}

func clientsCommand() *cobra.Command {
	flags := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage clients from the console",
	}
	cmd.PersistentFlags().IntVar(&flags.page, "page", 1, "page to show")
	cmd.PersistentFlags().Int64Var(&flags.id, "id", 0, "match this client identifier")
	cmd.PersistentFlags().StringVar(&flags.name, "name", "", "match names containing this text (case-sensitive)")
	cmd.PersistentFlags().StringVar(&flags.active, "active", "", "match status (true or false)")
	cmd.PersistentFlags().BoolVar(&flags.show, "show", false, "print the matching page after a change")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show one page of matching clients",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				flags.show = true
				return withConsoleManager(cmd, flags, func(m *services.ClientManager) error { return nil })
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show one client",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withConsoleManager(cmd, flags, func(m *services.ClientManager) error {
					c, err := loadClient(cmd, m, args[0])
					if err != nil {
						return err
					}
					m.SetLastSelected(*c)
					fmt.Fprintln(cmd.OutOrStdout(), c)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add an active client",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withConsoleManager(cmd, flags, func(m *services.ClientManager) error {
					c := models.NewClient(args[0])
					if err := m.Add(cmd.Context(), &c); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", c)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "modify <id> <name>",
			Short: "Rename a client",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withConsoleManager(cmd, flags, func(m *services.ClientManager) error {
					c, err := loadClient(cmd, m, args[0])
					if err != nil {
						return err
					}
					c.Name = args[1]
					if err := m.Modify(cmd.Context(), c); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "modified %s\n", c)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "drop <id>",
			Short: "Mark a client inactive",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withConsoleManager(cmd, flags, func(m *services.ClientManager) error {
					c, err := loadClient(cmd, m, args[0])
					if err != nil {
						return err
					}
					if err := m.Drop(cmd.Context(), c); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "dropped %s\n", c)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Remove a client",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withConsoleManager(cmd, flags, func(m *services.ClientManager) error {
					id, err := strconv.ParseInt(args[0], 10, 64)
					if err != nil {
						return fmt.Errorf("invalid client id %q", args[0])
					}
					if err := m.Delete(cmd.Context(), &models.Client{ID: &id}); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "deleted client %d\n", id)
					return nil
				})
			},
		},
	)

	return cmd
}

// withConsoleManager opens the store, runs the selected search when --show is
// set so the mutation refreshes it, runs fn and prints the cached page.
func withConsoleManager(cmd *cobra.Command, flags *searchFlags, fn func(m *services.ClientManager) error) error {
	cfg := config.AppConfig
	logger, logCloser := setup.NewLogger(cfg)
	defer logCloser.Close()
	slog.SetDefault(logger)

	db, err := setup.InitDatabase(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	application, err := setup.InitApp(db, cfg, nil, logger)
	if err != nil {
		db.Close()
		return err
	}
	defer setup.Shutdown(cmd.Context(), application, logger)

	return runConsole(cmd, application, flags, fn)
}

func runConsole(cmd *cobra.Command, application *app.App, flags *searchFlags, fn func(m *services.ClientManager) error) error {
	m := application.NewClientManager()

	if flags.show {
		criteria, err := flags.criteria(cmd)
		if err != nil {
			return err
		}
		if _, err := m.SearchBy(cmd.Context(), criteria, flags.page); err != nil {
			return err
		}
	}

	err := fn(m)
	var replayErr *services.ReplayError
	if err != nil && !errors.As(err, &replayErr) {
		return err
	}
	if replayErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", replayErr)
	}

	if last := m.LastSearch(); last != nil {
		return printPage(cmd.OutOrStdout(), *last)
	}
	return nil
}

func loadClient(cmd *cobra.Command, m *services.ClientManager, raw string) (*models.Client, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid client id %q", raw)
	}
	c, err := m.SearchByID(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %d", services.ErrClientNotFound, id)
	}
	return c, nil
}

func printPage(w io.Writer, s models.ClientSearch) error {
	clients, err := models.DecodeClients(s)
	if err != nil {
		return err
	}
	for _, c := range clients {
		fmt.Fprintln(w, c)
	}
	fmt.Fprintf(w, "page %d of %d\n", s.Page, s.TotalPages)
	return nil
}
