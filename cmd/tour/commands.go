package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dom/tour-of-heroes/internal/domain"
	"github.com/dom/tour-of-heroes/internal/heroclient"
	"github.com/dom/tour-of-heroes/internal/search"
	"github.com/dom/tour-of-heroes/internal/views"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var heroesCmd = &cobra.Command{
	Use:   "heroes",
	Short: "List all heroes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := views.NewHeroesView(heroes)
		v.Load(cmd.Context())
		printHeroes(cmd.OutOrStdout(), "My Heroes", v.Heroes())
		return nil
	},
}

var heroCmd = &cobra.Command{
	Use:   "hero <id>",
	Short: "Show one hero's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		v := views.NewHeroDetailView(heroes, nil)
		v.Load(cmd.Context(), id)
		printHero(cmd.OutOrStdout(), v.Hero())
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a hero",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := views.NewHeroesView(heroes)
		v.Load(cmd.Context())
		if created := v.Add(cmd.Context(), strings.Join(args, " ")); created != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "added %d %s\n", created.ID, created.Name)
		}
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a hero",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		v := views.NewHeroDetailView(heroes, func() {
			fmt.Fprintln(out, "back to heroes")
		})
		v.Load(cmd.Context(), id)
		if v.Hero() == nil {
			return nil
		}
		v.SetName(strings.Join(args[1:], " "))
		printHero(out, v.Hero())
		v.Save(cmd.Context())
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a hero",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		v := views.NewHeroesView(heroes)
		v.Load(cmd.Context())
		v.Delete(cmd.Context(), domain.Hero{ID: id})
		printHeroes(cmd.OutOrStdout(), "My Heroes", v.Heroes())
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the top heroes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := views.NewDashboardView(heroes)
		v.Load(cmd.Context())
		printHeroes(cmd.OutOrStdout(), "Top Heroes", v.Heroes())
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [keystrokes...]",
	Short: "Search heroes as you type",
	Long: `Search treats every argument, or every line read from stdin when no
arguments are given, as the contents of the search box after one keystroke.
Terms are debounced, so only terms that stay put for the debounce interval
are searched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		show := func(results []domain.Hero) {
			printHeroes(out, "Hero Search", results)
		}

		keystrokes := make(chan string)
		go func() {
			defer close(keystrokes)
			feedKeystrokes(cmd.Context(), cmd.InOrStdin(), args, keystrokes)
		}()

		if remoteSearch {
			return runRemoteSearch(cmd.Context(), keystrokes, show)
		}

		pipeline := search.New(heroes.Lookup,
			search.WithDebounce(cfg.SearchDebounce),
			search.WithLogger(logger.Named("search")),
		)
		v := views.NewHeroSearchView(cmd.Context(), pipeline, show)
		for term := range keystrokes {
			if !v.Search(term) {
				break
			}
		}
		v.Close()
		return nil
	},
}

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Open the dashboard and show the status log it produced",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		views.NewDashboardView(heroes).Load(cmd.Context())

		v := views.NewMessagesView(messages)
		printMessages(cmd.OutOrStdout(), v)
		if clearLog {
			v.Clear()
			printMessages(cmd.OutOrStdout(), v)
		}
		return nil
	},
}

// feedKeystrokes sends args, or stdin lines when there are none.
func feedKeystrokes(ctx context.Context, in io.Reader, args []string, out chan<- string) {
	send := func(term string) bool {
		select {
		case out <- term:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if len(args) > 0 {
		for _, term := range args {
			if !send(term) {
				return
			}
		}
		return
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if !send(scanner.Text()) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("reading keystrokes failed", zap.Error(err))
	}
}

// remoteSettle is how long the remote search waits for more results once
// the debounce interval has passed without one.
const remoteSettle = time.Second

func runRemoteSearch(ctx context.Context, keystrokes <-chan string, show func([]domain.Hero)) error {
	session, err := heroclient.DialSearch(ctx, cfg.APIBaseURL, logger.Named("search"))
	if err != nil {
		return err
	}
	defer session.Close()

	delivered := make(chan struct{}, 1)
	go func() {
		for results := range session.Results() {
			show(results)
			select {
			case delivered <- struct{}{}:
			default:
			}
		}
	}()

	for term := range keystrokes {
		if err := session.Search(term); err != nil {
			return fmt.Errorf("send search term: %w", err)
		}
	}

	// The server holds the last term for its debounce interval, so wait
	// until results stop arriving.
	idle := time.NewTimer(cfg.SearchDebounce + remoteSettle)
	defer idle.Stop()
	deadline := time.After(cfg.SearchDebounce + cfg.HTTPClientTimeout)
	for {
		select {
		case <-delivered:
			idle.Reset(remoteSettle)
		case <-idle.C:
			return nil
		case <-deadline:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid hero id %q", s)
	}
	return id, nil
}
