package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/FranLegon/cloud-drives-search/internal/adapter"
	"github.com/FranLegon/cloud-drives-search/internal/coordinator"
	"github.com/FranLegon/cloud-drives-search/internal/eventbus"
	"github.com/FranLegon/cloud-drives-search/internal/logger"
	"github.com/FranLegon/cloud-drives-search/internal/mainloop"
	"github.com/FranLegon/cloud-drives-search/internal/model"
	"github.com/FranLegon/cloud-drives-search/internal/search"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	searchType  string
	onlyFolders bool
	maxPages    int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a search and print the results",
	Long: `Runs one search against the selected account and prints the items of up to
--pages pages. Remote searches fill the local cache, which the "local" and
"offline" types read without touching the network.

For the "none" type the query is a folder ID; leave it empty for the root.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	names := make([]string, 0, len(search.Types()))
	for _, t := range search.Types() {
		names = append(names, t.String())
	}
	searchCmd.Flags().StringVarP(&searchType, "type", "t", search.FileSearch.String(), "search type: "+strings.Join(names, ", "))
	searchCmd.Flags().BoolVar(&onlyFolders, "only-folders", false, "return folders only")
	searchCmd.Flags().IntVarP(&maxPages, "pages", "p", 1, "maximum number of pages to fetch")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	typ, err := search.ParseType(searchType)
	if err != nil {
		return err
	}
	if maxPages < 1 {
		return fmt.Errorf("--pages must be positive, got %d", maxPages)
	}
	req := search.Request{Type: typ, OnlyFolders: onlyFolders}
	if len(args) > 0 {
		req.Query = strings.TrimSpace(args[0])
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	loop := mainloop.New()
	bus := eventbus.New()
	defer bus.Close()
	list := adapter.NewList()

	var coord *coordinator.Coordinator
	pages := 0
	coord = coordinator.New(sess.router, loop,
		coordinator.WithCache(sess.router),
		coordinator.WithContext(ctx),
		coordinator.WithThresholds(thresholds()),
		coordinator.WithCompletionHook(func(r coordinator.PageResult) {
			if r.Err == nil && r.Count == 0 && !r.End {
				// The coordinator already moved on to the next page.
				return
			}
			pages++
			if r.Err == nil && !r.End && pages < maxPages {
				// Pretend the reader reached the bottom of the list.
				coord.OnScrolled(coordinator.ScrollWindow{
					LastVisible: coord.Loaded() - 1,
					Delta:       1,
					Layout:      coordinator.LayoutList,
				})
				return
			}
			loop.Stop()
		}))
	unbind := coord.Bind(bus)
	defer unbind()

	unsubscribe := bus.Subscribe(eventbus.EventSearchCompleted, func(e eventbus.Event) {
		done := e.(eventbus.SearchCompletedEvent)
		logger.DebugTagged([]string{"search"}, "Page %d of %s: %d items, end=%t", done.Page, done.Request, done.Count, done.End)
	})
	defer unsubscribe()

	loop.Post(func() { coord.AttachView(list) })
	bus.Publish(eventbus.SearchRequestedEvent{Request: req})

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	for _, notice := range list.TakeNotices() {
		logger.Warning("%s", notice)
	}
	items := list.Snapshot()
	if len(items) == 0 && list.EmptyStateVisible() {
		empty := list.EmptyState()
		fmt.Printf("%s\n%s\n", empty.Headline, empty.Message)
		return nil
	}
	for _, it := range items {
		printItem(it)
	}

	stats := coord.Stats()
	fmt.Printf("\n%d items in %d page(s)", len(items), stats.Dispatched)
	if coord.Session().PageToken > 0 {
		fmt.Print(", more available")
	}
	fmt.Println()
	return nil
}

func printItem(it model.Item) {
	name := it.Name
	size := humanize.Bytes(uint64(it.Size))
	if it.IsFolder {
		name += "/"
		size = "-"
	}
	modified := ""
	if !it.ModTime.IsZero() {
		modified = humanize.Time(it.ModTime)
	}
	fmt.Printf("%-40s %10s  %-16s %s\n", name, size, modified, it.Path)
}
