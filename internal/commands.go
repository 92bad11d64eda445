package internal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/notestxt/internal/mcpserver"
	"github.com/starford/notestxt/internal/noteservice"
	"github.com/starford/notestxt/internal/query"
	"github.com/starford/notestxt/internal/watcher"
)

func (a *application) service() (*noteservice.Service, *slog.Logger, error) {
	logger := a.logger()
	coll, err := a.openCollection(logger)
	if err != nil {
		return nil, nil, err
	}
	return noteservice.NewService(coll, noteservice.WithLogger(logger)), logger, nil
}

// RunMCP serves the notes over MCP on stdin/stdout. The folder is watched
// for the lifetime of the session.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	svc, logger, err := app.service()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := watcher.New(app.config.Notes.Folder, svc,
		watcher.WithInterval(app.config.Notes.PollInterval),
		watcher.WithLogger(logger),
	)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	logger.Info("Starting MCP server", slog.String("version", app.version))
	serveErr := mcpserver.New(svc, app.version).ServeStdio()
	cancel()
	if err := <-done; err != nil {
		logger.Warn("watcher stopped with error", slog.String("error", err.Error()))
	}
	return serveErr
}

// RunSelect prints the notes matching text, their tag summary and the
// collection status.
func RunSelect(ctx context.Context, text string, limit int, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	svc, _, err := app.service()
	if err != nil {
		return err
	}

	res := svc.Select(ctx, text, limit)
	for _, item := range res.Items {
		created := item.Created
		if created == "" {
			created = "-"
		}
		fmt.Fprintf(app.out, "%-19s  %s  [%s]\n", created, item.Title, item.ID)
	}
	if len(res.Strict) > 0 {
		fmt.Fprintf(app.out, "tags: %s\n", formatTagCounts(res.Strict))
	}
	if len(res.NonStrict) > 0 {
		fmt.Fprintf(app.out, "more: %s\n", formatTagCounts(res.NonStrict))
	}
	fmt.Fprintf(app.out, "%d of %s\n", res.Total, svc.Status(ctx).Line())
	return nil
}

// RunTags prints every tag in use, one per line.
func RunTags(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	svc, _, err := app.service()
	if err != nil {
		return err
	}
	for _, tag := range svc.Tags(ctx) {
		fmt.Fprintln(app.out, tag)
	}
	return nil
}

// RunAdd creates a note from text and prints its id.
func RunAdd(ctx context.Context, text string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("note text is empty")
	}
	svc, _, err := app.service()
	if err != nil {
		return err
	}
	n, err := svc.CreateNote(ctx, text)
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	fmt.Fprintln(app.out, n.ID)
	return nil
}

func formatTagCounts(tcs []query.TagCount) string {
	parts := make([]string, len(tcs))
	for i, tc := range tcs {
		parts[i] = fmt.Sprintf("%s(%d)", tc.Tag, tc.Count)
	}
	return strings.Join(parts, " ")
}

