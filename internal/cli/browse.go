package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/residence-admin-api/internal/activitylog"
)

const browseHelp = `Commands:
  set key=value [key=value ...]   edit filters (user_type, user_id, activity_type,
                                  activity_category, start_date, end_date, limit)
  clear [key]                     clear one pending filter, or all of them
  draft                           show pending edits
  apply                           apply pending edits and fetch page 1
  reset                           return to the default filters
  page <n> [size]                 jump to a page
  next | prev                     move one page
  show <id>                       show one entry
  refresh                         re-fetch logs (and statistics)
  stats                           show statistics
  taxonomy                        list enabled categories and types
  purge                           delete every activity log
  quit                            leave the session`

func (c *console) newBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Start an interactive filtering session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.browse(cmd)
		},
	}
}

func (c *console) browse(cmd *cobra.Command) error {
	ctx := cmd.Context()
	c.render.printf("%s\n", c.render.st.Title.Render("Activity log browser"))
	c.render.printf("%s\n", c.render.st.Muted.Render("Type help for commands."))

	c.report(c.engine.Load(ctx))
	c.render.logs(c.engine.Snapshot())
	c.drainNotifications()

	scanner := bufio.NewScanner(c.in)
	for {
		c.render.printf("%s ", c.render.st.Title.Render("logs>"))
		if !scanner.Scan() {
			c.render.printf("\n")
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if quit := c.dispatch(ctx, cmd, fields[0], fields[1:]); quit {
			return nil
		}
		c.drainNotifications()
	}
}

// dispatch runs one session command and reports whether the session should end.
func (c *console) dispatch(ctx context.Context, cmd *cobra.Command, name string, args []string) bool {
	switch strings.ToLower(name) {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		c.render.printf("%s\n", browseHelp)
	case "set":
		c.setDraft(args)
	case "clear":
		c.clearDraft(args)
	case "draft":
		c.render.draft(c.engine.Draft())
	case "apply":
		c.runAndList(c.engine.ApplyDraft(ctx))
	case "reset":
		c.runAndList(c.engine.ResetFilters(ctx))
	case "page":
		c.changePage(ctx, args)
	case "next", "prev":
		info := c.engine.Snapshot().PageInfo
		if name == "next" {
			info.Page++
		} else {
			info.Page--
		}
		if info.Page < 1 || info.Page > info.TotalPages() {
			c.render.warn("no such page")
			return false
		}
		c.runAndList(c.engine.ChangePage(ctx, info))
	case "show":
		c.showEntry(ctx, args)
	case "refresh":
		c.runAndList(c.engine.Refresh(ctx))
		if snap := c.engine.Snapshot(); snap.Stats != nil {
			c.render.stats(*snap.Stats)
		}
	case "stats":
		if err := c.requirePrivileged("viewing statistics"); err != nil {
			c.report(err)
			return false
		}
		snap := c.engine.Snapshot()
		if snap.Stats == nil {
			c.render.warn("statistics are not loaded yet, try refresh")
			return false
		}
		c.render.stats(*snap.Stats)
	case "taxonomy":
		c.render.taxonomy(c.engine.Taxonomy())
	case "purge":
		if err := c.requirePrivileged("deleting activity logs"); err != nil {
			c.report(err)
			return false
		}
		if err := c.purge(cmd, false); err != nil {
			c.report(err)
			return false
		}
		c.render.logs(c.engine.Snapshot())
	default:
		c.render.warn(fmt.Sprintf("unknown command %q, type help", name))
	}
	return false
}

func (c *console) setDraft(args []string) {
	if len(args) == 0 {
		c.render.warn("usage: set key=value [key=value ...]")
		return
	}
	buf := c.engine.Draft()
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			c.render.warn(fmt.Sprintf("expected key=value, got %q", arg))
			return
		}
		if err := buf.Set(strings.ToLower(key), value); err != nil {
			c.report(err)
			return
		}
	}
	if cleared := c.engine.SetDraft(buf); len(cleared) > 0 {
		c.render.warn(fmt.Sprintf("cleared filters not enabled for this account: %v", cleared))
	}
	c.render.draft(c.engine.Draft())
}

func (c *console) clearDraft(args []string) {
	buf := c.engine.Draft()
	if len(args) == 0 {
		buf = activitylog.EditBuffer{Limit: buf.Limit}
	}
	for _, key := range args {
		if err := buf.Clear(strings.ToLower(key)); err != nil {
			c.report(err)
			return
		}
	}
	c.engine.SetDraft(buf)
	c.render.draft(c.engine.Draft())
}

func (c *console) changePage(ctx context.Context, args []string) {
	if len(args) == 0 || len(args) > 2 {
		c.render.warn("usage: page <n> [size]")
		return
	}
	page, err := strconv.Atoi(args[0])
	if err != nil || page < 1 {
		c.render.warn(fmt.Sprintf("invalid page %q", args[0]))
		return
	}
	size := c.engine.Snapshot().Filters.Limit
	if len(args) == 2 {
		size, err = strconv.Atoi(args[1])
		if err != nil || size < 1 || size > activitylog.MaxLimit {
			c.render.warn(fmt.Sprintf("page size must be between 1 and %d", activitylog.MaxLimit))
			return
		}
	}
	c.runAndList(c.engine.ChangePage(ctx, activitylog.PageInfo{Page: page, PageSize: size}))
}

func (c *console) showEntry(ctx context.Context, args []string) {
	if len(args) != 1 {
		c.render.warn("usage: show <id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		c.render.warn(fmt.Sprintf("invalid log id %q", args[0]))
		return
	}
	entry, err := c.engine.ViewDetails(ctx, id)
	if err != nil {
		c.report(err)
		return
	}
	c.render.entry(entry)
}

func (c *console) runAndList(err error) {
	if err != nil {
		c.report(err)
		return
	}
	c.render.logs(c.engine.Snapshot())
}

// report prints errors the engine has not already published as notifications.
func (c *console) report(err error) {
	if err == nil {
		return
	}
	var queryErr *activitylog.QueryError
	var notFound *activitylog.NotFoundError
	if errors.As(err, &queryErr) || errors.As(err, &notFound) {
		return
	}
	c.render.failure(err.Error())
}
