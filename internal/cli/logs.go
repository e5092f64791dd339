package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/residence-admin-api/internal/activitylog"
)

type listFlags struct {
	userType string
	userID   string
	typ      string
	category string
	from     string
	to       string
	page     int
	pageSize int
}

func (c *console) newLogsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Query activity logs",
	}
	cmd.AddCommand(c.newLogsListCommand())
	cmd.AddCommand(c.newLogsShowCommand())
	cmd.AddCommand(c.newLogsUserCommand())
	cmd.AddCommand(c.newLogsStatsCommand())
	cmd.AddCommand(c.newLogsPurgeCommand())
	return cmd
}

func (c *console) newLogsListCommand() *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List activity logs matching the given filters",
		Example: `  residence-console logs list --category payment --from 2024-03-01 --to 2024-03-31
  residence-console logs list --user-type admin --page 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := f.editBuffer(c.cfg.PageSize)
			if err != nil {
				return err
			}
			if cleared := c.engine.SetDraft(buf); len(cleared) > 0 {
				c.render.warn(fmt.Sprintf("ignored filters not enabled for this account: %v", cleared))
			}
			if err := c.engine.ApplyDraftAt(cmd.Context(), f.page); err != nil {
				return err
			}
			c.render.logs(c.engine.Snapshot())
			return nil
		},
	}

	cmd.Flags().StringVar(&f.userType, "user-type", "", "user or admin")
	cmd.Flags().StringVar(&f.userID, "user-id", "", "numeric user id")
	cmd.Flags().StringVar(&f.typ, "type", "", "activity type, see the taxonomy command")
	cmd.Flags().StringVar(&f.category, "category", "", "activity category, see the taxonomy command")
	cmd.Flags().StringVar(&f.from, "from", "", "first day included (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "last day included (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "entries per page (default from config)")
	return cmd
}

func (f listFlags) editBuffer(defaultSize int) (activitylog.EditBuffer, error) {
	var buf activitylog.EditBuffer
	values := []struct {
		facet string
		value string
	}{
		{activitylog.FacetUserType, f.userType},
		{activitylog.FacetUserID, f.userID},
		{activitylog.FacetActivityType, f.typ},
		{activitylog.FacetActivityCategory, f.category},
		{activitylog.FacetStartDate, f.from},
		{activitylog.FacetEndDate, f.to},
	}
	for _, v := range values {
		if err := buf.Set(v.facet, v.value); err != nil {
			return activitylog.EditBuffer{}, err
		}
	}

	size := f.pageSize
	if size == 0 {
		size = defaultSize
	}
	if err := buf.Set(activitylog.FacetLimit, strconv.Itoa(size)); err != nil {
		return activitylog.EditBuffer{}, err
	}
	return buf, nil
}

func (c *console) newLogsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one activity log with its request body and metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid log id %q", args[0])
			}
			entry, err := c.engine.ViewDetails(cmd.Context(), id)
			if err != nil {
				return err
			}
			c.render.entry(entry)
			return nil
		},
	}
}

func (c *console) newLogsUserCommand() *cobra.Command {
	var page, pageSize int
	cmd := &cobra.Command{
		Use:   "user <userId>",
		Short: "List the activity logs of one tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || userID <= 0 {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			if pageSize == 0 {
				pageSize = c.cfg.PageSize
			}
			ol := activitylog.ToOffsetLimit(activitylog.PageInfo{Page: page, PageSize: min(pageSize, activitylog.MaxLimit)})

			result, err := c.client.FetchUserLogs(cmd.Context(), userID, ol)
			if err != nil {
				return err
			}
			f := activitylog.DefaultFilters()
			f.UserType = activitylog.UserTypeUser
			f.UserID = userID
			c.render.logs(activitylog.Snapshot{
				Filters:    f.WithPaging(ol),
				Logs:       result.Logs,
				Pagination: result.Pagination,
				PageInfo:   activitylog.ToPageInfo(result.Pagination),
			})
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "entries per page (default from config)")
	return cmd
}

func (c *console) newLogsStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show activity log statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requirePrivileged("viewing statistics"); err != nil {
				return err
			}
			stats, err := c.client.FetchStats(cmd.Context())
			if err != nil {
				return err
			}
			c.render.stats(stats)
			return nil
		},
	}
}

func (c *console) newLogsPurgeCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every activity log",
		Long:  "Delete every activity log. This cannot be undone.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requirePrivileged("deleting activity logs"); err != nil {
				return err
			}
			return c.purge(cmd, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (c *console) purge(cmd *cobra.Command, skipConfirm bool) error {
	if !skipConfirm {
		ok, err := c.confirm("Delete all activity logs?", "Every entry will be removed permanently.")
		if err != nil {
			return err
		}
		if !ok {
			c.render.warn("purge cancelled")
			return nil
		}
	}
	if err := c.engine.DeleteAll(cmd.Context()); err != nil {
		return err
	}
	c.drainNotifications()
	if snap := c.engine.Snapshot(); snap.Stats != nil {
		c.render.stats(*snap.Stats)
	}
	return nil
}
