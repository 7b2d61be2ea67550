package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/memberportal/integration/apiclient"
)

// resource describes one listable API resource. route is the portal path the
// listing corresponds to; the route rules decide who may run it.
type resource struct {
	route string
	list  func(ctx context.Context, st *state, p apiclient.ListParams) (any, [][]string, error)
	head  []string
}

var resources = map[string]resource{
	"news": {
		route: "/news",
		head:  []string{"ID", "TITLE", "PUBLISHED"},
		list: func(ctx context.Context, st *state, p apiclient.ListParams) (any, [][]string, error) {
			items, err := st.api.News.List(ctx, p)
			rows := make([][]string, 0, len(items))
			for _, n := range items {
				rows = append(rows, []string{n.ID.String(), n.Title, formatTime(n.PublishedAt)})
			}
			return items, rows, err
		},
	},
	"events": {
		route: "/events",
		head:  []string{"ID", "TITLE", "STARTS", "LOCATION"},
		list: func(ctx context.Context, st *state, p apiclient.ListParams) (any, [][]string, error) {
			items, err := st.api.Events.List(ctx, p)
			rows := make([][]string, 0, len(items))
			for _, e := range items {
				rows = append(rows, []string{e.ID.String(), e.Title, formatTime(e.StartsAt), e.Location})
			}
			return items, rows, err
		},
	},
	"publications": {
		route: "/publications",
		head:  []string{"ID", "TITLE", "STATUS", "AUTHORS"},
		list: func(ctx context.Context, st *state, p apiclient.ListParams) (any, [][]string, error) {
			if p.Status == "" || !st.holder.State().User.IsAdmin() {
				p.Status = string(apiclient.PublicationApproved)
			}
			items, err := st.api.Publications.List(ctx, p)
			rows := make([][]string, 0, len(items))
			for _, pub := range items {
				rows = append(rows, []string{pub.ID.String(), pub.Title, string(pub.Status), pub.Authors})
			}
			return items, rows, err
		},
	},
	"members": {
		route: "/admin/members",
		head:  []string{"ID", "NAME", "EMAIL", "ROLE", "ACTIVE"},
		list: func(ctx context.Context, st *state, p apiclient.ListParams) (any, [][]string, error) {
			items, err := st.api.Members.List(ctx, p)
			rows := make([][]string, 0, len(items))
			for _, m := range items {
				rows = append(rows, []string{m.ID.String(), m.Name, m.Email, m.Role, strconv.FormatBool(m.Active)})
			}
			return items, rows, err
		},
	},
	"payments": {
		route: "/dashboard/payments",
		head:  []string{"ID", "MEMBER", "AMOUNT", "CURRENCY", "STATUS", "CREATED"},
		list: func(ctx context.Context, st *state, p apiclient.ListParams) (any, [][]string, error) {
			if u := st.holder.User(); !u.IsAdmin() {
				p.MemberID = apiclient.ID(u.ID)
			}
			items, err := st.api.Payments.List(ctx, p)
			rows := make([][]string, 0, len(items))
			for _, pay := range items {
				rows = append(rows, []string{
					pay.ID.String(), pay.MemberID.String(), pay.Amount.StringFixed(2),
					pay.Currency, string(pay.Status), formatTime(pay.CreatedAt),
				})
			}
			return items, rows, err
		},
	},
}

func resourceNames() []string {
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func newListCmd(st *state) *cobra.Command {
	var (
		params  apiclient.ListParams
		asJSON  bool
		members string
	)

	cmd := &cobra.Command{
		Use:       "list <resource>",
		Short:     "List portal resources",
		Long:      "List portal resources: " + strings.Join(resourceNames(), ", ") + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: resourceNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, ok := resources[args[0]]
			if !ok {
				return fmt.Errorf("%w %q, want one of %s", ErrUnknownResource, args[0], strings.Join(resourceNames(), ", "))
			}
			ctx := cmd.Context()
			if err := st.authorize(ctx, res.route); err != nil {
				return err
			}
			if members != "" {
				params.MemberID = apiclient.ID(members)
			}

			items, rows, err := res.list(ctx, st, params)
			if err != nil {
				return apiError("list "+args[0], err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			if len(rows) == 0 {
				fmt.Fprintf(out, "No %s found.\n", args[0])
				return nil
			}
			return writeTable(out, res.head, rows)
		},
	}

	f := cmd.Flags()
	f.IntVar(&params.Page, "page", 0, "Page number")
	f.IntVar(&params.Limit, "limit", 0, "Page size")
	f.StringVar(&params.Search, "search", "", "Search term")
	f.StringVar(&params.Status, "status", "", "Status filter (admins only for publications)")
	f.StringVar(&members, "member", "", "Member id filter (payments, admins only)")
	f.BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func writeTable(w io.Writer, head []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(head, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
