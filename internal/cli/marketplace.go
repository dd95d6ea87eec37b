package cli

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/gateway"
)

// listingAPI is the read side shared by vehicles and materials.
type listingAPI interface {
	List(ctx context.Context, query url.Values) (*gateway.Raw, error)
	Get(ctx context.Context, id string) (*gateway.Raw, error)
	Categories(ctx context.Context) (*domain.Envelope[[]string], error)
}

// listFlags are the paging and filter flags of every list command.
type listFlags struct {
	filters []string
	search  string
	page    int
	limit   int
}

func (l *listFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVar(&l.filters, "filter", nil, "field=value equality filter (repeatable)")
	f.StringVar(&l.search, "search", "", "search name, title and description")
	f.IntVar(&l.page, "page", 0, "page number (1-based)")
	f.IntVar(&l.limit, "limit", 0, "items per page")
}

func (l *listFlags) query() (url.Values, error) {
	pairs, err := parsePairs(l.filters)
	if err != nil {
		return nil, err
	}
	q := queryFrom(pairs)
	if l.search != "" {
		q.Set("search", l.search)
	}
	if l.page > 0 {
		q.Set("page", strconv.Itoa(l.page))
	}
	if l.limit > 0 {
		q.Set("limit", strconv.Itoa(l.limit))
	}
	return q, nil
}

// api is resolved lazily because the client only exists after setup.
func newListingCmd(app *App, name, short string, api func() listingAPI) *cobra.Command {
	cmd := &cobra.Command{Use: name, Short: short}

	var lf listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List " + name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := lf.query()
			if err != nil {
				return err
			}
			return app.printRaw(api().List(cmd.Context(), q))
		},
	}
	lf.register(list)

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.printRaw(api().Get(cmd.Context(), args[0]))
		},
	}

	categories := &cobra.Command{
		Use:   "categories",
		Short: "List the " + name + " categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := api().Categories(cmd.Context())
			if err != nil {
				return err
			}
			return app.printer.JSON(env.Data)
		},
	}

	cmd.AddCommand(list, get, categories)
	return cmd
}

func newPartnersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "partners", Short: "Business partner profiles"}

	me := &cobra.Command{
		Use:   "me",
		Short: "Show your partner profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			return app.printRaw(app.client.Partners.Profile(cmd.Context()))
		},
	}

	cmd.AddCommand(me)
	return cmd
}

func newRequestsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Service requests (hire and delivery requests)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Cobra runs only the nearest persistent hook.
			if err := app.setup(cmd.Context()); err != nil {
				return err
			}
			return app.requireLogin()
		},
	}

	var (
		lf       listFlags
		provider bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List your requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := lf.query()
			if err != nil {
				return err
			}
			if provider {
				q.Set("view", "provider")
			}
			return app.printRaw(app.client.ServiceRequests.List(cmd.Context(), q))
		},
	}
	lf.register(list)
	list.Flags().BoolVar(&provider, "incoming", false, "list requests made against your listings")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.printRaw(app.client.ServiceRequests.Get(cmd.Context(), args[0]))
		},
	}

	var (
		listingID, listingType, notes string
		extra                         []string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Request a vehicle or material listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := parsePairs(extra)
			if err != nil {
				return err
			}
			body := map[string]any{}
			for k, v := range pairs {
				body[k] = v
			}
			body["listing_id"] = listingID
			body["listing_type"] = listingType
			if notes != "" {
				body["notes"] = notes
			}
			env, err := app.client.ServiceRequests.Create(cmd.Context(), body)
			if err != nil {
				return err
			}
			app.printer.Success("%s", messageOr(env.Message, "Request created"))
			return app.printer.RawJSON(env.Data)
		},
	}
	cf := create.Flags()
	cf.StringVar(&listingID, "listing-id", "", "id of the vehicle or material listing")
	cf.StringVar(&listingType, "listing-type", "vehicle", "vehicle or material")
	cf.StringVar(&notes, "notes", "", "notes for the provider")
	cf.StringArrayVar(&extra, "set", nil, "additional field=value (repeatable)")
	_ = create.MarkFlagRequired("listing-id")

	var statusNotes string
	status := &cobra.Command{
		Use:       "status <id> <status>",
		Short:     "Move a request through its lifecycle",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"accepted", "rejected", "in_progress", "completed", "cancelled"},
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.client.ServiceRequests.UpdateStatus(cmd.Context(), args[0], gateway.StatusUpdate{
				Status: domain.RequestStatus(args[1]),
				Notes:  statusNotes,
			})
			if err != nil {
				return err
			}
			app.printer.Success("%s", messageOr(env.Message, fmt.Sprintf("Request %s", args[1])))
			return app.printer.RawJSON(env.Data)
		},
	}
	status.Flags().StringVar(&statusNotes, "notes", "", "reason or notes for the change")

	cmd.AddCommand(list, get, create, status)
	return cmd
}

// printRaw prints the payload of a raw envelope or returns the request error.
func (a *App) printRaw(env *gateway.Raw, err error) error {
	if err != nil {
		return err
	}
	return a.printer.RawJSON(env.Data)
}
