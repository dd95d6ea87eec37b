package cli

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the autox command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "autox",
		Short: "Auto X Sri Lanka marketplace client",
		Long: `autox talks to the Auto X heavy vehicle and material marketplace.

The session (identity and bearer token) is kept in the storage backend
selected by STORAGE_BACKEND and survives between invocations.

Example usage:
  autox login --email kamal@example.lk --password secret
  autox vehicles list --filter district=Kandy
  autox requests create --listing-id <id> --listing-type vehicle
  autox logout`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&app.noColor, "no-color", false, "disable colored status lines")
	flags.StringVar(&app.apiURL, "api-url", "", "API base URL (default AUTOX_API_URL)")
	flags.BoolVar(&app.stats, "stats", false, "print request statistics on exit")

	root.AddCommand(
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newProfileCmd(app),
		newPasswordCmd(app),
		newListingCmd(app, "vehicles", "Vehicle listings", func() listingAPI { return app.client.Vehicles }),
		newListingCmd(app, "materials", "Material listings", func() listingAPI { return app.client.Materials }),
		newPartnersCmd(app),
		newRequestsCmd(app),
		newUploadCmd(app),
	)
	return root
}

// Execute runs the command tree with args and reports failures on the
// app's error stream.
func Execute(ctx context.Context, app *App, args []string) error {
	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(app.Out)
	root.SetErr(app.Err)

	err := root.ExecuteContext(ctx)
	if cerr := app.close(ctx); cerr != nil {
		err = errors.Join(err, cerr)
	}
	if err != nil {
		printer := app.printer
		if printer == nil {
			printer = NewPrinter(io.Discard, app.Err, app.noColor)
		}
		msg, hint := describe(err)
		printer.Error("%s", msg)
		if hint != "" {
			printer.Hint("%s", hint)
		}
	}
	return err
}
