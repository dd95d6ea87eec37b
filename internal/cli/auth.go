package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/core/session"
	"github.com/autox/marketplace-client/internal/gateway"
)

func newLoginCmd(app *App) *cobra.Command {
	var creds gateway.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.client.Auth.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			return app.signIn(cmd, env)
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var (
		reg  gateway.Registration
		role string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg.Role = domain.Role(role)
			if !reg.Role.Valid() {
				return fmt.Errorf("invalid role %q", role)
			}
			env, err := app.client.Auth.Register(cmd.Context(), reg)
			if err != nil {
				return err
			}
			return app.signIn(cmd, env)
		},
	}
	f := cmd.Flags()
	f.StringVar(&reg.Name, "name", "", "full name")
	f.StringVar(&reg.Email, "email", "", "account email")
	f.StringVar(&reg.Password, "password", "", "account password")
	f.StringVar(&reg.Phone, "phone", "", "phone number")
	f.StringVar(&reg.District, "district", "", "home district")
	f.StringVar(&role, "role", string(domain.RoleConsumer), "consumer, vehicle_owner, material_supplier or admin")
	for _, name := range []string{"name", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

// signIn stores the identity and token of a successful login or register.
func (a *App) signIn(cmd *cobra.Command, env *domain.Envelope[domain.AuthPayload]) error {
	if err := a.session.Login(cmd.Context(), env.Data.User, env.Data.Token); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	a.printer.Success("Signed in as %s (%s)", env.Data.User.Email, env.Data.User.Role)
	return a.printer.JSON(env.Data.User)
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the token and clear the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, ok, err := app.session.Token(ctx)
			if err != nil {
				app.log.Warn().Err(err).Msg("reading stored token failed; clearing local session anyway")
			}
			if ok {
				if _, err := app.client.Auth.Logout(ctx); err != nil {
					app.log.Warn().Err(err).Msg("server logout failed; clearing local session anyway")
				}
			}
			if err := app.session.Logout(ctx); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			app.printer.Success("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			identity, _ := app.session.Identity()

			claims, err := app.session.Claims(cmd.Context())
			switch {
			case errors.Is(err, session.ErrNoToken):
				app.printer.Warning("No token stored; authenticated requests will be rejected")
			case err != nil:
				app.printer.Warning("Stored token is unreadable: %v", err)
			case claims.Expired(time.Now()):
				app.printer.Warning("Token expired at %s", claims.Expiry().Format(time.RFC3339))
			case !claims.Expiry().IsZero():
				app.printer.Success("Token valid until %s", claims.Expiry().Format(time.RFC3339))
			}
			return app.printer.JSON(identity)
		},
	}
}

func newProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the account profile",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Fetch the profile from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.client.Auth.Profile(cmd.Context())
			if err != nil {
				return err
			}
			return app.printer.JSON(env.Data)
		},
	}

	var sets []string
	update := &cobra.Command{
		Use:     "update",
		Short:   "Update profile fields",
		Example: `  autox profile update --set district=Galle --set phone=0771234567`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := parsePairs(sets)
			if err != nil {
				return err
			}
			if len(pairs) == 0 {
				return errors.New("nothing to update; pass --set key=value")
			}
			patch := domain.IdentityPatch{}
			for k, v := range pairs {
				patch[k] = v
			}

			ctx := cmd.Context()
			env, err := app.client.Auth.UpdateProfile(ctx, patch)
			if err != nil {
				return err
			}
			if err := app.session.UpdateIdentity(ctx, patch); err != nil {
				app.log.Warn().Err(err).Msg("profile updated on server but local session was not")
			}
			app.printer.Success("Profile updated")
			return app.printer.JSON(env.Data)
		},
	}
	update.Flags().StringArrayVar(&sets, "set", nil, "field=value to change (repeatable)")

	cmd.AddCommand(show, update)
	return cmd
}

func newPasswordCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Manage the account password",
	}

	var in gateway.PasswordChange
	change := &cobra.Command{
		Use:   "change",
		Short: "Change the account password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.client.Auth.ChangePassword(cmd.Context(), in)
			if err != nil {
				return err
			}
			app.printer.Success("%s", messageOr(env.Message, "Password changed"))
			return nil
		},
	}
	change.Flags().StringVar(&in.CurrentPassword, "current", "", "current password")
	change.Flags().StringVar(&in.NewPassword, "new", "", "new password")
	_ = change.MarkFlagRequired("current")
	_ = change.MarkFlagRequired("new")

	cmd.AddCommand(change)
	return cmd
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
