package cli

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/pkg/models"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the token for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			u, err := v.Session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return a.printer(cmd).print(u, userTable(*u))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var req shopclient.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			u, err := v.Session.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.printer(cmd).print(u, userTable(*u))
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "full name")
	f.StringVar(&req.Email, "email", "", "email")
	f.StringVar(&req.Password, "password", "", "password, at least 6 characters")
	f.StringVar(&req.Phone, "phone", "", "phone number")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			v.Session.Logout(cmd.Context())
			return a.printer(cmd).message("Logged out")
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			st := v.Session.State()
			if !st.Authenticated || st.User == nil {
				return a.printer(cmd).message("Not logged in")
			}
			return a.printer(cmd).print(st.User, userTable(*st.User))
		},
	}
}

func (a *app) profileCmd() *cobra.Command {
	var (
		req  shopclient.ProfileUpdate
		addr models.Address
	)
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
		Long:  "Without flags the profile is shown. Any flag updates the profile; unset fields keep their current value.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if !anyChanged(cmd, "name", "phone", "street", "city", "state", "zip", "country") {
				view, err := v.Pages.Profile(ctx)
				if err != nil {
					return err
				}
				return a.printer(cmd).print(view, userTable(view.User))
			}

			if st := v.Session.State(); st.User != nil {
				cur := *st.User
				if !cmd.Flags().Changed("name") {
					req.Name = cur.Name
				}
				if !cmd.Flags().Changed("phone") {
					req.Phone = cur.Phone
				}
				if cur.Address != nil {
					addr = mergeAddress(*cur.Address, addr)
				}
			}
			if !addr.IsZero() {
				req.Address = &addr
			}
			view, err := v.Pages.UpdateProfile(ctx, req)
			if err != nil {
				return err
			}
			return a.printer(cmd).print(view, userTable(view.User))
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "full name")
	f.StringVar(&req.Phone, "phone", "", "phone number")
	addressFlags(cmd, &addr)
	return cmd
}

func addressFlags(cmd *cobra.Command, addr *models.Address) {
	f := cmd.Flags()
	f.StringVar(&addr.Street, "street", "", "street")
	f.StringVar(&addr.City, "city", "", "city")
	f.StringVar(&addr.State, "state", "", "state")
	f.StringVar(&addr.ZipCode, "zip", "", "zip code")
	f.StringVar(&addr.Country, "country", "", "country")
}

// mergeAddress fills the fields of override left empty from base.
func mergeAddress(base, override models.Address) models.Address {
	pick := func(o, b string) string {
		if o != "" {
			return o
		}
		return b
	}
	return models.Address{
		Street:  pick(override.Street, base.Street),
		City:    pick(override.City, base.City),
		State:   pick(override.State, base.State),
		ZipCode: pick(override.ZipCode, base.ZipCode),
		Country: pick(override.Country, base.Country),
	}
}


func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}
