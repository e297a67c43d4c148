package cmd

import (
	"strings"

	"github.com/habedi/solekit/auth"
	"github.com/habedi/solekit/pkg/clierr"
	"github.com/habedi/solekit/pkg/validation"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// loginCmd signs in with email and password and stores the session locally.
func loginCmd() *cobra.Command {
	var email string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the store",
		Long:  "Sign in with your email and password. The session is kept in the local database until you log out.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = promptForInput(cmd, "Email: "); err != nil {
					return err
				}
			}
			if err := validation.ValidateEmail(strings.TrimSpace(email)); err != nil {
				return invalid(err)
			}

			var password string
			if passwordStdin {
				password, err = promptForInput(cmd, "")
			} else {
				password, err = promptForPassword(cmd, "Password: ")
			}
			if err != nil {
				return err
			}
			if password == "" {
				return clierr.New(clierr.Validation, "password cannot be empty", nil)
			}

			user, err := state.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return clierr.FromAPI("login failed", err)
			}
			if user != nil {
				cmd.Printf("Logged in as %s <%s>.\n", user.Name, user.Email)
			} else {
				cmd.Println("Login was successful.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (prompted when omitted)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from standard input")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.auth.Logout(cmd.Context(), state.api); err != nil {
				return clierr.New(clierr.Internal, "logout failed", err)
			}
			cmd.Println("Logged out.")
			return nil
		},
	}
}

func registerCmd() *cobra.Command {
	var in auth.RegisterInput
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a customer account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateNonEmptyString("name", strings.TrimSpace(in.Name)); err != nil {
				return invalid(err)
			}
			if err := validation.ValidateEmail(strings.TrimSpace(in.Email)); err != nil {
				return invalid(err)
			}

			var err error
			if passwordStdin {
				in.Password, err = promptForInput(cmd, "")
			} else {
				in.Password, err = promptForPassword(cmd, "Password: ")
				if err == nil {
					var confirm string
					if confirm, err = promptForPassword(cmd, "Repeat password: "); err == nil && confirm != in.Password {
						return clierr.New(clierr.Validation, "passwords do not match", nil)
					}
				}
			}
			if err != nil {
				return err
			}

			user, err := state.auth.Register(cmd.Context(), in)
			if err != nil {
				return clierr.FromAPI("registration failed", err)
			}
			name := in.Name
			if user != nil && user.Name != "" {
				name = user.Name
			}
			cmd.Printf("Account created for %s. Run 'solekit login' to sign in.\n", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Name, "name", "n", "", "Full name")
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "Phone number")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from standard input")
	for _, f := range []string{"name", "email"} {
		if err := cmd.MarkFlagRequired(f); err != nil {
			log.Error().Err(err).Msgf("Failed to mark '%s' flag as required", f)
		}
	}

	return cmd
}

// whoamiCmd shows the stored session without contacting the server.
func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := state.auth.Status(cmd.Context())
			if err != nil {
				return clierr.New(clierr.Internal, "failed to read the session", err)
			}
			if !st.LoggedIn {
				cmd.Println("Not logged in.")
				return nil
			}
			if st.User != nil {
				cmd.Printf("Name: %s\n", st.User.Name)
				cmd.Printf("Email: %s\n", st.User.Email)
				if st.User.Role != "" {
					cmd.Printf("Role: %s\n", st.User.Role)
				}
			}
			switch {
			case st.ExpiresAt.IsZero():
				cmd.Println("Access token: no expiry information")
			case st.Expired:
				cmd.Printf("Access token: expired at %s (will be refreshed on the next request)\n", st.ExpiresAt.Local().Format("2006-01-02 15:04"))
			default:
				cmd.Printf("Access token: valid until %s\n", st.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
