package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"quizzer/internal/app"
)

// NewSignupCmd registers a new account.
func NewSignupCmd(configPath *string) *cobra.Command {
	var in app.SignupInput
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			in.Name = promptIfEmpty(reader, out, "Name", in.Name)
			in.Email = promptIfEmpty(reader, out, "Email", in.Email)
			in.Password = promptIfEmpty(reader, out, "Password", in.Password)
			in.ConfirmPassword = promptIfEmpty(reader, out, "Confirm password", in.ConfirmPassword)

			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.service.Signup(cmd.Context(), in); err != nil {
				return err
			}
			fmt.Fprintln(out, "Signup successful! You can now log in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (prompted when empty)")
	cmd.Flags().StringVar(&in.ConfirmPassword, "confirm-password", "", "password confirmation")
	return cmd
}

// NewLoginCmd authenticates and stores the session locally.
func NewLoginCmd(configPath *string) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			email = promptIfEmpty(reader, out, "Email", email)
			password = promptIfEmpty(reader, out, "Password", password)

			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			session, err := rt.service.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Welcome, %s!\n", displayName(session.User.Name, session.User.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	return cmd
}

// NewLogoutCmd forgets the session and the cached quiz.
func NewLogoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.service.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

// NewWhoamiCmd prints the logged-in user.
func NewWhoamiCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			session, err := rt.service.CurrentSession(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", displayName(session.User.Name, session.User.Email), session.User.Email)
			return nil
		},
	}
}

func promptIfEmpty(reader *bufio.Reader, out io.Writer, label, current string) string {
	if current != "" {
		return current
	}
	fmt.Fprintf(out, "%s: ", label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	return email
}
