package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-studio/internal/client"
	"github.com/jonathan/resume-studio/internal/types"
	"github.com/jonathan/resume-studio/internal/validation"
)

var (
	authUsername string
	authEmail    string
	authPassword string

	oldPassword   string
	newPassword   string
	confirmDelete bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE:  runRegister,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	Long:  `Log in and store the session token. The password is read from stdin when --password is not given.`,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		return c.Logout()
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE:  runWhoami,
}

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change your password",
	Long: `Change your password. Passwords not given as flags are read from stdin, the current
password on the first line and the new one on the second.`,
	RunE: runPasswd,
}

var deleteAccountCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Delete your account with all of its resumes and favorites",
	RunE:  runDeleteAccount,
}

func init() {
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVarP(&authUsername, "username", "u", "", "Username")
		c.Flags().StringVarP(&authPassword, "password", "p", "", "Password (read from stdin if omitted)")
		_ = c.MarkFlagRequired("username")
	}
	registerCmd.Flags().StringVarP(&authEmail, "email", "e", "", "Email address")
	_ = registerCmd.MarkFlagRequired("email")

	passwdCmd.Flags().StringVar(&oldPassword, "current", "", "Current password")
	passwdCmd.Flags().StringVar(&newPassword, "new", "", "New password")
	deleteAccountCmd.Flags().BoolVar(&confirmDelete, "yes", false, "Confirm the deletion")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd, passwdCmd, deleteAccountCmd)
}

func runRegister(cmd *cobra.Command, _ []string) error {
	c, _, err := newClient(cmd)
	if err != nil {
		return err
	}
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}
	user, err := c.Register(cmd.Context(), types.RegisterRequest{
		Username: authUsername,
		Email:    authEmail,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s). Run \"resumectl login\" to sign in.\n", user.Username, user.Email)
	return nil
}

func runLogin(cmd *cobra.Command, _ []string) error {
	c, _, err := newClient(cmd)
	if err != nil {
		return err
	}
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}
	resp, err := c.Login(cmd.Context(), types.LoginRequest{Username: authUsername, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", resp.User.Username)
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	c, _, err := newClient(cmd)
	if err != nil {
		return err
	}
	user, err := c.Profile(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>, member since %s\n", user.Username, user.Email, user.CreatedAt.Format("2006-01-02"))
	return nil
}

func runPasswd(cmd *cobra.Command, _ []string) error {
	c, _, err := newClient(cmd)
	if err != nil {
		return err
	}
	in := bufio.NewReader(cmd.InOrStdin())
	current, err := promptPassword(cmd, in, oldPassword, "Current password: ")
	if err != nil {
		return err
	}
	next, err := promptPassword(cmd, in, newPassword, "New password: ")
	if err != nil {
		return err
	}
	err = c.ChangePassword(cmd.Context(), types.ChangePasswordRequest{OldPassword: current, NewPassword: next})
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
			return reportFieldErrors(cmd.OutOrStdout(), &validation.Error{Fields: apiErr.Fields})
		}
		return fmt.Errorf("failed to change password: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Password updated")
	return nil
}

func runDeleteAccount(cmd *cobra.Command, _ []string) error {
	if !confirmDelete {
		return fmt.Errorf("this deletes your account and every resume in it; rerun with --yes to confirm")
	}
	c, _, err := newClient(cmd)
	if err != nil {
		return err
	}
	if err := c.DeleteAccount(cmd.Context()); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Account deleted")
	return nil
}

// readPassword returns --password or the first line of stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	return promptPassword(cmd, bufio.NewReader(cmd.InOrStdin()), authPassword, "Password: ")
}

// promptPassword returns flag when set, otherwise the next line of in.
func promptPassword(cmd *cobra.Command, in *bufio.Reader, flag, prompt string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := in.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return "", fmt.Errorf("password is required")
	}
	return line, nil
}
