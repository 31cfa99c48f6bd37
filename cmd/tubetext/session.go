package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, _, err := a.build(cmd)
			if err != nil {
				return err
			}
			defer services.Close()

			user, err := services.Backend.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if user == nil {
				fmt.Fprintf(out, "Not signed in. Sign in at %s\n", services.Backend.LoginURL())
				return nil
			}
			tier := "free"
			if user.Premium() {
				tier = "premium"
			}
			fmt.Fprintf(out, "%s <%s> (%s)\n", user.Name, user.Email, tier)
			return nil
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the backend session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, _, err := a.build(cmd)
			if err != nil {
				return err
			}
			defer services.Close()

			if err := services.Backend.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newLoginURLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login-url",
		Short: "Print the URL that starts the Google sign-in flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, _, err := a.build(cmd)
			if err != nil {
				return err
			}
			defer services.Close()

			fmt.Fprintln(cmd.OutOrStdout(), services.Backend.LoginURL())
			return nil
		},
	}
}

func newUpgradeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Print a checkout URL for the premium plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, _, err := a.build(cmd)
			if err != nil {
				return err
			}
			defer services.Close()

			checkout, err := services.Backend.CheckoutURL(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), checkout)
			return nil
		},
	}
}
