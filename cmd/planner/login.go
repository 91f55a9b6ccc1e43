package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mmynk/planboard/internal/config"
	"github.com/mmynk/planboard/internal/rpc"
)

var flagPasswordStdin bool

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Unlock the dashboard and remember the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var password string
		if flagPasswordStdin {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = strings.TrimSpace(line)
		} else {
			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().
					Title("Planboard").
					Description("Please enter the password to access the dashboard.").
					EchoMode(huh.EchoModePassword).
					Value(&password),
			))
			if err := form.Run(); err != nil {
				return err
			}
		}

		client := rpc.NewAuthClient(httpClient, cfg.Client.ServerURL)
		resp, err := client.Login.CallUnary(cmd.Context(), connect.NewRequest(&rpc.LoginRequest{Password: password}))
		if err != nil {
			var connectErr *connect.Error
			if errors.As(err, &connectErr) && connectErr.Code() == connect.CodeUnauthenticated {
				return errors.New(connectErr.Message())
			}
			return fmt.Errorf("failed to log in: %w", err)
		}

		if err := config.SaveToken(resp.Msg.Token); err != nil {
			return err
		}
		expires := time.Unix(resp.Msg.ExpiresAt, 0).Format("Jan 2 15:04")
		return done("Welcome! Session saved until %s", expires)
	},
}

func init() {
	loginCmd.Flags().BoolVar(&flagPasswordStdin, "password-stdin", false, "Read the password from stdin")
	rootCmd.AddCommand(loginCmd)
}
