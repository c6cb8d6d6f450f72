package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"punchclock/internal/auth"
)

func newLoginCmd(app *App) *cobra.Command {
	var userID, token, name string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store credentials for the log store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				if app.IsInteractive == nil || !app.IsInteractive() {
					return errors.New("--token is required in non-interactive mode")
				}
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("User ID").Value(&userID),
					huh.NewInput().Title("Display name (optional)").Value(&name),
					huh.NewInput().Title("API token").EchoMode(huh.EchoModePassword).Value(&token),
				))
				if err := form.Run(); err != nil {
					return err
				}
			}
			if token == "" {
				return errors.New("no token provided")
			}

			session := &auth.UserSession{UserID: userID, DisplayName: name, Token: token}
			if err := app.Sessions.Save(session); err != nil {
				return err
			}

			who := name
			if who == "" {
				who = userID
			}
			if who == "" {
				fmt.Println(styleOK.Render("Logged in."))
			} else {
				fmt.Println(styleOK.Render("Logged in as " + who + "."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	cmd.Flags().StringVar(&token, "token", "", "API bearer token")
	cmd.Flags().StringVar(&name, "name", "", "Display name")

	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Sessions.Clear(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}
