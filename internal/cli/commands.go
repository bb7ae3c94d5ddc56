package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tphakala/go-zia"
)

// LoginCommand checks that the configured credentials are accepted.
func LoginCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:          "login",
		Short:        "Log in and out again to verify credentials",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withClient(cmd.Context(), func(client *zia.Client) error {
				session, err := client.Login(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to log in: %w", err)
				}

				if app.Output == JSONOutput {
					return renderJSON(cmd.OutOrStdout(), session)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in (auth type %s)\n", session.AuthType)
				return nil
			})
		},
	}
}

// PullCommand fetches the whole directory and prints its size.
func PullCommand(app *App) *cobra.Command {
	var pageSize int

	cmd := &cobra.Command{
		Use:          "pull",
		Short:        "Pull all users, departments and groups",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withClient(cmd.Context(), func(client *zia.Client) error {
				helper, err := zia.NewHelper(client, zia.WithHelperLogger(app.Log), zia.WithPullPageSize(pageSize))
				if err != nil {
					return err
				}
				dir, err := helper.PullAll(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to pull directory: %w", err)
				}

				counts := map[string]int{
					"users":       len(dir.Users),
					"departments": len(dir.Departments),
					"groups":      len(dir.Groups),
				}
				if app.Output == JSONOutput {
					return renderJSON(cmd.OutOrStdout(), counts)
				}
				renderTable(cmd.OutOrStdout(), table.Row{"Users", "Departments", "Groups"},
					[]table.Row{{counts["users"], counts["departments"], counts["groups"]}}, "")
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", 1000, "Records requested per page.")

	return cmd
}

// UsersCommand groups the user subcommands.
func UsersCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:              "users",
		Short:            "Interact with users",
		SilenceUsage:     true,
		TraverseChildren: true,
	}

	cmd.AddCommand(UsersListCommand(app))

	return cmd
}

// UsersListCommand lists users matching the filter flags.
func UsersListCommand(app *App) *cobra.Command {
	var filter zia.UserFilter

	cmd := &cobra.Command{
		Use:          "list",
		Aliases:      []string{"ls"},
		Short:        "Returns the list of users",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withClient(cmd.Context(), func(client *zia.Client) error {
				users, err := zia.Collect(client.Users.List(cmd.Context(), &filter))
				if err != nil {
					return fmt.Errorf("failed to get users: %w", err)
				}

				if app.Output == JSONOutput {
					return renderJSON(cmd.OutOrStdout(), users)
				}
				renderUsers(cmd.OutOrStdout(), users)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filter.Name, "name", "", "Filter by user name.")
	flags.StringVar(&filter.Dept, "dept", "", "Filter by department name.")
	flags.StringVar(&filter.Group, "group", "", "Filter by group name.")

	return cmd
}

// GroupCommand groups the membership subcommands.
func GroupCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:              "group",
		Short:            "Change group membership",
		SilenceUsage:     true,
		TraverseChildren: true,
	}

	cmd.AddCommand(
		membershipCommand(app, zia.ActionAdd, "Add a user to a group"),
		membershipCommand(app, zia.ActionRemove, "Remove a user from a group"),
	)

	return cmd
}

func membershipCommand(app *App, action zia.MembershipAction, short string) *cobra.Command {
	var (
		activate   bool
		automation string
	)

	cmd := &cobra.Command{
		Use:          string(action) + " <principal> <group-name>",
		Short:        short,
		SilenceUsage: true,
		Args:         cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			principal, groupName := args[0], args[1]

			return app.withClient(cmd.Context(), func(client *zia.Client) error {
				helper, err := zia.NewHelper(client,
					zia.WithHelperLogger(app.Log),
					zia.WithAutomationName(automation),
				)
				if err != nil {
					return err
				}

				dir, err := helper.PullAll(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to pull directory: %w", err)
				}
				group, err := dir.FindGroup(groupName)
				if err != nil {
					return err
				}

				user, err := helper.UpdateGroupMembership(cmd.Context(), dir, principal, *group, action)
				if err != nil {
					return fmt.Errorf("failed to update %s: %w", principal, err)
				}

				if activate {
					status, err := client.Status.Activate(cmd.Context())
					if err != nil {
						return fmt.Errorf("failed to activate changes: %w", err)
					}
					app.Log.Info().Str("status", string(status.Status)).Msg("changes activated")
				}

				if app.Output == JSONOutput {
					return renderJSON(cmd.OutOrStdout(), user)
				}
				renderUsers(cmd.OutOrStdout(), []*zia.User{user})
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&activate, "activate", false, "Activate pending changes after the update.")
	flags.StringVar(&automation, "automation-name", "ziactl", "Name recorded in the user's comments.")

	return cmd
}

// LocationsCommand groups the location subcommands.
func LocationsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:              "locations",
		Short:            "Interact with locations",
		SilenceUsage:     true,
		TraverseChildren: true,
	}

	cmd.AddCommand(
		locationsListCommand(app),
		locationsLiteCommand(app),
	)

	return cmd
}

func locationsListCommand(app *App) *cobra.Command {
	var filter zia.LocationFilter

	cmd := &cobra.Command{
		Use:          "list",
		Aliases:      []string{"ls"},
		Short:        "Returns the list of locations",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withClient(cmd.Context(), func(client *zia.Client) error {
				locations, err := zia.Collect(client.Locations.List(cmd.Context(), &filter))
				if err != nil {
					return fmt.Errorf("failed to get locations: %w", err)
				}

				if app.Output == JSONOutput {
					return renderJSON(cmd.OutOrStdout(), locations)
				}
				renderLocations(cmd.OutOrStdout(), locations)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filter.Search, "search", "", "Filter by location name.")

	return cmd
}

func locationsLiteCommand(app *App) *cobra.Command {
	var (
		filter       zia.LocationLiteFilter
		subLocations bool
	)

	cmd := &cobra.Command{
		Use:          "lite",
		Short:        "Returns the name and ID of every location",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("include-sub-locations") {
				filter.IncludeSubLocations = zia.Bool(subLocations)
			}

			return app.withClient(cmd.Context(), func(client *zia.Client) error {
				locations, err := client.Locations.ListLite(cmd.Context(), &filter)
				if err != nil {
					return fmt.Errorf("failed to get locations: %w", err)
				}

				if app.Output == JSONOutput {
					return renderJSON(cmd.OutOrStdout(), locations)
				}
				renderLocationsLite(cmd.OutOrStdout(), locations)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filter.Search, "search", "", "Filter by location name.")
	flags.BoolVar(&subLocations, "include-sub-locations", false, "Include sub-locations.")

	return cmd
}

// StatusCommand prints the activation status.
func StatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:          "status",
		Short:        "Show whether configuration changes are pending",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withClient(cmd.Context(), func(client *zia.Client) error {
				status, err := client.Status.Get(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to get status: %w", err)
				}
				return renderStatus(app, cmd, status)
			})
		},
	}
}

// ActivateCommand applies pending configuration changes.
func ActivateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:          "activate",
		Short:        "Activate pending configuration changes",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withClient(cmd.Context(), func(client *zia.Client) error {
				status, err := client.Status.Activate(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to activate changes: %w", err)
				}
				return renderStatus(app, cmd, status)
			})
		},
	}
}

func renderStatus(app *App, cmd *cobra.Command, status *zia.Activation) error {
	if app.Output == JSONOutput {
		return renderJSON(cmd.OutOrStdout(), status)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Status: %s\n", status.Status)
	return nil
}
