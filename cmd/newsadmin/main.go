// Command newsadmin runs one-off maintenance tasks against the newsroom database and bucket.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"newsdesk/config"
	"newsdesk/internal/admincli"
	"newsdesk/internal/app"
	"newsdesk/internal/logging"
	"newsdesk/internal/storage"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type env struct {
	cfg    *config.Config
	log    zerolog.Logger
	stores *app.Stores
}

// load reads the shared config; stores are only opened when a command needs them.
func load(withStores bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: logging.New(cfg.Log)}
	if withStores {
		if e.stores, err = app.OpenStores(cfg, e.log); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func bucket(ctx context.Context) (storage.Storage, error) {
	e, err := load(false)
	if err != nil {
		return nil, err
	}
	return storage.New(ctx, e.cfg.Storage)
}

func main() {
	root := &cobra.Command{
		Use:           "newsadmin",
		Short:         "Newsroom maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	usersCommand := &cobra.Command{
		Use:   "users",
		Short: "Inspect and change user accounts",
	}
	root.AddCommand(usersCommand)

	var role string
	listUsersCommand := &cobra.Command{
		Use:   "list",
		Short: "List users, optionally filtered by role",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load(true)
			if err != nil {
				return err
			}
			return admincli.ListUsers(cmd.Context(), e.stores.Users, role, cmd.OutOrStdout())
		},
	}
	listUsersCommand.Flags().StringVar(&role, "role", "", "only list users with this role")
	usersCommand.AddCommand(listUsersCommand)

	usersCommand.AddCommand(&cobra.Command{
		Use:   "set-role [email] [role]",
		Short: "Replace a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load(true)
			if err != nil {
				return err
			}
			u, err := admincli.SetRole(cmd.Context(), e.stores.Users, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, u.Role)
			return nil
		},
	})

	imagesCommand := &cobra.Command{
		Use:   "images",
		Short: "Article image maintenance",
	}
	root.AddCommand(imagesCommand)

	var timeout time.Duration
	checkImagesCommand := &cobra.Command{
		Use:   "check",
		Short: "HEAD every image referenced by articles and report broken ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load(true)
			if err != nil {
				return err
			}
			report, err := admincli.CheckImages(cmd.Context(), e.stores.Articles, &http.Client{Timeout: timeout}, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d articles, %d urls checked, %d broken\n", report.Articles, report.Checked, len(report.Broken))
			if len(report.Broken) > 0 {
				return fmt.Errorf("%d broken image references", len(report.Broken))
			}
			return nil
		},
	}
	checkImagesCommand.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	imagesCommand.AddCommand(checkImagesCommand)

	storageCommand := &cobra.Command{
		Use:   "storage",
		Short: "Configure the media bucket",
	}
	root.AddCommand(storageCommand)

	storageCommand.AddCommand(&cobra.Command{
		Use:   "public",
		Short: "Allow anonymous reads on the bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := bucket(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.MakePublic(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "bucket is now publicly readable")
			return nil
		},
	})

	storageCommand.AddCommand(&cobra.Command{
		Use:   "cors [origin...]",
		Short: "Replace the bucket CORS rules with the given origins",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := bucket(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.SetCORS(cmd.Context(), args); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "CORS set for %d origins\n", len(args))
			return nil
		},
	})

	adsCommand := &cobra.Command{
		Use:   "ads",
		Short: "Advertising data tasks",
	}
	root.AddCommand(adsCommand)

	adsCommand.AddCommand(&cobra.Command{
		Use:   "import [file.json]",
		Short: "Import a legacy advertising export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load(true)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			res, err := admincli.ImportAds(cmd.Context(), e.stores.Ads, f)
			if err != nil {
				return err
			}
			for _, s := range res.Skipped {
				e.log.Warn().Msg(s)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d\n", len(res.Imported), len(res.Skipped))
			return nil
		},
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
