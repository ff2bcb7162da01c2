package cli

import (
	"errors"
	"fmt"

	"github.com/rogerio-castellano/pixel-canvas/internal/access"
	"github.com/rogerio-castellano/pixel-canvas/internal/db"
	"github.com/rogerio-castellano/pixel-canvas/internal/service"
	"github.com/spf13/cobra"
)

const seedCanvasTitle = "Test canvas"

func (c *CLI) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.backend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()
			if b.DB == nil {
				return ErrNeedsPostgres
			}

			if err := db.Migrate(cmd.Context(), b.DB); err != nil {
				return err
			}
			version, err := db.Version(cmd.Context(), b.DB)
			if err != nil {
				return err
			}
			c.Logger.Info("migrations applied", "version", version)
			printSuccess(cmd.OutOrStdout(), "Schema at version %d", version)
			return nil
		},
	}
}

func (c *CLI) resetCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset-db",
		Short: "Drop all data and recreate the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset-db deletes every user and canvas, pass --yes to confirm")
			}
			b, err := c.backend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()
			if b.DB == nil {
				return ErrNeedsPostgres
			}

			if err := db.Reset(cmd.Context(), b.DB); err != nil {
				return err
			}
			c.Logger.Warn("database reset")
			printSuccess(cmd.OutOrStdout(), "Database reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func (c *CLI) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show user and canvas counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.backend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			s, err := b.Stats.GetStats(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printHeading(w, "Database statistics")
			printField(w, "Users", s.Users)
			printField(w, "Canvases", s.Canvases)
			printField(w, "Public canvases", s.PublicCanvases)
			printField(w, "Private canvases", s.PrivateCanvases)
			return nil
		},
	}
}

func (c *CLI) usersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users with their canvas counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.backend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			counts, err := b.Stats.UserCanvasCounts(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printHeading(w, "Users (%d)", len(counts))
			for _, u := range counts {
				fmt.Fprintf(w, "%s %s <%s>  %s canvases\n",
					styleNumber.Render(fmt.Sprintf("#%d", u.ID)),
					styleValue.Render(u.Username),
					u.Email,
					styleNumber.Render(fmt.Sprint(u.Canvases)))
			}
			return nil
		},
	}
}

func (c *CLI) canvasesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "canvases",
		Short: "List all canvases, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.backend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			canvases, err := b.Canvases.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printHeading(w, "Canvases (%d)", len(canvases))
			for _, cv := range canvases {
				visibility := "private"
				if cv.IsPublic {
					visibility = "public"
				}
				fmt.Fprintf(w, "%s %s  %dx%d\n",
					styleNumber.Render(fmt.Sprintf("#%d", cv.ID)),
					styleValue.Render(cv.Title),
					cv.Width, cv.Height)
				fmt.Fprintf(w, "  %s %s, %s, created %s\n",
					styleLabel.Render("by"),
					cv.OwnerName,
					visibility,
					cv.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func (c *CLI) seedCommand() *cobra.Command {
	var (
		owner string
		size  int
	)
	cmd := &cobra.Command{
		Use:   "seed-canvas",
		Short: "Add an empty public test canvas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.backend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			u, err := b.Users.GetByUsername(cmd.Context(), owner)
			if err != nil {
				return fmt.Errorf("owner %q: %w", owner, err)
			}
			if size == 0 {
				size = c.cfg.Canvas.DefaultSize
			}

			id, err := b.Canvas.Create(cmd.Context(), access.Viewer{UserID: u.ID, Username: u.Username}, service.CreateCanvasInput{
				Title:    seedCanvasTitle,
				Width:    size,
				Height:   size,
				IsPublic: true,
			})
			if err != nil {
				return err
			}
			c.Logger.Info("canvas seeded", "canvas_id", id, "owner", u.Username, "size", size)
			printSuccess(cmd.OutOrStdout(), "Created canvas #%d (%dx%d) for %s", id, size, size, u.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "username owning the canvas")
	cmd.Flags().IntVar(&size, "size", 0, "width and height (default canvas.default_size)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func (c *CLI) setPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-password <username>",
		Short: "Set a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.backend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			password, err := promptNewPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := b.Accounts.SetPassword(cmd.Context(), args[0], password); err != nil {
				var verr *service.ValidationError
				if errors.As(err, &verr) {
					return errors.New(verr.Errors.Get("password"))
				}
				return err
			}
			c.Logger.Info("password changed", "username", args[0])
			printSuccess(cmd.OutOrStdout(), "Password updated for %s", args[0])
			return nil
		},
	}
}
