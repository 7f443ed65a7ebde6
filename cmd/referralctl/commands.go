package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/referral-portal/referral-service/internal/config"
	"github.com/referral-portal/referral-service/internal/mailer"
	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/repositories"
	"github.com/referral-portal/referral-service/internal/repositories/postgres"
	"github.com/referral-portal/referral-service/internal/security"
	"github.com/referral-portal/referral-service/internal/services"
	"github.com/referral-portal/referral-service/internal/storage"
	"github.com/referral-portal/referral-service/internal/validator"
	"github.com/referral-portal/referral-service/pkg"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)

// env is the database-backed context every subcommand runs in.
type env struct {
	cfg    *config.Config
	repo   repositories.Repository
	logger *slog.Logger
}

type envKey struct{}

func envFrom(ctx context.Context) (*env, error) {
	e, ok := ctx.Value(envKey{}).(*env)
	if !ok {
		return nil, errors.New("environment not initialized")
	}
	return e, nil
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "referralctl",
		Short:         "Operator tasks for the referral service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			var out io.Writer = io.Discard
			if verbose {
				out = os.Stderr
			}
			logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.LogLevel}))

			// InitDatabase also migrates the schema
			db, err := pkg.InitDatabase(cfg)
			if err != nil {
				return err
			}

			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, &env{
				cfg:    cfg,
				repo:   postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db}),
				logger: logger,
			}))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFrom(cmd.Context())
			if err != nil {
				return nil
			}
			return e.repo.Close()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(newCreateAdminCmd(), newPurgeOTPsCmd(), newMigrateCmd())
	return root
}

func newCreateAdminCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:     "create-admin",
		Short:   "Create a verified admin account",
		Example: `  referralctl create-admin --name "Ops" --email ops@example.com --password s3cret!`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFrom(cmd.Context())
			if err != nil {
				return err
			}
			user, err := createAdmin(cmd.Context(), e.repo, security.NewHasher(e.cfg.Auth.BcryptCost), name, email, password)
			if err != nil {
				return err
			}

			cmd.Println(titleStyle.Render("Admin created"))
			cmd.Println(labelStyle.Render("ID:    ") + user.ID)
			cmd.Println(labelStyle.Render("Email: ") + user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password (min 6 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// createAdmin stores an admin directly. Signup can never produce this role.
func createAdmin(ctx context.Context, repo repositories.Repository, hasher *security.Hasher, name, email, password string) (*models.User, error) {
	req := &services.RegisterRequest{
		Name:     strings.TrimSpace(name),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: password,
	}
	if req.Name == "" {
		req.Name = "Administrator"
	}
	if err := validator.New().Validate(req); err != nil {
		return nil, err
	}

	exists, err := repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%s: %w", req.Email, services.ErrEmailTaken)
	}

	hash, err := hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsVerified:   true,
	}
	if err := repo.User().Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func newPurgeOTPsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-otps",
		Short: "Delete expired verification codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFrom(cmd.Context())
			if err != nil {
				return err
			}

			otp := services.NewOTPService(
				e.repo, e.logger, validator.New(), security.NewHasher(e.cfg.Auth.BcryptCost),
				mailer.New(e.cfg.SMTP, e.logger), nil, nil, e.cfg.OTP,
			)
			removed, err := otp.PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Println(labelStyle.Render("Expired codes removed: ") + fmt.Sprint(removed))
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema and verify the upload directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFrom(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := storage.NewFileStore(e.cfg.Upload.Dir, e.cfg.Upload.MaxBytes); err != nil {
				return err
			}
			if err := e.repo.Ping(cmd.Context()); err != nil {
				return err
			}
			cmd.Println(titleStyle.Render("Schema up to date"))
			return nil
		},
	}
}
