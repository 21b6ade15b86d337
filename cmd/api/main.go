package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"perfumeshop/internal/config"
	"perfumeshop/internal/domain/model"
	"perfumeshop/internal/infra/db"
	"perfumeshop/internal/infra/logger"
	"perfumeshop/internal/server"

	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "api",
		Short:         "perfume shop order API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			//.env は任意。既に入っている環境変数が優先。
			config.LoadDotenv(envFile, "../.env")
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load")

	rootCmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		tokenCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			l, err := logger.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = l.Sync() }()

			//DB接続
			gormDB, err := db.Connect(cfg)
			if err != nil {
				l.Error("db connect failed", zap.Error(err))
				return err
			}
			//開発中は起動時にテーブルを合わせる
			if !cfg.IsProd() {
				if err := db.AutoMigrate(gormDB); err != nil {
					l.Error("migrate failed", zap.Error(err))
					return err
				}
			}

			e := server.New(cfg, gormDB, l)
			return server.Start(cmd.Context(), e, addr(cfg.Port), l)
		},
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "create or update tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			gormDB, err := db.Connect(cfg)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(gormDB); err != nil {
				return err
			}
			fmt.Println("Migrated")
			return nil
		},
	}
}

// 開発用のアクセストークンを発行する（ログイン機能はこのサービスの外）
func tokenCommand() *cobra.Command {
	var (
		userID int64
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "issue a bearer token for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if userID <= 0 {
				return fmt.Errorf("--user must be > 0")
			}
			r := model.Role(role)
			if !r.Valid() {
				return fmt.Errorf("--role must be USER or ADMIN")
			}

			tok, err := issueToken(cfg.JWTSecret, userID, r, time.Now(), ttl)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id (sub claim)")
	cmd.Flags().StringVar(&role, "role", string(model.RoleUser), "USER or ADMIN")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func issueToken(secret string, userID int64, role model.Role, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// PORT は "8080" でも ":8080" でもよい
func addr(port string) string {
	if port != "" && port[0] == ':' {
		return port
	}
	return ":" + port
}

