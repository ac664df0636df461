package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soleshop/soleshop/internal/profile"
	"github.com/soleshop/soleshop/server"
	"github.com/soleshop/soleshop/store"
	"github.com/soleshop/soleshop/store/db"
)

const version = "0.1.0"

var (
	rootCmd = &cobra.Command{
		Use:   "soleshop",
		Short: "The soleshop backend server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().String("mode", "dev", `mode of the server, can be "dev" or "prod"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, can be "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name (required for postgres)")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("soleshop")
	viper.AutomaticEnv()
}

func loadProfile() (*profile.Profile, error) {
	prof := &profile.Profile{
		Mode:    viper.GetString("mode"),
		Addr:    viper.GetString("addr"),
		Port:    viper.GetInt("port"),
		Data:    viper.GetString("data"),
		Driver:  viper.GetString("driver"),
		DSN:     viper.GetString("dsn"),
		Version: version,
	}
	prof.FromEnv()
	if err := prof.Validate(); err != nil {
		return nil, err
	}
	return prof, nil
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prof, err := loadProfile()
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	level := slog.LevelInfo
	if prof.IsDev() {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	dbDriver, err := db.NewDBDriver(prof)
	if err != nil {
		return fmt.Errorf("failed to create db driver: %w", err)
	}
	st := store.New(dbDriver, prof)
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	srv, err := server.NewServer(ctx, prof, st)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
