/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"

	"github.com/docdrop-io/apiserver/config"
	"github.com/docdrop-io/apiserver/internal/db"
	"github.com/docdrop-io/apiserver/internal/services"
	"github.com/docdrop-io/apiserver/internal/store"
	"github.com/docdrop-io/apiserver/internal/token"
	"github.com/spf13/cobra"
)

// seedCmd provisions the privileged ops account from config.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the configured ops account if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		if cfg.Auth.OpsEmail == "" || cfg.Auth.OpsPassword == "" {
			return errors.New("OPS_EMAIL and OPS_PASSWORD are required")
		}
		if cfg.Database.Backend == config.DatabaseBackendMemory {
			return errors.New("seeding requires a postgres database backend")
		}

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = dbConn.Close()
		}()

		users := store.NewUserRepository(dbConn)
		auth := services.NewAuthService(users, token.NewService(cfg.Auth.JWTSecret), nil)
		return auth.EnsureOpsUser(cmd.Context(), cfg.Auth.OpsEmail, cfg.Auth.OpsName, cfg.Auth.OpsPassword)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
