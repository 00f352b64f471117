package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/d60-Lab/anon-forum/internal/repository"
	"github.com/d60-Lab/anon-forum/internal/service"
	"github.com/d60-Lab/anon-forum/pkg/database"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin USERNAME PASSWORD",
	Short: "Create a user with the admin flag, bypassing public registration",
	Args:  cobra.ExactArgs(2),
	RunE:  createAdmin,
}

func init() {
	RootCmd.AddCommand(createAdminCmd)
}

func createAdmin(cmd *cobra.Command, args []string) error {
	db, cfg, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close(db)

	auth := service.NewAuthService(repository.NewUserRepository(db), cfg.Password.BcryptCost)
	u, err := auth.CreateAdmin(cmd.Context(), args[0], args[1])
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUsername) {
			return fmt.Errorf("user '%s' already exists", args[0])
		}
		return err
	}
	outputSuccess("Admin user '%s' created successfully.", u.Username)
	return nil
}
