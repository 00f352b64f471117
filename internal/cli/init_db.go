package cli

import (
	"github.com/spf13/cobra"

	"github.com/d60-Lab/anon-forum/pkg/database"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the users, posts and replies tables if they do not exist",
	Args:  cobra.NoArgs,
	RunE:  initDB,
}

func init() {
	RootCmd.AddCommand(initDBCmd)
}

func initDB(cmd *cobra.Command, args []string) error {
	db, _, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	outputSuccess("Database tables created (if they didn't exist).")
	return nil
}
