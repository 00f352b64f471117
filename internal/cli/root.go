package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/d60-Lab/anon-forum/config"
	"github.com/d60-Lab/anon-forum/pkg/database"
	"github.com/d60-Lab/anon-forum/pkg/logger"
)

// RootCmd forumctl 根命令
var RootCmd = &cobra.Command{
	Use:           "forumctl [command]",
	Short:         "Administrative tasks for the anon forum database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 由 main.main 调用
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		outputErrorAndExit("%v", err)
	}
}

func outputErrorAndExit(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Bold).Sprintf("Error: "+format, args...))
	os.Exit(1)
}

func outputSuccess(format string, args ...interface{}) {
	fmt.Fprintln(RootCmd.OutOrStdout(), color.New(color.FgGreen).Sprintf(format, args...))
}

// openDB 直接连接配置中的数据库
func openDB() (*gorm.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg.Database, false)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}
