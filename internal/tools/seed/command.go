package seed

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"mobile-auth-service/internal/config"
	"mobile-auth-service/internal/database"
	"mobile-auth-service/internal/domain"
	"mobile-auth-service/internal/tools/common"
)

type options struct {
	envFile string
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Database seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.AddCommand(newApplyCommand(opts), newVerifyMobileCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	var mobile, password string
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Migrate the schema and create a development account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := loadConfigDB(opts.envFile)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			if mobile == "" {
				fmt.Println("schema migrated; no dev account requested")
				return nil
			}
			if err := database.SeedDevUser(db, mobile, password, cfg.BcryptCost); err != nil {
				return err
			}
			fmt.Printf("schema migrated; dev account ensured for %s\n", mobile)
			return nil
		},
	}
	cmd.Flags().StringVar(&mobile, "mobile", "", "mobile number for the dev account")
	cmd.Flags().StringVar(&password, "password", "Password123", "password for the dev account")
	return cmd
}

func newVerifyMobileCommand(opts *options) *cobra.Command {
	var mobile string
	cmd := &cobra.Command{
		Use:   "verify-mobile",
		Short: "Mark an account as mobile-verified without a code",
		RunE: func(cmd *cobra.Command, args []string) error {
			mobile = strings.TrimSpace(mobile)
			if mobile == "" {
				return fmt.Errorf("mobile is required")
			}
			_, db, err := loadConfigDB(opts.envFile)
			if err != nil {
				return err
			}
			res := db.Model(&domain.User{}).Where("mobile = ?", mobile).Update("is_verified", true)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("no account found for %s", mobile)
			}
			fmt.Printf("marked %s as verified\n", mobile)
			return nil
		},
	}
	cmd.Flags().StringVar(&mobile, "mobile", "", "mobile number to mark verified")
	return cmd
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
