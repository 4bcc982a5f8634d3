package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nutrack/nutrack/backend/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Load the configuration and report problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cfg, err := config.LoadConfig()
		if err != nil {
			var verrs config.ValidationErrors
			if errors.As(err, &verrs) {
				for _, v := range verrs {
					fmt.Fprintf(out, "✗ %s\n", v.Error())
				}
			}
			return fmt.Errorf("configuration is invalid: %w", err)
		}

		fmt.Fprintf(out, "✓ environment %s\n", cfg.Environment)
		fmt.Fprintf(out, "✓ database %s\n", cfg.DBDriver)
		if cfg.RedisEnabled() {
			fmt.Fprintln(out, "✓ redis configured, drafts and rate limits enabled")
		} else {
			fmt.Fprintln(out, "- redis not configured, drafts kept in memory")
		}
		if cfg.S3Bucket != "" {
			fmt.Fprintf(out, "✓ report export to s3://%s (%s)\n", cfg.S3Bucket, cfg.AWSRegion)
		} else {
			fmt.Fprintln(out, "- report export disabled")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
