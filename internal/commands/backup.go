package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/smartnote/internal/transfer"
)

func addBackup(topLevel *cobra.Command, g *GlobalOptions) {
	var bucket, prefix, region string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Upload a snapshot of every note, folder and task to S3.",
		Example: `
smartnote backup
smartnote backup --bucket my-notes --prefix laptop/
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer e.Close()

			cfg := e.cfg.Backup
			if bucket != "" {
				cfg.Bucket = bucket
			}
			if prefix != "" {
				cfg.Prefix = prefix
			}
			if region != "" {
				cfg.Region = region
			}
			if cfg.Bucket == "" {
				return errors.New("no bucket; pass --bucket or set backup.bucket")
			}

			client, err := transfer.NewS3Client(cmd.Context(), transfer.S3Options{Region: cfg.Region})
			if err != nil {
				return err
			}
			snap := transfer.NewSnapshot(e.notebook.Notes(), e.notebook.Folders(), e.notebook.Tasks(), time.Now())
			key, err := transfer.Backup(cmd.Context(), client, cfg.Bucket, cfg.Prefix, snap)
			if err != nil {
				return err
			}
			e.log.Info("backup uploaded", "bucket", cfg.Bucket, "key", key)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Backed up to s3://%s/%s\n", cfg.Bucket, key)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket (default from config).")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default from config).")
	cmd.Flags().StringVar(&region, "region", "", "AWS region (default from config or the AWS environment).")

	topLevel.AddCommand(cmd)
}
