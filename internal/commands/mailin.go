package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/smartnote/internal/credential"
	"github.com/nhle/smartnote/internal/mailin"
	"github.com/nhle/smartnote/internal/notebook"
)

func addMailin(topLevel *cobra.Command, g *GlobalOptions) {
	limit := 0

	cmd := &cobra.Command{
		Use:   "mailin",
		Short: "Turn unread mail into notes.",
		Long: `Fetch unseen messages from the configured IMAP mailbox, save each as a
note and mark it seen. The password is read from the keyring entry set
in Settings.`,
		Example: `
smartnote mailin
smartnote mailin --limit 5
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer e.Close()

			cfg := e.cfg.Mailin
			if cfg.Host == "" || cfg.Username == "" {
				return errors.New("mail-in is not configured; set mailin.host and mailin.username")
			}
			if limit > 0 {
				cfg.Limit = limit
			}

			pw, err := credential.New().Get(credential.KeyIMAPPassword)
			if err != nil {
				return fmt.Errorf("reading IMAP password: %w", err)
			}

			notes, err := mailin.Import(cmd.Context(), mailin.NewClient(cfg, pw), e.notebook, cfg.Limit, notebook.NewID, e.log)
			if err != nil && len(notes) == 0 {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d notes from mail.\n", len(notes))
			if err != nil {
				return fmt.Errorf("marking mail seen: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Most messages to import (default from config).")

	topLevel.AddCommand(cmd)
}
