package cmd

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/rjournal/internal/archive"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect files copied to the configured archive",
	Long: `Work with the exports and reports written by "export --archive" and
"analyze --archive". Files live under sessions/<session-id>/ in the backend
selected by archive.type (localfs or s3).

Subcommands:
  list    - List a session's archived files
  get     - Copy an archived file to the local disk
  remove  - Delete an archived file

Examples:
  rjournal archive list <session-id>
  rjournal archive get <session-id> march.csv ./march.csv`,
}

var archiveListCmd = &cobra.Command{
	Use:   "list <session-id>",
	Short: "List a session's archived files",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveList,
}

var archiveGetCmd = &cobra.Command{
	Use:   "get <session-id> <file> [dest]",
	Short: "Copy an archived file to the local disk",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runArchiveGet,
}

var archiveRemoveCmd = &cobra.Command{
	Use:   "remove <session-id> <file>",
	Short: "Delete an archived file",
	Args:  cobra.ExactArgs(2),
	RunE:  runArchiveRemove,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveGetCmd)
	archiveCmd.AddCommand(archiveRemoveCmd)
}

// openArchive resolves ref to a session and opens the configured backend.
func openArchive(ctx context.Context, ref string) (archive.Storage, string, error) {
	st, err := archive.New(cfg.Archive)
	if err != nil {
		return nil, "", fmt.Errorf("archive: %w", err)
	}

	j, err := openStore()
	if err != nil {
		return nil, "", err
	}
	defer j.Close()

	s, err := findSession(ctx, j, ref)
	if err != nil {
		return nil, "", err
	}
	return st, s.ID, nil
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	st, sessionID, err := openArchive(ctx, args[0])
	if err != nil {
		return err
	}

	keys, err := st.List(ctx, archive.Prefix(sessionID))
	if err != nil {
		return fmt.Errorf("list archive: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(keys) == 0 {
		fmt.Fprintln(out, "no archived files")
		return nil
	}
	for _, k := range keys {
		fmt.Fprintln(out, k)
	}
	return nil
}

func runArchiveGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	st, sessionID, err := openArchive(ctx, args[0])
	if err != nil {
		return err
	}

	key := archive.Key(sessionID, args[1])
	data, err := readArchived(ctx, st, key)
	if err != nil {
		return err
	}

	dest := path.Base(key)
	if len(args) == 3 {
		dest = args[2]
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Copied %s to %s\n", key, dest)
	return nil
}

func runArchiveRemove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	st, sessionID, err := openArchive(ctx, args[0])
	if err != nil {
		return err
	}

	key := archive.Key(sessionID, args[1])
	ok, err := st.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}
	if !ok {
		return fmt.Errorf("%s not found in archive", key)
	}
	if err := st.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	log.Info("archived file removed", zap.String("key", key))

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s:%s\n", cfg.Archive.Type, key)
	return nil
}

// archiveFiles copies each non-empty local file to the session's archive
// folder and returns the keys written.
func archiveFiles(ctx context.Context, st archive.Storage, sessionID string, files ...string) ([]string, error) {
	var keys []string
	for _, f := range files {
		if f == "" {
			continue
		}
		data, err := os.ReadFile(f)
		if err != nil {
			return keys, err
		}
		key := archive.Key(sessionID, f)
		if err := st.Write(ctx, key, data); err != nil {
			return keys, fmt.Errorf("archive %s: %w", key, err)
		}
		log.Info("file archived", zap.String("type", cfg.Archive.Type), zap.String("key", key))
		keys = append(keys, key)
	}
	return keys, nil
}

func readArchived(ctx context.Context, st archive.Storage, key string) ([]byte, error) {
	ok, err := st.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s not found in archive", key)
	}
	data, err := st.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}
