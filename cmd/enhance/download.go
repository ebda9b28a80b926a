package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ultraview/enhancer/internal/client"
)

var downloadOutput string

var downloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Download an enhanced file",
	Long: `Download an enhanced file by its download URL, either absolute or
relative to --server (e.g. /api/download?file=1712345678901_clip.mp4).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client.New(serverURL)
		if err != nil {
			return err
		}
		path, err := download(cmd.Context(), c, args[0], downloadOutput)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), styleOK.Render("✔")+" saved "+path)
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", ".", "directory to save into")
}

// download fetches url into dir under the name announced by the server.
// The file is written to a temporary name first and renamed once complete.
func download(ctx context.Context, c *client.Client, url, dir string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := appFs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := afero.TempFile(appFs, dir, ".enhance-*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	name, err := c.Download(ctx, url, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = appFs.Remove(tmp.Name())
		return "", err
	}

	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		name = "enhanced.bin"
	}
	dst := filepath.Join(dir, name)
	if err := appFs.Rename(tmp.Name(), dst); err != nil {
		_ = appFs.Remove(tmp.Name())
		return "", fmt.Errorf("save %s: %w", dst, err)
	}
	return dst, nil
}
