package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/autox/marketplace-client/internal/gateway"
)

func newUploadCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "upload", Short: "Upload files"}

	profileImage := &cobra.Command{
		Use:   "profile-image <file>",
		Short: "Upload a profile picture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, closeAll, err := openFiles(args)
			if err != nil {
				return err
			}
			defer closeAll()

			env, err := app.client.Uploads.ProfileImage(cmd.Context(), files[0])
			if err != nil {
				return err
			}
			app.printer.Success("%s", messageOr(env.Message, "Profile image uploaded"))
			return app.printer.RawJSON(env.Data)
		},
	}

	documents := &cobra.Command{
		Use:   "documents <file>...",
		Short: "Upload verification documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, closeAll, err := openFiles(args)
			if err != nil {
				return err
			}
			defer closeAll()

			env, err := app.client.Uploads.Documents(cmd.Context(), files)
			if err != nil {
				return err
			}
			app.printer.Success("%s", messageOr(env.Message, fmt.Sprintf("%d documents uploaded", len(files))))
			return app.printer.RawJSON(env.Data)
		},
	}

	cmd.AddCommand(profileImage, documents)
	return cmd
}

// openFiles opens every path. The returned func closes whatever was opened.
func openFiles(paths []string) ([]gateway.File, func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]gateway.File, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("open %s: %w", p, err)
		}
		opened = append(opened, f)
		info, err := f.Stat()
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if info.IsDir() {
			closeAll()
			return nil, nil, errors.New(p + " is a directory")
		}
		files = append(files, gateway.File{Name: filepath.Base(p), Content: f})
	}
	return files, closeAll, nil
}
