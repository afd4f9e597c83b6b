package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
)

// fileKind binds a file kind accepted by upload and download to the client
// calls moving it.
type fileKind struct {
	idName   string
	upload   func(c *client.Client, ctx context.Context, id, version int32, r io.Reader, size int64, p client.Progress) error
	download func(c *client.Client, ctx context.Context, id, version int32, w io.Writer, p client.Progress) (int64, error)
}

var kinds = map[string]fileKind{
	"source": {
		idName:   "plugin id",
		upload:   (*client.Client).UploadSourceZip,
		download: (*client.Client).DownloadSourceZip,
	},
	"assembly": {
		idName:   "plugin id",
		upload:   (*client.Client).UploadAssemblyZip,
		download: (*client.Client).DownloadAssemblyZip,
	},
	"resourcedata": {
		idName:   "resource id",
		upload:   (*client.Client).UploadResourceData,
		download: (*client.Client).DownloadResourceData,
	},
}

var (
	transferQuiet bool
	downloadForce bool
	downloadAnon  bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <source|assembly|resourcedata> <id> <version> <file>",
	Short: "Upload a source zip, an assembly zip or a resource data file",
	Long: `Upload a file to the server. The upload replaces any file previously
stored for the item only once it completes; an interrupted upload leaves
the previous file in place.

Examples:
  # Upload the source zip of plugin 12 version 3
  storectl upload source 12 3 ./enigma-src.zip

  # Attach a build result (build system)
  storectl upload assembly 12 3 ./enigma-bin.zip

  # Upload version 2 of the data of resource 4
  storectl upload resourcedata 4 2 ./dictionary.txt`,
	Args:      cobra.ExactArgs(4),
	ValidArgs: []string{"source", "assembly", "resourcedata"},
	RunE:      runUpload,
}

var downloadCmd = &cobra.Command{
	Use:   "download <source|assembly|resourcedata> <id> <version> <file>",
	Short: "Download a source zip, an assembly zip or a resource data file",
	Long: `Download a file from the server. Published assemblies and resource
data can be downloaded without logging in with --anonymous.

Examples:
  storectl download source 12 3 ./enigma-src.zip
  storectl download assembly 12 3 ./enigma-bin.zip --anonymous
  storectl download resourcedata 4 2 - > dictionary.txt`,
	Args:      cobra.ExactArgs(4),
	ValidArgs: []string{"source", "assembly", "resourcedata"},
	RunE:      runDownload,
}

func init() {
	for _, cmd := range []*cobra.Command{uploadCmd, downloadCmd} {
		cmd.Flags().BoolVarP(&transferQuiet, "quiet", "q", false, "Do not print progress")
	}
	downloadCmd.Flags().BoolVarP(&downloadForce, "force", "f", false, "Overwrite an existing file")
	downloadCmd.Flags().BoolVar(&downloadAnon, "anonymous", false, "Download without logging in (published items only)")
}

func parseTransferArgs(args []string) (fileKind, int32, int32, error) {
	kind, ok := kinds[args[0]]
	if !ok {
		return fileKind{}, 0, 0, fmt.Errorf("unknown file kind %q: must be source, assembly or resourcedata", args[0])
	}
	id, version, err := cmdutil.ParseIDVersion(kind.idName, args[1:3])
	if err != nil {
		return fileKind{}, 0, 0, err
	}
	return kind, id, version, nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	kind, id, version, err := parseTransferArgs(args)
	if err != nil {
		return err
	}

	f, err := os.Open(args[3])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		bar := newProgress("Uploading", filepath.Base(args[3]))
		err := kind.upload(c, cmd.Context(), id, version, f, info.Size(), bar.update)
		bar.finish(err)
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Uploaded %s (%s)", args[3], humanize.IBytes(uint64(info.Size()))))
		return nil
	})
}

func runDownload(cmd *cobra.Command, args []string) error {
	kind, id, version, err := parseTransferArgs(args)
	if err != nil {
		return err
	}

	path := args[3]
	var w io.Writer = os.Stdout
	var tmp *os.File
	if path != "-" {
		if _, err := os.Stat(path); err == nil && !downloadForce {
			return fmt.Errorf("%s exists; pass --force to overwrite it", path)
		}
		tmp, err = os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".part-*")
		if err != nil {
			return err
		}
		defer func() {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}()
		w = tmp
	}

	return cmdutil.WithClient(cmd.Context(), !downloadAnon, func(c *client.Client) error {
		bar := newProgress("Downloading", filepath.Base(path))
		if path == "-" {
			bar.quiet = true
		}
		n, err := kind.download(c, cmd.Context(), id, version, w, bar.update)
		bar.finish(err)
		if err != nil {
			return fmt.Errorf("download failed: %w", err)
		}
		if tmp == nil {
			return nil
		}

		if err := tmp.Close(); err != nil {
			return err
		}
		if err := os.Rename(tmp.Name(), path); err != nil {
			return err
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Downloaded %s (%s)", path, humanize.IBytes(uint64(n))))
		return nil
	})
}

// progress prints transfer progress to stderr, at most a few times per
// second.
type progress struct {
	verb  string
	name  string
	quiet bool
	start time.Time
	last  time.Time
	shown bool
}

func newProgress(verb, name string) *progress {
	return &progress{verb: verb, name: name, quiet: transferQuiet, start: time.Now()}
}

func (p *progress) update(done, total int64) {
	if p.quiet {
		return
	}
	now := time.Now()
	if done < total && now.Sub(p.last) < 200*time.Millisecond {
		return
	}
	p.last = now

	pct := 100.0
	if total > 0 {
		pct = float64(done) * 100 / float64(total)
	}
	rate := float64(done) / now.Sub(p.start).Seconds()
	fmt.Fprintf(os.Stderr, "\r%s %s: %s / %s (%.0f%%) %s/s   ",
		p.verb, p.name, humanize.IBytes(uint64(done)), humanize.IBytes(uint64(total)), pct, humanize.IBytes(uint64(rate)))
	p.shown = true
}

func (p *progress) finish(err error) {
	if !p.shown {
		return
	}
	fmt.Fprintln(os.Stderr)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Transfer cancelled.")
	}
}
