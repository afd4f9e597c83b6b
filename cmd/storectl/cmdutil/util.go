// Package cmdutil provides shared utilities for storectl commands.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/marmos91/cryptoolstore/internal/cli/contexts"
	"github.com/marmos91/cryptoolstore/internal/cli/output"
	"github.com/marmos91/cryptoolstore/internal/cli/prompt"
	"github.com/marmos91/cryptoolstore/pkg/client"
	"github.com/marmos91/cryptoolstore/pkg/tlsutil"
)

// PasswordEnv is read before prompting for a password.
const PasswordEnv = "CRYPTOOLSTORE_PASSWORD"

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	Context    string
	Address    string
	Username   string
	CAFile     string
	ServerName string
	Insecure   bool
	Timeout    time.Duration
	Output     string
	NoColor    bool
}

// Target resolves the server to talk to: the named or current context
// with any flag overrides applied. Flags alone are enough when no context
// exists.
func Target() (*contexts.Context, error) {
	target := &contexts.Context{}

	store, err := contexts.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to load contexts: %w", err)
	}
	switch {
	case Flags.Context != "":
		c, err := store.Get(Flags.Context)
		if err != nil {
			return nil, err
		}
		*target = *c
	default:
		if _, c, err := store.Current(); err == nil {
			*target = *c
		} else if Flags.Address == "" {
			return nil, err
		}
	}

	applyOverrides(target)
	if target.Address == "" {
		return nil, fmt.Errorf("no server address; pass --address or run 'storectl context add'")
	}
	return target, nil
}

func applyOverrides(target *contexts.Context) {
	if Flags.Address != "" {
		target.Address = Flags.Address
	}
	if Flags.Username != "" {
		target.Username = Flags.Username
	}
	if Flags.CAFile != "" {
		target.CAFile = Flags.CAFile
	}
	if Flags.ServerName != "" {
		target.ServerName = Flags.ServerName
	}
	if Flags.Insecure {
		target.Insecure = true
	}
}

// Options converts a context into client options.
func Options(target *contexts.Context) client.Options {
	return client.Options{
		Address: target.Address,
		TLS: tlsutil.ClientOptions{
			CAFile:             target.CAFile,
			ServerName:         target.ServerName,
			InsecureSkipVerify: target.Insecure,
		},
		DialTimeout: Flags.Timeout,
	}
}

// Connect dials the target server. With login set it also logs in as the
// context's developer, reading the password from CRYPTOOLSTORE_PASSWORD or
// asking for it. Anonymous sessions can only read published items.
func Connect(ctx context.Context, login bool) (*client.Client, error) {
	target, err := Target()
	if err != nil {
		return nil, err
	}

	c, err := client.Dial(ctx, Options(target))
	if err != nil {
		return nil, err
	}
	if !login {
		return c, nil
	}

	if target.Username == "" {
		_ = c.Close()
		return nil, fmt.Errorf("no username; pass --username or set one on the context")
	}
	password, err := Password(target.Username)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.Login(ctx, target.Username, password); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Password returns the password of username from the environment or a
// prompt.
func Password(username string) (string, error) {
	if pw := os.Getenv(PasswordEnv); pw != "" {
		return pw, nil
	}
	return prompt.Password(fmt.Sprintf("Password for %s", username))
}

// WithClient connects, runs fn and closes the session. Logged-in sessions
// are logged out first.
func WithClient(ctx context.Context, login bool, fn func(*client.Client) error) error {
	c, err := Connect(ctx, login)
	if err != nil {
		return err
	}
	defer func() {
		if login {
			_ = c.Logout(ctx)
		}
		_ = c.Close()
	}()
	return fn(c)
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled returns whether color output is disabled.
func IsColorDisabled() bool {
	return Flags.NoColor
}

// PrintOutput prints data in the selected format. For tables it prints
// emptyMsg when isEmpty is set, otherwise it renders tableRenderer.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintDetails prints a single item as key/value pairs, or as JSON/YAML.
func PrintDetails(w io.Writer, data any, pairs [][2]string) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		return output.PrintDetails(w, pairs)
	}
}

// PrintSuccess prints a success message if the output format is table.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	output.NewPrinter(os.Stdout, format, !IsColorDisabled()).Success(msg)
}

// RunDeleteWithConfirmation prompts for confirmation (unless force is true) and runs deleteFn.
func RunDeleteWithConfirmation(resourceType, name string, force bool, deleteFn func() error) error {
	confirmed, err := prompt.Confirm(fmt.Sprintf("Delete %s '%s'", resourceType, name), force)
	if err != nil {
		return HandleAbort(err)
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := deleteFn(); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("%s '%s' deleted successfully", resourceType, name))
	return nil
}

// HandleAbort turns a Ctrl+C at a prompt into a clean exit.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}

// ParseID parses a numeric id argument.
func ParseID(name, s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", name, s)
	}
	return int32(n), nil
}

// ParseIDVersion parses an "<id> <version>" argument pair.
func ParseIDVersion(idName string, args []string) (int32, int32, error) {
	id, err := ParseID(idName, args[0])
	if err != nil {
		return 0, 0, err
	}
	version, err := ParseID("version", args[1])
	if err != nil {
		return 0, 0, err
	}
	return id, version, nil
}

// BoolToYesNo converts a boolean to "yes" or "no" string.
func BoolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// EmptyOr returns the value if not empty, otherwise returns the fallback.
func EmptyOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
