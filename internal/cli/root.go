// Package cli implements the geonosis command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geonosis/console/internal/apiclient"
	"github.com/geonosis/console/internal/cli/commands/projectcmd"
	"github.com/geonosis/console/internal/config"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	apiURL string
	output string
}

type commandRuntime struct {
	cfg    *config.Config
	apiURL *string
	stderr io.Writer
}

// BaseURL is the --api-url override when given, else the server-context
// resolution of the configured URLs.
func (r commandRuntime) BaseURL() string {
	if value := strings.TrimSpace(*r.apiURL); value != "" {
		return value
	}
	return config.ResolveBaseURL(config.ContextServer, r.cfg.API.InternalURL, r.cfg.API.PublicURL)
}

func (r commandRuntime) Client() *apiclient.Client {
	return apiclient.New(r.BaseURL(), apiclient.WithLogger(newLogger(r.cfg.LogLevel, r.stderr)))
}

func (r commandRuntime) Output() string {
	return r.cfg.CLI.Output
}

func NewRootCommand(initial config.Config, stdout, stderr io.Writer) *cobra.Command {
	cfg := initial
	flags := globalFlags{
		output: initial.CLI.Output,
	}
	runtime := commandRuntime{cfg: &cfg, apiURL: &flags.apiURL, stderr: stderr}

	root := &cobra.Command{
		Use:   "geonosis",
		Short: "Run the Geonosis console and manage projects over HTTP.",
		Long: strings.TrimSpace(`geonosis is a single binary for:
- serving the Geonosis web console
- managing projects over the Geonosis REST API
- running a local sqlite-backed stand-in for that API

Use geonosis help <command> for command-specific examples.

--api-url overrides the backend base URL; otherwise API_URL_INTERNAL,
PUBLIC_API_URL and the config file decide, falling back to
http://localhost:8000. --output selects text/json formatting.`),
		Example: strings.TrimSpace(`geonosis serve
geonosis serve --with-dev-api
geonosis project create -n "Alpha" -e "Build a todo app"
geonosis proj ls
geonosis --output json project get <id>
geonosis project update <id> --status APPROVED
geonosis dev-api --sqlite-path /tmp/geonosis.db
geonosis openapi --out api/openapi.yaml`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return applyGlobalFlags(&cfg, flags)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Backend API base URL (e.g. http://localhost:8000)")
	root.PersistentFlags().StringVar(&flags.output, "output", flags.output, "Output format: text or json")

	root.AddCommand(projectcmd.New(runtime, stdout, wrapRequestError, wrapCLIError))
	root.AddCommand(newServeCommand(&cfg, &flags.apiURL, stdout))
	root.AddCommand(newDevAPICommand(&cfg, stdout))
	root.AddCommand(newOpenAPICommand(stdout))

	return root
}

func applyGlobalFlags(cfg *config.Config, flags globalFlags) error {
	output := strings.TrimSpace(flags.output)
	if !isValidOutput(output) {
		return &cliError{status: http.StatusBadRequest, message: fmt.Sprintf("invalid --output: %s", output)}
	}
	cfg.CLI.Output = output
	return nil
}

func wrapCLIError(status int, message string) error {
	return &cliError{status: status, message: message}
}

// newLogger builds the text logger used across commands. Unknown levels
// fall back to info.
func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
