package cli

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/geonosis/console/internal/devapi"
	"github.com/geonosis/console/internal/web"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	openAPITargetDevAPI  = "dev-api"
	openAPITargetConsole = "console"
)

func newOpenAPICommand(stdout io.Writer) *cobra.Command {
	var (
		target  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document as YAML.",
		Long:  "Prints the OpenAPI document of the dev API (default) or of the console's JSON endpoints.",
		Example: strings.TrimSpace(`geonosis openapi
geonosis openapi --target console
geonosis openapi --out api/openapi.yaml`),
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			doc, closeFn, err := openAPIDocument(strings.TrimSpace(target))
			if err != nil {
				return err
			}
			defer closeFn()

			raw, err := yaml.Marshal(doc)
			if err != nil {
				return fmt.Errorf("marshal openapi: %w", err)
			}

			if strings.TrimSpace(outPath) == "" {
				_, err = stdout.Write(raw)
				return err
			}
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			if err := os.WriteFile(outPath, raw, 0o644); err != nil {
				return fmt.Errorf("write openapi file: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", openAPITargetDevAPI, "document to print: dev-api or console")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

func openAPIDocument(target string) (*huma.OpenAPI, func(), error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	switch target {
	case openAPITargetDevAPI:
		app, err := devapi.New(devapi.Options{SQLitePath: ":memory:", Logger: logger})
		if err != nil {
			return nil, nil, fmt.Errorf("init dev api: %w", err)
		}
		return app.OpenAPI(), func() { _ = app.Close() }, nil
	case openAPITargetConsole:
		app, err := web.New(web.Options{SessionKey: []byte("openapi"), Logger: logger})
		if err != nil {
			return nil, nil, fmt.Errorf("init web console: %w", err)
		}
		return app.OpenAPI(), func() {}, nil
	default:
		return nil, nil, wrapCLIError(http.StatusBadRequest, fmt.Sprintf("unknown --target: %s", target))
	}
}
