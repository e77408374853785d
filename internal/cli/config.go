package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/geonosis/console/internal/config"
	"github.com/joho/godotenv"
)

const dotEnvFile = ".env"

// ParseEnvConfig reads the environment variables the console understands.
// Later entries win, so callers list lower-precedence sources first.
func ParseEnvConfig(env []string) config.Config {
	values := make(map[string]string, len(env))
	for _, kv := range env {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		values[key] = strings.TrimSpace(value)
	}

	cfg := config.Config{}
	cfg.LogLevel = values["GEONOSIS_LOG_LEVEL"]
	cfg.API.InternalURL = values["API_URL_INTERNAL"]
	cfg.API.PublicURL = firstNonEmpty(values["PUBLIC_API_URL"], values["NEXT_PUBLIC_API_URL"])
	cfg.Web.Addr = values["GEONOSIS_WEB_ADDR"]
	cfg.Web.SessionKey = values["GEONOSIS_SESSION_KEY"]
	cfg.DevAPI.Addr = values["GEONOSIS_DEVAPI_ADDR"]
	cfg.DevAPI.SQLitePath = values["GEONOSIS_DEVAPI_SQLITE_PATH"]
	cfg.DevAPI.CORSOrigins = config.SplitList(values["GEONOSIS_DEVAPI_CORS_ORIGINS"])
	if output := values["GEONOSIS_OUTPUT"]; isValidOutput(output) {
		cfg.CLI.Output = output
	}
	return cfg
}

// LoadDotEnv returns the KEY=VALUE pairs of a dotenv file. A missing file
// yields no pairs.
func LoadDotEnv(path string) ([]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	pairs := make([]string, 0, len(values))
	for key, value := range values {
		pairs = append(pairs, key+"="+value)
	}
	return pairs, nil
}

// MergeConfig layers each source over the previous one; empty fields never
// override.
func MergeConfig(defaults config.Config, layers ...config.Config) config.Config {
	out := defaults
	for _, layer := range layers {
		out = config.Merge(out, layer)
	}
	if !isValidOutput(out.CLI.Output) {
		out.CLI.Output = string(OutputText)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
