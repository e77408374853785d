package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOrInitWritesDefaults(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	got, err := LoadOrInit(home)
	require.NoError(t, err)
	require.Equal(t, Default(home), got)

	info, err := os.Stat(ConfigPath(home))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadOrInitFillsMissingFields(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	path := ConfigPath(home)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  internal_url: http://api:8000
cli:
  output: json
`), 0o600))

	got, err := LoadOrInit(home)
	require.NoError(t, err)
	require.Equal(t, "http://api:8000", got.API.InternalURL)
	require.Equal(t, "", got.API.PublicURL)
	require.Equal(t, "json", got.CLI.Output)
	require.Equal(t, DefaultWebAddr, got.Web.Addr)
	require.Equal(t, DefaultCORSOrigins, got.DevAPI.CORSOrigins)

	roundTrip, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, got, roundTrip)
}

func TestLoadFileRejectsInvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0o600))
	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestMergeTrimsAndOverrides(t *testing.T) {
	t.Parallel()

	defaults := Default("/home/test")
	user := Config{
		API:    APIConfig{PublicURL: "  https://api.example.com  "},
		DevAPI: DevAPIConfig{CORSOrigins: []string{" https://ui.example.com ", ""}},
	}

	got := Merge(defaults, user)
	require.Equal(t, "https://api.example.com", got.API.PublicURL)
	require.Equal(t, []string{"https://ui.example.com"}, got.DevAPI.CORSOrigins)
	require.Equal(t, defaults.DevAPI.SQLitePath, got.DevAPI.SQLitePath)
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"a", "b"}, SplitList(" a, ,b "))
	require.Nil(t, SplitList(""))
}

func TestResolveBaseURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		execCtx  ExecContext
		internal string
		public   string
		want     string
	}{
		{name: "browser uses public", execCtx: ContextBrowser, public: "https://public.example.com", want: "https://public.example.com"},
		{name: "browser ignores internal", execCtx: ContextBrowser, internal: "http://api:8000", want: DefaultAPIURL},
		{name: "browser default", execCtx: ContextBrowser, want: "http://localhost:8000"},
		{name: "server prefers internal", execCtx: ContextServer, internal: "http://api:8000", public: "https://public.example.com", want: "http://api:8000"},
		{name: "server falls back to public", execCtx: ContextServer, public: "https://public.example.com", want: "https://public.example.com"},
		{name: "server default", execCtx: ContextServer, want: "http://localhost:8000"},
		{name: "blank counts as unset", execCtx: ContextServer, internal: "   ", public: "", want: DefaultAPIURL},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ResolveBaseURL(tc.execCtx, tc.internal, tc.public))
		})
	}
}

func TestExecContextString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "server", ContextServer.String())
	require.Equal(t, "browser", ContextBrowser.String())
	require.Equal(t, "unknown", ExecContext(9).String())
}
