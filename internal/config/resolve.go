package config

import "strings"

const (
	// DefaultAPIURL is used when no backend URL is configured.
	DefaultAPIURL = "http://localhost:8000"
	// APIPrefix is prepended to every project endpoint.
	APIPrefix = "/api/v1"
)

// ExecContext tells the resolver who will dial the backend.
type ExecContext int

const (
	// ContextServer covers this process: the web server and the CLI.
	ContextServer ExecContext = iota
	// ContextBrowser covers URLs handed out to browsers.
	ContextBrowser
)

func (c ExecContext) String() string {
	switch c {
	case ContextServer:
		return "server"
	case ContextBrowser:
		return "browser"
	default:
		return "unknown"
	}
}

// ResolveBaseURL picks the backend base URL for an execution context.
// The server context prefers the internal URL and falls back to the public
// one; browsers only ever see the public URL. Blank values count as unset.
func ResolveBaseURL(execCtx ExecContext, internalURL, publicURL string) string {
	internalURL = strings.TrimSpace(internalURL)
	publicURL = strings.TrimSpace(publicURL)

	if execCtx == ContextServer && internalURL != "" {
		return internalURL
	}
	if publicURL != "" {
		return publicURL
	}
	return DefaultAPIURL
}
