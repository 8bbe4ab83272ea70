package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	DefaultTokenFile    = "token.json"
	DefaultRedirectPort = "8085"
	authorizeTimeout    = 5 * time.Minute
	callbackPath        = "/callback"
)

// OAuthClient holds an installed-app OAuth client. JSON wins over File.
type OAuthClient struct {
	JSON string
	File string
}

func (c OAuthClient) configured() bool {
	return strings.TrimSpace(c.JSON) != "" || strings.TrimSpace(c.File) != ""
}

func (c OAuthClient) load() ([]byte, error) {
	if inline := strings.TrimSpace(c.JSON); inline != "" {
		return []byte(inline), nil
	}
	file := strings.TrimSpace(c.File)
	if file == "" {
		return nil, errors.New("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read client file: %w", err)
	}
	return data, nil
}

// OAuthConfig parses the client credentials for the Sheets scope.
func OAuthConfig(client OAuthClient, redirectPort string) (*oauth2.Config, error) {
	data, err := client.load()
	if err != nil {
		return nil, err
	}
	cfg, err := goauth.ConfigFromJSON(data, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	if redirectPort == "" {
		redirectPort = DefaultRedirectPort
	}
	cfg.RedirectURL = "http://localhost:" + redirectPort + callbackPath
	return cfg, nil
}

func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()

	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &tok, nil
}

func SaveToken(path string, tok *oauth2.Token) error {
	if path == "" {
		path = DefaultTokenFile
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Authorize runs the installed-app flow: it prints the consent URL to out,
// waits for Google to redirect to the local callback, and exchanges the code.
func Authorize(ctx context.Context, cfg *oauth2.Config, out io.Writer) (*oauth2.Token, error) {
	addr, err := callbackAddr(cfg.RedirectURL)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for callback: %w", err)
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			select {
			case errCh <- fmt.Errorf("authorization denied: %s", errStr):
			default:
			}
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		select {
		case codeCh <- r.URL.Query().Get("code"):
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	fmt.Fprintf(out, "Open this URL to authorize:\n%s\n", cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline))

	ctx, cancel := context.WithTimeout(ctx, authorizeTimeout)
	defer cancel()

	select {
	case code := <-codeCh:
		tok, err := cfg.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("token exchange: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization aborted: %w", ctx.Err())
	}
}

func callbackAddr(redirectURL string) (string, error) {
	rest, ok := strings.CutPrefix(redirectURL, "http://")
	if !ok {
		return "", fmt.Errorf("redirect URL must be http: %q", redirectURL)
	}
	host, _, _ := strings.Cut(rest, "/")
	_, port, err := net.SplitHostPort(host)
	if err != nil {
		return "", fmt.Errorf("redirect URL %q: %w", redirectURL, err)
	}
	return "localhost:" + port, nil
}

func oauthTokenSource(ctx context.Context, client OAuthClient, tokenFile string) (oauth2.TokenSource, error) {
	cfg, err := OAuthConfig(client, "")
	if err != nil {
		return nil, err
	}
	if tokenFile == "" {
		tokenFile = DefaultTokenFile
	}
	tok, err := LoadToken(tokenFile)
	if err != nil {
		return nil, err
	}
	return cfg.TokenSource(ctx, tok), nil
}
