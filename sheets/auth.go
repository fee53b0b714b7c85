package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// ClientOptions turns the configured credential files into API options.
//
//   - tokenFile set: credentialsFile holds OAuth client secrets and tokenFile a
//     previously granted user token; refreshed tokens are written back.
//   - only credentialsFile set: it is a service account key.
//   - neither: Application Default Credentials.
//
// Obtaining the first user token (the consent flow) is left to external tooling.
func ClientOptions(ctx context.Context, credentialsFile, tokenFile string) ([]option.ClientOption, error) {
	if tokenFile != "" {
		secrets, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read client secrets: %w", err)
		}
		conf, err := google.ConfigFromJSON(secrets, gsheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("parse client secrets: %w", err)
		}
		tok, err := readToken(tokenFile)
		if err != nil {
			return nil, err
		}
		ts := &persistingTokenSource{
			base: conf.TokenSource(ctx, tok),
			path: tokenFile,
			last: tok.AccessToken,
		}
		return []option.ClientOption{option.WithTokenSource(ts)}, nil
	}

	if credentialsFile != "" {
		return []option.ClientOption{
			option.WithCredentialsFile(credentialsFile),
			option.WithScopes(gsheets.SpreadsheetsScope),
		}, nil
	}

	return []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}, nil
}

func readToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token %s: %w", path, err)
	}
	return &tok, nil
}

func writeToken(path string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// persistingTokenSource saves the token whenever the underlying source refreshes it.
type persistingTokenSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := writeToken(s.path, tok); err != nil {
			return nil, fmt.Errorf("save refreshed token: %w", err)
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}
