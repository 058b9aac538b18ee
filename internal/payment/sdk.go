package payment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// ScriptLoader fetches the provider's checkout script asset once per process.
// A script already loaded is not fetched again.
type ScriptLoader struct {
	url    string
	client *http.Client

	mu     sync.Mutex
	loaded bool
}

func NewScriptLoader(url string, client *http.Client) *ScriptLoader {
	return &ScriptLoader{url: url, client: client}
}

func (l *ScriptLoader) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return fmt.Errorf("build sdk request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch checkout sdk: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("checkout sdk returned status %d", resp.StatusCode)
	}

	l.loaded = true
	return nil
}
