package sports

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/url"
	"sync"
)

type fakeFetcher struct {
	mu       sync.Mutex
	provider Provider
	items    []json.RawMessage
	err      error
	calls    []string
}

func (f *fakeFetcher) Items(ctx context.Context, path string, query url.Values) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path+"?"+query.Encode())
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeFetcher) Provider() Provider {
	return f.provider
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) lastCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rawItems(docs ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		out[i] = json.RawMessage(d)
	}
	return out
}
