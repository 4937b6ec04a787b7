package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// RawPlugin is a plugin feed entry before validation. Fields that were not
// strings in the feed are left empty.
type RawPlugin struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Site    string `json:"site"`
	IconURL string `json:"iconUrl"`
	Lang    string `json:"lang"`
	Version string `json:"version"`
}

// Source is implemented by every plugin repository we can read from.
type Source interface {
	Name() string
	FetchAll(ctx context.Context) ([]RawPlugin, error)
}

// FeedSource reads a plugin repository published as a JSON array over HTTP,
// e.g. the official plugins.min.json.
type FeedSource struct {
	URL    string
	Client *http.Client
}

func NewFeedSource(url string) *FeedSource {
	return &FeedSource{
		URL:    url,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *FeedSource) Name() string { return s.URL }

func (s *FeedSource) FetchAll(ctx context.Context) ([]RawPlugin, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("plugin feed: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("plugin feed: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unable to load plugins (%d)", resp.StatusCode)
	}

	plugins, err := decodeFeed(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("plugin feed: %w", err)
	}
	return plugins, nil
}

// FileSource reads a plugin repository snapshot from disk.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return s.Path }

func (s *FileSource) FetchAll(ctx context.Context) ([]RawPlugin, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("plugin file: %w", err)
	}
	defer f.Close()

	plugins, err := decodeFeed(f)
	if err != nil {
		return nil, fmt.Errorf("plugin file %s: %w", s.Path, err)
	}
	return plugins, nil
}

// SourceFor picks a FeedSource for http(s) locations and a FileSource otherwise.
func SourceFor(location string) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewFeedSource(location)
	}
	return &FileSource{Path: location}
}

// decodeFeed accepts a JSON array and keeps only the string-typed fields of
// each object. Elements that are not objects are skipped.
func decodeFeed(r io.Reader) ([]RawPlugin, error) {
	var entries []json.RawMessage
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	out := make([]RawPlugin, 0, len(entries))
	for _, e := range entries {
		var obj map[string]any
		if err := json.Unmarshal(e, &obj); err != nil || obj == nil {
			continue
		}
		out = append(out, RawPlugin{
			ID:      stringField(obj, "id"),
			Name:    stringField(obj, "name"),
			Site:    stringField(obj, "site"),
			IconURL: stringField(obj, "iconUrl"),
			Lang:    stringField(obj, "lang"),
			Version: stringField(obj, "version"),
		})
	}
	return out, nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}
