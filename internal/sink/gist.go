package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rbenali/matchmirror/internal/match"
)

const (
	gistAPIURL   = "https://api.github.com/gists"
	gistFilename = "matches.json"
	gistTimeout  = 15 * time.Second
)

// GistSink publishes the snapshot into a single file inside a GitHub Gist.
// Every batch commit becomes one gist revision, so the store keeps a version
// history of the mirror for free.
type GistSink struct {
	gistID     string
	token      string
	apiURL     string
	httpClient *http.Client
}

// NewGistSink creates a gist sink. Both the gist ID and a token with gist
// scope are required.
func NewGistSink(gistID, token string) (*GistSink, error) {
	if gistID == "" {
		return nil, fmt.Errorf("gist ID is required")
	}
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}
	return &GistSink{
		gistID: gistID,
		token:  token,
		apiURL: gistAPIURL,
		httpClient: &http.Client{
			Timeout: gistTimeout,
		},
	}, nil
}

// Upsert merges the snapshot into the gist document and PATCHes it back in
// batch-sized commits.
func (g *GistSink) Upsert(ctx context.Context, snap match.Snapshot) error {
	docs, err := g.load(ctx)
	if err != nil {
		return err
	}

	return commitBatches(snap, BatchLimit, func(batch []match.Record) error {
		for _, r := range batch {
			docs[r.ID] = r
		}
		return g.save(ctx, docs)
	})
}

// Purge replaces the gist document with an empty collection.
func (g *GistSink) Purge(ctx context.Context) (int, error) {
	docs, err := g.load(ctx)
	if err != nil {
		return 0, err
	}
	deleted := len(docs)

	if err := g.save(ctx, map[string]match.Record{}); err != nil {
		return 0, err
	}
	return deleted, nil
}

func (g *GistSink) load(ctx context.Context) (map[string]match.Record, error) {
	url := fmt.Sprintf("%s/%s", g.apiURL, g.gistID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	g.setHeaders(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API error (status %d)", resp.StatusCode)
	}

	var gistResp struct {
		Files map[string]struct {
			Content string `json:"content"`
		} `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gistResp); err != nil {
		return nil, fmt.Errorf("decoding gist response: %w", err)
	}

	docs := make(map[string]match.Record)
	file, exists := gistResp.Files[gistFilename]
	if !exists {
		return docs, nil
	}
	if err := json.Unmarshal([]byte(file.Content), &docs); err != nil {
		return nil, fmt.Errorf("parsing gist content: %w", err)
	}
	return docs, nil
}

func (g *GistSink) save(ctx context.Context, docs map[string]match.Record) error {
	content, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling matches: %w", err)
	}

	payload := map[string]interface{}{
		"files": map[string]interface{}{
			gistFilename: map[string]string{
				"content": string(content),
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s", g.apiURL, g.gistID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	g.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("updating gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Response body is deliberately not included to avoid leaking
		// repository details into logs and alerts.
		return fmt.Errorf("GitHub API error (status %d)", resp.StatusCode)
	}
	return nil
}

func (g *GistSink) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("token %s", g.token))
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}
