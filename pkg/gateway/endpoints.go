package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"tableflip.dev/memoir/pkg/emotion"
	"tableflip.dev/memoir/pkg/entry"
)

// TokenPair is the JWT pair returned by the token and register endpoints.
// Refresh may be empty on a refresh call that does not rotate.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Analysis is the remote emotion detector's verdict on a piece of text.
type Analysis struct {
	Emotion   emotion.Emotion `json:"emotion"`
	Intensity float64         `json:"intensity"`
}

func (c *Client) call(ctx context.Context, r Request, v interface{}) error {
	out, err := c.Do(ctx, r)
	if err != nil {
		return err
	}
	if err := out.Err(); err != nil {
		return err
	}
	if v == nil || len(bytes.TrimSpace(out.Body)) == 0 {
		return nil
	}
	return out.Decode(v)
}

// ObtainToken exchanges a username and password for a token pair.
func (c *Client) ObtainToken(ctx context.Context, username, password string) (TokenPair, error) {
	var tp TokenPair
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/token/",
		Body:   map[string]string{"username": username, "password": password},
	}, &tp)
	return tp, err
}

// RefreshToken trades a refresh token for a new access token.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (TokenPair, error) {
	var tp TokenPair
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/token/refresh/",
		Body:   map[string]string{"refresh": refresh},
	}, &tp)
	return tp, err
}

// Register creates an account and returns its first token pair.
func (c *Client) Register(ctx context.Context, username, email, password string) (TokenPair, error) {
	var tp TokenPair
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/register/",
		Body: map[string]string{
			"username": username,
			"email":    email,
			"password": password,
		},
	}, &tp)
	return tp, err
}

// ListMemories fetches the user's memories filtered and ordered by query.
func (c *Client) ListMemories(ctx context.Context, query url.Values) ([]entry.Memory, error) {
	out, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/memories/", Query: query})
	if err != nil {
		return nil, err
	}
	if err := out.Err(); err != nil {
		return nil, err
	}
	return decodeList(out)
}

// GetMemory fetches one memory.
func (c *Client) GetMemory(ctx context.Context, id entry.ID) (entry.Memory, error) {
	var m entry.Memory
	err := c.call(ctx, Request{Method: http.MethodGet, Path: memoryPath(id)}, &m)
	return m, err
}

// CreateMemory submits a new memory and returns it as stored by the service.
func (c *Client) CreateMemory(ctx context.Context, d entry.Draft) (entry.Memory, error) {
	var m entry.Memory
	err := c.call(ctx, Request{Method: http.MethodPost, Path: "/memories/", Body: d}, &m)
	return m, err
}

// UpdateMemory applies p to the memory id and returns the updated memory.
func (c *Client) UpdateMemory(ctx context.Context, id entry.ID, p entry.Patch) (entry.Memory, error) {
	var m entry.Memory
	err := c.call(ctx, Request{Method: http.MethodPatch, Path: memoryPath(id), Body: p}, &m)
	return m, err
}

// DeleteMemory removes the memory id.
func (c *Client) DeleteMemory(ctx context.Context, id entry.ID) error {
	return c.call(ctx, Request{Method: http.MethodDelete, Path: memoryPath(id)}, nil)
}

// SemanticSearch asks the service for memories related to q.
func (c *Client) SemanticSearch(ctx context.Context, q string) ([]entry.Memory, error) {
	out, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/memories/semantic_search/",
		Query:  url.Values{"q": []string{q}},
	})
	if err != nil {
		return nil, err
	}
	if err := out.Err(); err != nil {
		return nil, err
	}
	return decodeList(out)
}

// EmotionStats fetches the precomputed per-emotion counts.
func (c *Client) EmotionStats(ctx context.Context) (map[emotion.Emotion]int, error) {
	out, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/memories/emotion_stats/"})
	if err != nil {
		return nil, err
	}
	if err := out.Err(); err != nil {
		return nil, err
	}
	return decodeCounts(out)
}

// AnalyzeEmotion runs the remote detector over text.
func (c *Client) AnalyzeEmotion(ctx context.Context, text string) (Analysis, error) {
	var a Analysis
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/ai/analyze-emotion/",
		Body:   map[string]string{"text": text},
	}, &a)
	return a, err
}

func memoryPath(id entry.ID) string {
	return "/memories/" + url.PathEscape(id.String()) + "/"
}

// decodeList accepts a bare array or a paginated {"results": [...]} envelope.
func decodeList(out Outcome) ([]entry.Memory, error) {
	body := bytes.TrimSpace(out.Body)
	list := []entry.Memory{}
	if len(body) > 0 && body[0] == '[' {
		if err := out.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var page struct {
		Results []entry.Memory `json:"results"`
	}
	if err := out.Decode(&page); err != nil {
		return nil, err
	}
	if page.Results != nil {
		list = page.Results
	}
	return list, nil
}

// decodeCounts accepts {"joy": 3, ...} or the same mapping nested under
// "emotion_counts" or "stats".
func decodeCounts(out Outcome) (map[emotion.Emotion]int, error) {
	var obj map[string]json.RawMessage
	if err := out.Decode(&obj); err != nil {
		return nil, err
	}
	for _, key := range []string{"emotion_counts", "stats"} {
		if raw, ok := obj[key]; ok {
			nested := map[string]json.RawMessage{}
			if json.Unmarshal(raw, &nested) == nil {
				obj = nested
				break
			}
		}
	}
	counts := make(map[emotion.Emotion]int, len(obj))
	for k, raw := range obj {
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			continue
		}
		if n > 0 {
			counts[emotion.Emotion(k)] = int(n)
		}
	}
	return counts, nil
}
