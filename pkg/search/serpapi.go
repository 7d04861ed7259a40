package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// SerpAPIService calls the SerpAPI REST endpoint.
type SerpAPIService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSerpAPIService(apiKey string) *SerpAPIService {
	return &SerpAPIService{
		apiKey:  apiKey,
		baseURL: "https://serpapi.com/search.json",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// serpAPIResponse covers the engines we query. News engines return
// news_results; general web search returns organic_results.
type serpAPIResponse struct {
	NewsResults []struct {
		Title  string `json:"title"`
		Link   string `json:"link"`
		Date   string `json:"date"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Snippet string `json:"snippet"`
	} `json:"news_results"`
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Date    string `json:"date"`
		Source  string `json:"source"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

func (s *SerpAPIService) Run(ctx context.Context, engine, query string, params map[string]string) (*Result, error) {
	values := url.Values{}
	values.Set("engine", engine)
	values.Set("q", query)
	values.Set("api_key", s.apiKey)
	for k, v := range params {
		values.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed serpAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse serpapi response: %w", err)
	}

	result := &Result{Raw: json.RawMessage(body)}
	for _, r := range parsed.NewsResults {
		result.Items = append(result.Items, Item{
			Title:   r.Title,
			Link:    r.Link,
			Source:  r.Source.Name,
			Date:    r.Date,
			Snippet: r.Snippet,
		})
	}
	for _, r := range parsed.OrganicResults {
		result.Items = append(result.Items, Item{
			Title:   r.Title,
			Link:    r.Link,
			Source:  r.Source,
			Date:    r.Date,
			Snippet: r.Snippet,
		})
	}
	return result, nil
}
