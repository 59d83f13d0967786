// Package generation is the HTTP client for the LangChain/FastAPI
// generation backend. One POST per remote conversation state, plus the
// PDF embedding side channel and a reachability ping.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-booktutor-be/pkg/chat/explain"

	"github.com/patrickmn/go-cache"
)

const (
	pathGenerateQuestion           = "/generating-question"
	pathGenerateAdditionalQuestion = "/generating-additional-question"
	pathEvaluateAnswer             = "/evaluating/answer"
	pathExplanation                = "/explanation"
	pathPageSearch                 = "/processing-page-search-result"
	pathPdfUpload                  = "/pdf-upload"
	pathPing                       = "/ping"

	pingCacheKey = "ping"
	pingCacheTTL = 30 * time.Second
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	pingCache  *cache.Cache
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		pingCache:  cache.New(pingCacheTTL, time.Minute),
	}
}

// QuestionRequest asks the backend to generate a practice question over
// the book's embedded pages.
type QuestionRequest struct {
	UserId   string `json:"userId"`
	BookId   string `json:"bookId"`
	Criteria string `json:"criteria"`
	Context  string `json:"context"`
}

// QuestionResponse is the structured question-generation shape; the
// orchestrator persists it as the conversation's question record.
type QuestionResponse struct {
	Domain        string `json:"domain"`
	Concept       string `json:"concept"`
	ProblemText   string `json:"problem_text"`
	CorrectAnswer string `json:"correct_answer"`
}

type EvaluationRequest struct {
	UserId        string `json:"userId"`
	BookId        string `json:"bookId"`
	ProblemText   string `json:"problem_text"`
	CorrectAnswer string `json:"correct_answer"`
	UserAnswer    string `json:"user_answer"`
}

type ExplanationRequest struct {
	UserId  string           `json:"userId"`
	BookId  string           `json:"bookId"`
	Concept string           `json:"concept"`
	Detail  *explain.Request `json:"detail"`
}

type PageSearchRequest struct {
	UserId  string `json:"userId"`
	BookId  string `json:"bookId"`
	Keyword string `json:"keyword"`
}

type PdfUploadRequest struct {
	PdfBase64 string `json:"pdf_base64"`
	BookId    string `json:"bookId"`
	UserId    string `json:"userId"`
}

type PdfUploadResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ChunksCreated int    `json:"chunks_created"`
}

// aiMessage is the plain text/AI-message response shape shared by the
// evaluation, explanation and page-search paths.
type aiMessage struct {
	Message string `json:"message"`
}

func (c *Client) GenerateQuestion(ctx context.Context, req QuestionRequest) (*QuestionResponse, error) {
	var resp QuestionResponse
	if err := c.post(ctx, pathGenerateQuestion, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GenerateAdditionalQuestion(ctx context.Context, req QuestionRequest) (*QuestionResponse, error) {
	var resp QuestionResponse
	if err := c.post(ctx, pathGenerateAdditionalQuestion, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) EvaluateAnswer(ctx context.Context, req EvaluationRequest) (string, error) {
	return c.postForText(ctx, pathEvaluateAnswer, req)
}

// ExplainConcept serves both the first explanation and re-explanations;
// the backend differentiates on the attempts carried in the detail.
func (c *Client) ExplainConcept(ctx context.Context, req ExplanationRequest) (string, error) {
	return c.postForText(ctx, pathExplanation, req)
}

func (c *Client) SearchPages(ctx context.Context, req PageSearchRequest) (string, error) {
	return c.postForText(ctx, pathPageSearch, req)
}

// UploadPdf pushes a base64 PDF to the backend for chunking and
// embedding.
func (c *Client) UploadPdf(ctx context.Context, req PdfUploadRequest) (*PdfUploadResponse, error) {
	var resp PdfUploadResponse
	if err := c.post(ctx, pathPdfUpload, req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("pdf upload rejected by generation backend: %s", resp.Message)
	}
	return &resp, nil
}

// Ping reports backend reachability. Results are cached briefly so the
// health endpoint doesn't hammer the backend.
func (c *Client) Ping(ctx context.Context) bool {
	if v, ok := c.pingCache.Get(pingCacheKey); ok {
		return v.(bool)
	}

	alive := c.ping(ctx)
	c.pingCache.Set(pingCacheKey, alive, cache.DefaultExpiration)
	return alive
}

func (c *Client) ping(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathPing, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// postForText posts and decodes the AI-message shape, tolerating plain
// text bodies from older backend revisions.
func (c *Client) postForText(ctx context.Context, path string, payload interface{}) (string, error) {
	body, err := c.postRaw(ctx, path, payload)
	if err != nil {
		return "", err
	}

	var msg aiMessage
	if err := json.Unmarshal(body, &msg); err == nil && msg.Message != "" {
		return msg.Message, nil
	}
	return strings.TrimSpace(string(body)), nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := c.postRaw(ctx, path, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) postRaw(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation backend unreachable at %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("generation backend returned %d for %s", resp.StatusCode, path)
	}
	return body, nil
}
