package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "chart-advisor/internal/errors"
	"chart-advisor/internal/logging"
	"chart-advisor/internal/models"
)

// credentialNotFoundMarker appears in the API error body when a key has been
// revoked or never existed. Callers treat it as a signal to re-authenticate.
const credentialNotFoundMarker = "Requested entity was not found"

// Options configures the Gemini client.
type Options struct {
	APIKey      string
	BaseURL     string
	ChartModel  string
	ChatModel   string
	SpeechModel string
	VoiceName   string
	Timeout     time.Duration
}

// Client calls the Gemini REST API. It implements ChartModel, ChatModel
// and SpeechModel.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	chartModel  string
	chatModel   string
	speechModel string
	voiceName   string
	logger      zerolog.Logger
}

// NewClient creates a new Gemini API client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if opts.ChartModel == "" {
		opts.ChartModel = "gemini-2.5-flash"
	}
	if opts.ChatModel == "" {
		opts.ChatModel = "gemini-2.5-flash"
	}
	if opts.SpeechModel == "" {
		opts.SpeechModel = "gemini-2.5-flash-preview-tts"
	}
	if opts.VoiceName == "" {
		opts.VoiceName = "Charon"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}

	return &Client{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		chartModel:  opts.ChartModel,
		chatModel:   opts.ChatModel,
		speechModel: opts.SpeechModel,
		voiceName:   opts.VoiceName,
		logger:      logger.With().Str("component", "gemini").Logger(),
	}
}

// AnalyzeChart sends a chart image for structured technical analysis.
func (c *Client) AnalyzeChart(ctx context.Context, image []byte, mimeType, question string) (*models.AnalysisResult, error) {
	if len(image) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidImage, "empty image")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	parts := []part{
		{InlineData: &inlineData{
			MIMEType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(image),
		}},
	}
	if question != "" {
		parts = append(parts, part{Text: chartQuestionPreamble + question})
	}

	req := &generateRequest{
		Contents: []content{{Role: "user", Parts: parts}},
		SystemInstruction: &content{
			Parts: []part{{Text: chartSystemInstruction}},
		},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   analysisSchema(),
			ThinkingConfig:   &thinkingConfig{ThinkingBudget: 0},
		},
	}

	text, err := c.generateText(ctx, c.chartModel, req)
	if err != nil {
		return nil, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMalformedResponse, "decoding analysis JSON")
	}
	if err := result.Validate(); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedResponse, "invalid analysis: %v", err)
	}

	c.logger.Debug().
		Str("symbol", result.Symbol).
		Str("recommendation", string(result.Recommendation)).
		Float64("confidence", result.Confidence).
		Msg("Chart analysis received")

	return &result, nil
}

// Reply returns a conversational response in the requested dialect persona.
func (c *Client) Reply(ctx context.Context, history []Turn, utterance, dialect string) (string, error) {
	instruction, ok := dialectInstructions[dialect]
	if !ok {
		return "", apperrors.NewValidationError("dialect", dialect, "unsupported dialect")
	}

	contents := make([]content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, content{
			Role:  turn.Role,
			Parts: []part{{Text: turn.Text}},
		})
	}
	contents = append(contents, content{Role: "user", Parts: []part{{Text: utterance}}})

	req := &generateRequest{
		Contents: contents,
		SystemInstruction: &content{
			Parts: []part{{Text: instruction}},
		},
		GenerationConfig: &generationConfig{
			ThinkingConfig: &thinkingConfig{ThinkingBudget: 0},
		},
	}

	text, err := c.generateText(ctx, c.chatModel, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Synthesize returns single-channel 16-bit PCM audio at 24kHz for the text.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	req := &generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: text}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: c.voiceName},
				},
			},
		},
	}

	resp, err := c.generate(ctx, c.speechModel, req)
	if err != nil {
		return nil, err
	}

	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				audio, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
				if err != nil {
					return nil, apperrors.Wrap(apperrors.ErrMalformedResponse, "decoding audio payload")
				}
				return audio, nil
			}
		}
	}
	return nil, apperrors.Wrap(apperrors.ErrMalformedResponse, "no audio in response")
}

// generateText calls generateContent and extracts the first text part.
func (c *Client) generateText(ctx context.Context, model string, req *generateRequest) (string, error) {
	resp, err := c.generate(ctx, model, req)
	if err != nil {
		return "", err
	}

	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text, nil
			}
		}
	}
	return "", apperrors.Wrap(apperrors.ErrMalformedResponse, "no text in response")
}

func (c *Client) generate(ctx context.Context, model string, req *generateRequest) (*generateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Wrap(err, "encoding request")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, "building request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.Wrap(apperrors.ErrServiceUnavailable, err.Error())
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 16<<20))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrServiceUnavailable, "reading response")
	}

	if httpResp.StatusCode != http.StatusOK {
		apiErr := mapAPIError(httpResp.StatusCode, respBody)
		logging.LogAPICall(c.logger, model, httpResp.StatusCode, time.Since(start), apiErr)
		return nil, apiErr
	}
	logging.LogAPICall(c.logger, model, httpResp.StatusCode, time.Since(start), nil)

	var resp generateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMalformedResponse, "decoding response")
	}
	if resp.Error != nil {
		return nil, mapAPIError(resp.Error.Code, respBody)
	}
	if len(resp.Candidates) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrMalformedResponse, "no candidates in response")
	}
	return &resp, nil
}

// mapAPIError translates an API failure into the error taxonomy. Rate limits
// and overload are transient; credential and request errors are permanent.
func mapAPIError(status int, body []byte) error {
	message := string(body)
	var wrapper struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Error != nil {
		message = wrapper.Error.Message
	}

	if strings.Contains(message, credentialNotFoundMarker) {
		return apperrors.Wrap(apperrors.ErrCredentialNotFound, message)
	}

	switch status {
	case http.StatusTooManyRequests:
		return apperrors.Wrap(apperrors.ErrRateLimited, message)
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return apperrors.Wrap(apperrors.ErrServiceUnavailable, message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.Wrap(apperrors.ErrCredentialNotFound, message)
	default:
		return fmt.Errorf("api error (status %d): %s", status, message)
	}
}
