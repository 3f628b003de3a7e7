package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// HTTPEngine posts page images to an external recognizer at BaseURL/recognize.
type HTTPEngine struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPEngine(baseURL string) *HTTPEngine {
	return &HTTPEngine{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type recognizeResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

func (e *HTTPEngine) Recognize(ctx context.Context, image []byte, language string) (*Result, error) {
	if e.BaseURL == "" {
		return nil, ErrNotConfigured
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("language", language); err != nil {
		return nil, err
	}
	part, err := form.CreateFormFile("image", "page.png")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/recognize", e.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	start := time.Now()
	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocr engine error (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	var out recognizeResponse
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		return nil, fmt.Errorf("ocr engine returned invalid json: %w", err)
	}

	return &Result{
		Text:       out.Text,
		Confidence: out.Confidence,
		Language:   language,
		Duration:   time.Since(start),
	}, nil
}
