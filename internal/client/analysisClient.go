package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/z5702god/resume-backend/internal/config"
)

// AnalysisClient forwards a resume to the analysis webhook and returns its
// raw verdict.
type AnalysisClient interface {
	Analyze(ctx context.Context, req *AnalyzeRequest) (string, error)
}

type AnalyzeRequest struct {
	UserID              string
	JobResponsibilities string
	JobRequirements     string
	FileName            string
	ContentType         string
	File                []byte
}

// UpstreamError carries a non-2xx answer from the analysis service.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("analysis upstream error %d: %s", e.StatusCode, e.Body)
}

type analysisClientImpl struct {
	httpClient *http.Client
	webhookURL string
	maxRetries uint64
}

func NewAnalysisClient(cfg *config.Analysis) AnalysisClient {
	return &analysisClientImpl{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		webhookURL: cfg.WebhookURL,
		maxRetries: cfg.MaxRetries,
	}
}

func (c *analysisClientImpl) Analyze(ctx context.Context, req *AnalyzeRequest) (string, error) {
	body, contentType, err := encodeAnalyzeForm(req)
	if err != nil {
		return "", fmt.Errorf("encode analyze form: %w", err)
	}

	var result string
	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("http new request: %w", err))
		}
		httpReq.Header.Set("Content-Type", contentType)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return fmt.Errorf("http client do: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read analysis response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			upstreamErr := &UpstreamError{StatusCode: resp.StatusCode, Body: string(respBody)}
			if resp.StatusCode >= 500 {
				return upstreamErr
			}
			return backoff.Permanent(upstreamErr)
		}

		result = string(respBody)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	err = backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx))
	if err != nil {
		var upstreamErr *UpstreamError
		if errors.As(err, &upstreamErr) {
			return "", upstreamErr
		}
		return "", fmt.Errorf("call analysis webhook: %w", err)
	}

	return result, nil
}

func encodeAnalyzeForm(req *AnalyzeRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"userId", req.UserID},
		{"jobResponsibilities", req.JobResponsibilities},
		{"jobRequirements", req.JobRequirements},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="resume"; filename=%q`, req.FileName))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.File); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
