package resumeparser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidResult = errors.New("parser returned an invalid resume document")

// resumeSchema is the subset of the parser's ResumeInfo document this service relies on.
const resumeSchema = `{
  "type": "object",
  "required": ["name", "skills"],
  "properties": {
    "name":           {"type": "string"},
    "email":          {"type": ["string", "null"]},
    "phone_number":   {"type": ["string", "null"]},
    "linkedin":       {"type": ["string", "null"]},
    "github":         {"type": ["string", "null"]},
    "skills":         {"type": "array", "items": {"type": "string"}},
    "experience":     {"type": "string"},
    "certifications": {"type": "array", "items": {"type": "string"}},
    "achievements":   {"type": ["array", "null"], "items": {"type": "string"}},
    "projects":       {"type": "array", "items": {"type": "string"}}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(resumeSchema)

// Client posts resume files to the AI parser service
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Parse uploads the file as multipart field "file" and returns the validated JSON document.
func (c *Client) Parse(ctx context.Context, fileName string, content io.Reader) (json.RawMessage, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copy resume: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("build parser request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call resume parser: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read parser response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resume parser returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	if err := Validate(payload); err != nil {
		return nil, err
	}
	return json.RawMessage(payload), nil
}

// Validate checks a parser document against the resume schema
func Validate(document []byte) error {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidResult, strings.Join(msgs, "; "))
}
