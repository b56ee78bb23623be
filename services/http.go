package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// httpClient is satisfied by *http.Client; tests may inject a fake
// RoundTripper-backed client without pulling in a mocking library.
type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func defaultClient(c *http.Client) httpClient {
	if c != nil {
		return c
	}
	return http.DefaultClient
}

func postJSON(ctx context.Context, client httpClient, url string, reqBody, respBody interface{}) error {
	b, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s returned status %d: %s", url, resp.StatusCode, body)
	}
	if respBody == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(respBody)
}

// HTTPAutotagger calls a vendor autotagging endpoint that accepts a
// base64-encoded PDF and returns the tagged PDF plus a report, both
// base64-encoded.
type HTTPAutotagger struct {
	BaseURL string
	Client  *http.Client
}

func (a HTTPAutotagger) AutotagPdf(ctx context.Context, input []byte) ([]byte, []byte, error) {
	var resp struct {
		TaggedPDFBase64 string `json:"tagged_pdf_base64"`
		ReportBase64    string `json:"report_base64"`
	}
	err := postJSON(ctx, defaultClient(a.Client), a.BaseURL+"/autotag",
		map[string]string{"pdf_base64": base64.StdEncoding.EncodeToString(input)}, &resp)
	if err != nil {
		return nil, nil, err
	}
	tagged, err := base64.StdEncoding.DecodeString(resp.TaggedPDFBase64)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding tagged pdf: %w", err)
	}
	report, err := base64.StdEncoding.DecodeString(resp.ReportBase64)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding tagging report: %w", err)
	}
	return tagged, report, nil
}

// HTTPChecker calls a vendor accessibility-checking endpoint.
type HTTPChecker struct {
	BaseURL string
	Client  *http.Client
}

func (c HTTPChecker) AccessibilityCheck(ctx context.Context, input []byte, pages *PageRange) ([]byte, string, error) {
	req := map[string]interface{}{"pdf_base64": base64.StdEncoding.EncodeToString(input)}
	if pages != nil {
		req["first_page"] = pages.FirstPage
		req["last_page"] = pages.LastPage
	}
	var resp struct {
		OutputBase64 string          `json:"output_base64"`
		Report       json.RawMessage `json:"report"`
	}
	if err := postJSON(ctx, defaultClient(c.Client), c.BaseURL+"/check", req, &resp); err != nil {
		return nil, "", err
	}
	output, err := base64.StdEncoding.DecodeString(resp.OutputBase64)
	if err != nil {
		return nil, "", fmt.Errorf("decoding checker output: %w", err)
	}
	return output, string(resp.Report), nil
}

// HTTPImageAltTextGenerator calls a vendor vision/alt-text endpoint.
type HTTPImageAltTextGenerator struct {
	BaseURL string
	Client  *http.Client
}

func (g HTTPImageAltTextGenerator) GenerateAltTextForImage(ctx context.Context, imageBytes []byte, mime, contextBefore, contextAfter string) (string, error) {
	req := map[string]string{
		"image_base64":   base64.StdEncoding.EncodeToString(imageBytes),
		"mime":           mime,
		"context_before": contextBefore,
		"context_after":  contextAfter,
	}
	var resp struct {
		AltText string `json:"alt_text"`
	}
	if err := postJSON(ctx, defaultClient(g.Client), g.BaseURL+"/alt-text/image", req, &resp); err != nil {
		return "", err
	}
	return resp.AltText, nil
}

// HTTPLinkAltTextGenerator calls a vendor text-generation endpoint for
// link alt text.
type HTTPLinkAltTextGenerator struct {
	BaseURL string
	Client  *http.Client
}

func (g HTTPLinkAltTextGenerator) GenerateAltTextForLink(ctx context.Context, target *string, linkText, contextBefore, contextAfter string) (string, error) {
	req := map[string]interface{}{
		"link_text":      linkText,
		"context_before": contextBefore,
		"context_after":  contextAfter,
	}
	if target != nil {
		req["target"] = *target
	}
	var resp struct {
		AltText string `json:"alt_text"`
	}
	if err := postJSON(ctx, defaultClient(g.Client), g.BaseURL+"/alt-text/link", req, &resp); err != nil {
		return "", err
	}
	return resp.AltText, nil
}

// HTTPTitleGenerator calls a vendor text-generation endpoint for titles.
type HTTPTitleGenerator struct {
	BaseURL string
	Client  *http.Client
}

func (g HTTPTitleGenerator) GenerateTitle(ctx context.Context, currentTitle, extractedText string) (string, error) {
	req := map[string]string{"current_title": currentTitle, "extracted_text": extractedText}
	var resp struct {
		Title string `json:"title"`
	}
	if err := postJSON(ctx, defaultClient(g.Client), g.BaseURL+"/title", req, &resp); err != nil {
		return "", err
	}
	return resp.Title, nil
}

// HTTPRasterizer calls a vendor rasterization endpoint. RasterizeDocument
// uploads the document once and gets back a handle id; RenderPage fetches
// one page's raw BGRA32 bitmap per call.
type HTTPRasterizer struct {
	BaseURL string
	Client  *http.Client
}

func (r HTTPRasterizer) RasterizeDocument(ctx context.Context, input []byte, dpi int) (RasterHandle, error) {
	req := map[string]interface{}{"pdf_base64": base64.StdEncoding.EncodeToString(input), "dpi": dpi}
	var resp struct {
		HandleID string `json:"handle_id"`
	}
	if err := postJSON(ctx, defaultClient(r.Client), r.BaseURL+"/rasterize", req, &resp); err != nil {
		return nil, err
	}
	return &httpRasterHandle{baseURL: r.BaseURL, client: defaultClient(r.Client), handleID: resp.HandleID}, nil
}

type httpRasterHandle struct {
	baseURL  string
	client   httpClient
	handleID string
}

func (h *httpRasterHandle) RenderPage(ctx context.Context, pageNum int) (Bitmap, error) {
	var resp struct {
		W, H      int
		BGRA32B64 string `json:"bgra32_base64"`
	}
	req := map[string]interface{}{"handle_id": h.handleID, "page": pageNum}
	if err := postJSON(ctx, h.client, h.baseURL+"/rasterize/page", req, &resp); err != nil {
		return Bitmap{}, err
	}
	bgra, err := base64.StdEncoding.DecodeString(resp.BGRA32B64)
	if err != nil {
		return Bitmap{}, fmt.Errorf("decoding bitmap: %w", err)
	}
	return Bitmap{W: resp.W, H: resp.H, BGRA32: bgra}, nil
}

func (h *httpRasterHandle) Close() error {
	return postJSON(context.Background(), h.client, h.baseURL+"/rasterize/close",
		map[string]string{"handle_id": h.handleID}, nil)
}
