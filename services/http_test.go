package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTitleGeneratorPostsAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "extracted text", req["extracted_text"])
		_ = json.NewEncoder(w).Encode(map[string]string{"title": "A Generated Title"})
	}))
	defer srv.Close()

	gen := HTTPTitleGenerator{BaseURL: srv.URL}
	title, err := gen.GenerateTitle(context.Background(), "", "extracted text")

	require.NoError(t, err)
	assert.Equal(t, "A Generated Title", title)
}

func TestHTTPAutotaggerDecodesBase64Fields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"tagged_pdf_base64": base64.StdEncoding.EncodeToString([]byte("tagged")),
			"report_base64":     base64.StdEncoding.EncodeToString([]byte("report")),
		})
	}))
	defer srv.Close()

	tagger := HTTPAutotagger{BaseURL: srv.URL}
	tagged, report, err := tagger.AutotagPdf(context.Background(), []byte("input"))

	require.NoError(t, err)
	assert.Equal(t, "tagged", string(tagged))
	assert.Equal(t, "report", string(report))
}

func TestHTTPClientSurfacesNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	_, err := HTTPImageAltTextGenerator{BaseURL: srv.URL}.GenerateAltTextForImage(context.Background(), nil, "image/png", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
