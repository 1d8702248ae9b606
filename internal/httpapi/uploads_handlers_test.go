package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricescout-engine/internal/domain"
)

func multipartImages(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for i, name := range names {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fmt.Fprintf(fw, "image-bytes-%d", i)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestUploadManyFilesKeepsDistinctNames(t *testing.T) {
	d := testDeps(t)
	mux := NewMux(d)
	item := createItem(t, mux, "dresser")

	body, ctype := multipartImages(t,
		"a.png", "b.png", "c.png", "d.png", "e.png")
	req := httptest.NewRequest(http.MethodPost,
		"/items/"+itoa(item.ID)+"/images", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Paths []string `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Paths, 5)

	seen := map[string]bool{}
	for _, p := range resp.Paths {
		seen[p] = true
	}
	assert.Len(t, seen, 5)

	// every recorded path has a matching file on disk
	entries, err := os.ReadDir(d.UploadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+itoa(item.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.ImagePaths, 5)
}

func TestUploadRejectsBadExtension(t *testing.T) {
	d := testDeps(t)
	mux := NewMux(d)
	item := createItem(t, mux, "dresser")

	body, ctype := multipartImages(t, "notes.txt")
	req := httptest.NewRequest(http.MethodPost,
		"/items/"+itoa(item.ID)+"/images", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadItemNotFound(t *testing.T) {
	mux := NewMux(testDeps(t))

	body, ctype := multipartImages(t, "a.png")
	req := httptest.NewRequest(http.MethodPost, "/items/999/images", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
