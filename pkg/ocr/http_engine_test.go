package ocr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPEngine_Recognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recognize", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "deu", r.FormValue("language"))

		f, _, err := r.FormFile("image")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "img", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"hallo welt","confidence":0.91}`))
	}))
	defer srv.Close()

	res, err := NewHTTPEngine(srv.URL).Recognize(context.Background(), []byte("img"), "deu")
	require.NoError(t, err)
	assert.Equal(t, "hallo welt", res.Text)
	assert.Equal(t, 0.91, res.Confidence)
	assert.Equal(t, "deu", res.Language)
}

func TestHTTPEngine_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPEngine(srv.URL).Recognize(context.Background(), []byte("img"), "eng")
	assert.ErrorContains(t, err, "502")
}

func TestHTTPEngine_NotConfigured(t *testing.T) {
	_, err := NewHTTPEngine("").Recognize(context.Background(), nil, "eng")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = DisabledEngine{}.Recognize(context.Background(), nil, "eng")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
