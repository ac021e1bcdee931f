package transport

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload = "Div,Date,HomeTeam,AwayTeam,FTHG,FTAG,FTR\nE0,11/08/2023,Burnley,Man City,0,3,A\n"

func compressed(t *testing.T, encoding string) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch encoding {
	case "gzip":
		w := gzip.NewWriter(&buf)
		w.Write([]byte(payload))
		require.NoError(t, w.Close())
	case "deflate":
		w, err := flate.NewWriter(&buf, flate.DefaultCompression)
		require.NoError(t, err)
		w.Write([]byte(payload))
		require.NoError(t, w.Close())
	case "br":
		w := brotli.NewWriter(&buf)
		w.Write([]byte(payload))
		require.NoError(t, w.Close())
	default:
		buf.WriteString(payload)
	}
	return buf.Bytes()
}

func TestGetDecodesContentEncoding(t *testing.T) {
	for _, encoding := range []string{"", "identity", "gzip", "deflate", "br"} {
		t.Run("encoding "+encoding, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "gzip, deflate, br", r.Header.Get("Accept-Encoding"))
				assert.NotEmpty(t, r.Header.Get("User-Agent"))
				if encoding != "" {
					w.Header().Set("Content-Encoding", encoding)
				}
				w.Write(compressed(t, encoding))
			}))
			defer srv.Close()

			body, err := Get(context.Background(), srv.Client(), srv.URL+"/E0.csv")
			require.NoError(t, err)
			assert.Equal(t, payload, string(body))
		})
	}
}

func TestGetStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	_, err := Get(context.Background(), srv.Client(), srv.URL)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusGone, se.StatusCode)
	assert.Contains(t, err.Error(), "410")
}

func TestGetHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Get(ctx, srv.Client(), srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetCustomHTTPClientIsShared(t *testing.T) {
	t.Setenv(CABundleEnv, "")
	assert.Same(t, GetCustomHTTPClient(), GetCustomHTTPClient())
}
