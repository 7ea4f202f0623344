package http_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/buildbarn/bb-ed2k/pkg/digest"
	bb_http "github.com/buildbarn/bb-ed2k/pkg/http"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type hashResponse struct {
	Link       string   `json:"link"`
	Hash       string   `json:"hash"`
	SizeBytes  int64    `json:"sizeBytes"`
	PartHashes []string `json:"partHashes"`
}

type verifyResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error"`
}

func newTestRouter(maximumRequestSizeBytes int64) (*mux.Router, *test.Hook) {
	logger, hook := test.NewNullLogger()
	router := mux.NewRouter()
	bb_http.NewHashHandler(router, logger, digest.MD4BlockDigest, 4096, maximumRequestSizeBytes)
	bb_http.NewMetricsHandler(router)
	return router, hook
}

func serve(router http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, bytes.NewReader(body)))
	return w
}

func TestHashHandlerHash(t *testing.T) {
	router, hook := newTestRouter(1 << 24)

	t.Run("SinglePart", func(t *testing.T) {
		w := serve(router, http.MethodPut, "/ed2k/digits.txt", []byte("123456789"))
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var resp hashResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, hashResponse{
			Link:       "ed2k://|file|digits.txt|9|2ae523785d0caf4d2fb557c12016185c|/",
			Hash:       "2ae523785d0caf4d2fb557c12016185c",
			SizeBytes:  9,
			PartHashes: []string{"2ae523785d0caf4d2fb557c12016185c"},
		}, resp)

		// The request ID returned to the client is also logged.
		requestID := w.Header().Get("X-Request-Id")
		_, err := uuid.Parse(requestID)
		require.NoError(t, err)
		require.Equal(t, requestID, hook.LastEntry().Data["requestID"])
	})

	t.Run("EscapedName", func(t *testing.T) {
		w := serve(router, http.MethodPut, "/ed2k/my%20file.txt", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp hashResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, "ed2k://|file|my%20file.txt|0|31d6cfe0d16ae931b73c59d7e0c089c0|/", resp.Link)
	})

	t.Run("MultipleParts", func(t *testing.T) {
		data := make([]byte, 10000000)
		data[len(data)-1] = 0x01
		w := serve(router, http.MethodPut, "/ed2k/big.bin", data)
		require.Equal(t, http.StatusOK, w.Code)

		var resp hashResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, "7ab53cd47867f5fe5b031ddec3bc470e", resp.Hash)
		require.Equal(t, int64(10000000), resp.SizeBytes)
		require.Equal(t, []string{
			digest.MD4BlockDigest(data[:digest.ED2KChunkSizeBytes]).String(),
			digest.MD4BlockDigest(data[digest.ED2KChunkSizeBytes:]).String(),
		}, resp.PartHashes)
		require.Equal(
			t,
			"ed2k://|file|big.bin|10000000|7ab53cd47867f5fe5b031ddec3bc470e|p="+strings.Join(resp.PartHashes, ":")+"|/",
			resp.Link)
	})

	t.Run("WrongMethod", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/ed2k/digits.txt", nil)
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestHashHandlerRequestTooLarge(t *testing.T) {
	router, _ := newTestRouter(4)

	w := serve(router, http.MethodPut, "/ed2k/digits.txt", []byte("123456789"))
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.JSONEq(t, `{"error":"Request body exceeds the maximum size"}`, w.Body.String())

	// Bodies up to the limit are accepted.
	w = serve(router, http.MethodPut, "/ed2k/digits.txt", []byte("1234"))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHashHandlerVerify(t *testing.T) {
	router, _ := newTestRouter(1 << 24)

	verify := func(t *testing.T, link string) verifyResponse {
		w := serve(router, http.MethodPost, "/ed2k/verify", []byte(link))
		require.Equal(t, http.StatusOK, w.Code)
		var resp verifyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	t.Run("Valid", func(t *testing.T) {
		require.Equal(
			t,
			verifyResponse{Valid: true},
			verify(t, "ed2k://|file|digits.txt|9|2AE523785D0CAF4D2FB557C12016185C|/\n"))
	})

	t.Run("MultiplePartsWithoutPartHashes", func(t *testing.T) {
		require.Equal(
			t,
			verifyResponse{Valid: true},
			verify(t, "ed2k://|file|big.bin|10000000|7ab53cd47867f5fe5b031ddec3bc470e|/"))
	})

	t.Run("BadSyntax", func(t *testing.T) {
		require.Equal(
			t,
			verifyResponse{Error: "Link does not start with \"ed2k://|file|\""},
			verify(t, "https://example.com/"))
	})

	t.Run("InconsistentHashset", func(t *testing.T) {
		resp := verify(t, "ed2k://|file|big.bin|10000000|7ab53cd47867f5fe5b031ddec3bc470e|p=31d6cfe0d16ae931b73c59d7e0c089c0:31d6cfe0d16ae931b73c59d7e0c089c0|/")
		require.False(t, resp.Valid)
		require.True(t, strings.HasPrefix(resp.Error, "Hashset has checksum "), resp.Error)
	})
}

func TestMetricsHandler(t *testing.T) {
	router, _ := newTestRouter(1 << 24)
	serve(router, http.MethodPut, "/ed2k/digits.txt", []byte("123456789"))

	w := serve(router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "bb_ed2k_http_requests_total")
}
