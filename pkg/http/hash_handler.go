package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/buildbarn/bb-ed2k/pkg/buffer"
	"github.com/buildbarn/bb-ed2k/pkg/digest"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"google.golang.org/grpc/status"
)

// Upper bound on the size of a link submitted for verification. This
// leaves room for the part hashes of files far larger than the ones
// permitted by the hashing endpoint.
const maximumLinkSizeBytes = 1 << 20

var (
	hashHandlerPrometheusMetrics sync.Once

	hashHandlerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bb_ed2k",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Number of HTTP requests processed by the hashing service.",
		},
		[]string{"handler", "code", "method"})
)

type hashHandler struct {
	logger                  log.FieldLogger
	blockDigest             digest.BlockDigestFunc
	readChunkSizeBytes      int
	maximumRequestSizeBytes int64
}

// NewHashHandler registers the endpoints of the hashing service on a
// router. PUT requests against /ed2k/{name} compute the ed2k link of
// the request body. POST requests against /ed2k/verify check whether
// the ed2k link in the request body is well formed.
func NewHashHandler(router *mux.Router, logger log.FieldLogger, blockDigest digest.BlockDigestFunc, readChunkSizeBytes int, maximumRequestSizeBytes int64) {
	hashHandlerPrometheusMetrics.Do(func() {
		prometheus.MustRegister(hashHandlerRequestsTotal)
	})

	h := &hashHandler{
		logger:                  logger.WithField("component", "api"),
		blockDigest:             blockDigest,
		readChunkSizeBytes:      readChunkSizeBytes,
		maximumRequestSizeBytes: maximumRequestSizeBytes,
	}
	router.Handle("/ed2k/verify", instrument("verify", h.verify)).Methods(http.MethodPost)
	router.Handle("/ed2k/{name}", instrument("hash", h.hash)).Methods(http.MethodPut)
}

// NewMetricsHandler registers the Prometheus metrics endpoint on a
// router.
func NewMetricsHandler(router *mux.Router) {
	router.Handle("/metrics", promhttp.Handler())
}

func instrument(handler string, f http.HandlerFunc) http.Handler {
	return promhttp.InstrumentHandlerCounter(
		hashHandlerRequestsTotal.MustCurryWith(prometheus.Labels{"handler": handler}),
		f)
}

// newRequestLogger attaches a unique identifier to every request, so
// that log entries belonging to the same request can be correlated.
// The identifier is also returned to the client.
func newRequestLogger(logger log.FieldLogger, w http.ResponseWriter, r *http.Request) log.FieldLogger {
	requestID := uuid.New().String()
	w.Header().Set("X-Request-Id", requestID)
	return logger.WithFields(log.Fields{
		"method":    r.Method,
		"url":       r.URL.String(),
		"requestID": requestID,
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

type hashResponse struct {
	Link       string   `json:"link"`
	Hash       string   `json:"hash"`
	SizeBytes  int64    `json:"sizeBytes"`
	PartHashes []string `json:"partHashes"`
}

type verifyResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func writeResponseAsJSON(logger log.FieldLogger, w http.ResponseWriter, code int, resp interface{}) {
	enc, err := json.Marshal(resp)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal HTTP response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(enc); err != nil {
		logger.WithError(err).Error("Failed to write HTTP response")
	}
}

// writeReadError converts errors returned while reading a request body
// to an HTTP response.
func writeReadError(logger log.FieldLogger, w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		logger.WithField("limit", maxBytesErr.Limit).Warn("Request body too large")
		writeResponseAsJSON(logger, w, http.StatusRequestEntityTooLarge, errorResponse{
			Error: "Request body exceeds the maximum size",
		})
		return
	}
	logger.WithError(err).Warn("Failed to read request body")
	writeResponseAsJSON(logger, w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (h *hashHandler) hash(w http.ResponseWriter, r *http.Request) {
	logger := newRequestLogger(h.logger, w, r)
	name := mux.Vars(r)["name"]

	g := digest.NewGenerator(h.blockDigest)
	if err := buffer.IntoWriter(
		buffer.NewChunkReaderFromReader(
			http.MaxBytesReader(w, r.Body, h.maximumRequestSizeBytes),
			buffer.ChunkSizeAtMost(h.readChunkSizeBytes)),
		g,
	); err != nil {
		writeReadError(logger, w, err)
		return
	}

	d := g.Sum()
	hashset := g.GetHashset()
	partHashes := make([]string, 0, len(hashset))
	for _, partHash := range hashset {
		partHashes = append(partHashes, partHash.String())
	}
	link := digest.NewFileLink(name, d, hashset)
	logger.WithFields(log.Fields{
		"digest": d.String(),
		"parts":  len(hashset),
	}).Info("Computed ed2k link")
	writeResponseAsJSON(logger, w, http.StatusOK, hashResponse{
		Link:       link.String(),
		Hash:       d.GetHashString(),
		SizeBytes:  d.GetSizeBytes(),
		PartHashes: partHashes,
	})
}

func (h *hashHandler) verify(w http.ResponseWriter, r *http.Request) {
	logger := newRequestLogger(h.logger, w, r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maximumLinkSizeBytes))
	if err != nil {
		writeReadError(logger, w, err)
		return
	}

	if err := h.verifyLink(strings.TrimSpace(string(body))); err != nil {
		logger.WithError(err).Info("Rejected ed2k link")
		writeResponseAsJSON(logger, w, http.StatusOK, verifyResponse{
			Error: status.Convert(err).Message(),
		})
		return
	}
	writeResponseAsJSON(logger, w, http.StatusOK, verifyResponse{Valid: true})
}

// verifyLink checks the syntax of a link. If the link contains part
// hashes, these must be consistent with the file hash.
func (h *hashHandler) verifyLink(s string) error {
	link, err := digest.ParseFileLink(s)
	if err != nil {
		return err
	}
	parts := link.PartHashes
	if len(parts) == 0 {
		if link.Digest.GetPartCount() > 1 {
			// Nothing to cross-check against.
			return nil
		}
		parts = []digest.BlockDigest{link.Digest.GetHashBytes()}
	}
	_, err = digest.NewHashset(link.Digest, parts, h.blockDigest)
	return err
}
