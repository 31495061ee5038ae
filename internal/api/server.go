package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"VoteBridge/internal/attest"
	"VoteBridge/internal/ledger"
	"VoteBridge/internal/logger"
	"VoteBridge/internal/registry"
	"VoteBridge/internal/verifier"
)

const (
	// maxBodySize is the maximum publish request size in bytes.
	maxBodySize = 64 << 10

	// defaultPageSize and maxPageSize bound GET /results.
	defaultPageSize = 100
	maxPageSize     = 1000

	// reasonMalformed is reported for requests that cannot be decoded.
	reasonMalformed = "MalformedRequest"
)

// Publisher verifies proofs and records accepted results.
type Publisher interface {
	Publish(result attest.VoteResult, signatures [][]byte) (verifier.VotingCompleted, error)
	Origin() attest.OriginID
	Registry() *registry.Registry
	RejectsReplays() bool
}

// ResultsReader reads the accepted results log.
type ResultsReader interface {
	Len() uint64
	Get(index uint64) (ledger.Entry, error)
	Range(from uint64, limit int) ([]ledger.Entry, error)
}

// Server is the HTTP API server.
type Server struct {
	addr      string        // addr is the HTTP listen address
	publisher Publisher     // publisher is the quorum verifier
	results   ResultsReader // results is the accepted results log
	mux       *http.ServeMux
	server    *http.Server
}

// New creates a new HTTP API server.
func New(addr string, publisher Publisher, results ResultsReader) *Server {
	s := &Server{
		addr:      addr,
		publisher: publisher,
		results:   results,
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /results", s.handlePublish)
	s.mux.HandleFunc("GET /results", s.handleListResults)
	s.mux.HandleFunc("GET /results/{index}", s.handleGetResult)
	s.mux.HandleFunc("GET /origin", s.handleOrigin)
	s.mux.HandleFunc("GET /signers", s.handleSigners)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /status", s.handleStatus)

	return s
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server in a goroutine.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http api started", "addr", s.addr)

		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// PublishRequest is the body of POST /results.
type PublishRequest struct {
	VoteID       uint32 `json:"voteId"`
	VotesFor     uint32 `json:"votesFor"`
	VotesAgainst uint32 `json:"votesAgainst"`
	Proof        Proof  `json:"proof"`
}

// Proof is a list of hex signatures. It decodes from a JSON array of
// strings or from the bracketed proof string stored on the origin contract.
// Elements are kept undecoded so the verifier classifies bad signatures.
type Proof []string

// UnmarshalJSON implements json.Unmarshaler.
func (p *Proof) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*p = list
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("proof must be an array of hex strings or a proof string")
	}

	elems, err := attest.SplitProof(s)
	if err != nil {
		return err
	}
	*p = elems

	return nil
}

// decodeSignatures hex-decodes every element. An element that is not valid
// hex becomes an empty signature; counts and lengths are left to the verifier.
func (p Proof) decodeSignatures() [][]byte {
	sigs := make([][]byte, len(p))

	for i, s := range p {
		b, err := decodeHex(s)
		if err != nil {
			continue
		}
		sigs[i] = b
	}

	return sigs
}

// handlePublish handles POST /results.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		writeReason(w, http.StatusBadRequest, reasonMalformed, "failed to read body")
		return
	}

	if len(body) > maxBodySize {
		writeReason(w, http.StatusRequestEntityTooLarge, reasonMalformed, "body too large")
		return
	}

	var req PublishRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeReason(w, http.StatusBadRequest, reasonMalformed, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	sigs := req.Proof.decodeSignatures()
	result := attest.VoteResult{VoteID: req.VoteID, VotesFor: req.VotesFor, VotesAgainst: req.VotesAgainst}

	event, err := s.publisher.Publish(result, sigs)
	if err != nil {
		if verifier.IsRejection(err) {
			writeReason(w, http.StatusUnprocessableEntity, verifier.Reason(err), err.Error())
			return
		}

		logger.Error("publish failed", "voteId", result.VoteID, "error", err)
		writeReason(w, http.StatusInternalServerError, verifier.ReasonInternal, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"index":        event.Index,
		"voteId":       event.Result.VoteID,
		"votesFor":     event.Result.VotesFor,
		"votesAgainst": event.Result.VotesAgainst,
	})
}

// EntryView is the JSON form of an accepted result.
type EntryView struct {
	Index        uint64    `json:"index"`
	VoteID       uint32    `json:"voteId"`
	VotesFor     uint32    `json:"votesFor"`
	VotesAgainst uint32    `json:"votesAgainst"`
	Digest       string    `json:"digest"`
	Proof        string    `json:"proof"`
	AcceptedAt   time.Time `json:"acceptedAt"`
}

// newEntryView converts a ledger entry.
func newEntryView(e ledger.Entry) EntryView {
	return EntryView{
		Index:        e.Index,
		VoteID:       e.Result.VoteID,
		VotesFor:     e.Result.VotesFor,
		VotesAgainst: e.Result.VotesAgainst,
		Digest:       e.Digest.Hex(),
		Proof:        attest.FormatProof(e.Proof),
		AcceptedAt:   e.AcceptedAt,
	}
}

// handleListResults handles GET /results?from=&limit=.
func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	from, err := queryUint(r, "from", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit, err := queryUint(r, "limit", defaultPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if limit == 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	entries, err := s.results.Range(from, int(limit))
	if err != nil {
		logger.Error("read results failed", "from", from, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	views := make([]EntryView, len(entries))
	for i, e := range entries {
		views[i] = newEntryView(e)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":   s.results.Len(),
		"results": views,
	})
}

// handleGetResult handles GET /results/{index}.
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(r.PathValue("index"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}

	entry, err := s.results.Get(index)
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no result at index %d", index))
		return
	}
	if err != nil {
		logger.Error("read result failed", "index", index, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, newEntryView(entry))
}

// handleOrigin handles GET /origin.
func (s *Server) handleOrigin(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"origin": s.publisher.Origin().Hex(),
	})
}

// handleSigners handles GET /signers.
func (s *Server) handleSigners(w http.ResponseWriter, r *http.Request) {
	reg := s.publisher.Registry()

	signers := make([]string, 0, reg.Size())
	for _, addr := range reg.Signers() {
		signers = append(signers, addr.Hex())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"quorum":  reg.Size(),
		"signers": signers,
	})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleStatus handles GET /status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"results":       s.results.Len(),
		"quorum":        s.publisher.Registry().Size(),
		"rejectReplays": s.publisher.RejectsReplays(),
	})
}

// queryUint parses an optional unsigned query parameter.
func queryUint(r *http.Request, name string, def uint64) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}

	return v, nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeReason writes an error response carrying a stable reason.
func writeReason(w http.ResponseWriter, status int, reason, message string) {
	writeJSON(w, status, map[string]string{
		"error":  message,
		"reason": reason,
	})
}
