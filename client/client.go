package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"VoteBridge/internal/attest"
)

// defaultTimeout bounds every request.
const defaultTimeout = 10 * time.Second

// Client talks to a bridge node over its HTTP API.
type Client struct {
	baseURL string       // baseURL is e.g. "http://127.0.0.1:8080"
	http    *http.Client // http is the underlying client
}

// Accepted is the bridge's answer to an accepted result.
type Accepted struct {
	Index        uint64 `json:"index"`
	VoteID       uint32 `json:"voteId"`
	VotesFor     uint32 `json:"votesFor"`
	VotesAgainst uint32 `json:"votesAgainst"`
}

// Entry is one accepted result read back from the bridge.
type Entry struct {
	Index        uint64    `json:"index"`
	VoteID       uint32    `json:"voteId"`
	VotesFor     uint32    `json:"votesFor"`
	VotesAgainst uint32    `json:"votesAgainst"`
	Digest       string    `json:"digest"`
	Proof        string    `json:"proof"`
	AcceptedAt   time.Time `json:"acceptedAt"`
}

// Result returns the entry's tally.
func (e Entry) Result() attest.VoteResult {
	return attest.VoteResult{VoteID: e.VoteID, VotesFor: e.VotesFor, VotesAgainst: e.VotesAgainst}
}

// Status is the bridge's monitoring summary.
type Status struct {
	Results       uint64 `json:"results"`
	Quorum        int    `json:"quorum"`
	RejectReplays bool   `json:"rejectReplays"`
}

// New creates a client for the bridge at addr ("host:port" or a full URL).
func New(addr string) *Client {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}

	return &Client{
		baseURL: strings.TrimRight(addr, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Publish submits a result and its proof. A rejected proof returns a
// *StatusError whose Reason names the rejection.
func (c *Client) Publish(result attest.VoteResult, proof []attest.Signature) (Accepted, error) {
	sigs := make([]string, len(proof))
	for i, sig := range proof {
		sigs[i] = sig.Hex()
	}

	body := map[string]any{
		"voteId":       result.VoteID,
		"votesFor":     result.VotesFor,
		"votesAgainst": result.VotesAgainst,
		"proof":        sigs,
	}

	var resp Accepted
	if err := c.httpPostJSON("/results", body, &resp); err != nil {
		return Accepted{}, fmt.Errorf("publish vote %d:\n%w", result.VoteID, err)
	}

	return resp, nil
}

// Results returns up to limit accepted results starting at from, and the log length.
func (c *Client) Results(from uint64, limit int) ([]Entry, uint64, error) {
	var resp struct {
		Total   uint64  `json:"total"`
		Results []Entry `json:"results"`
	}

	if err := c.httpGet(fmt.Sprintf("/results?from=%d&limit=%d", from, limit), &resp); err != nil {
		return nil, 0, fmt.Errorf("list results:\n%w", err)
	}

	return resp.Results, resp.Total, nil
}

// Result returns the accepted result at index.
func (c *Client) Result(index uint64) (Entry, error) {
	var e Entry
	if err := c.httpGet(fmt.Sprintf("/results/%d", index), &e); err != nil {
		return Entry{}, fmt.Errorf("get result %d:\n%w", index, err)
	}

	return e, nil
}

// Origin returns the origin contract the bridge is bound to.
func (c *Client) Origin() (attest.OriginID, error) {
	var resp struct {
		Origin string `json:"origin"`
	}

	if err := c.httpGet("/origin", &resp); err != nil {
		return attest.OriginID{}, fmt.Errorf("get origin:\n%w", err)
	}

	return attest.ParseOriginID(resp.Origin)
}

// Signers returns the registered signers in proof order.
func (c *Client) Signers() ([]common.Address, error) {
	var resp struct {
		Quorum  int      `json:"quorum"`
		Signers []string `json:"signers"`
	}

	if err := c.httpGet("/signers", &resp); err != nil {
		return nil, fmt.Errorf("get signers:\n%w", err)
	}

	if len(resp.Signers) != resp.Quorum {
		return nil, fmt.Errorf("bridge reports %d signers for quorum %d", len(resp.Signers), resp.Quorum)
	}

	signers := make([]common.Address, len(resp.Signers))
	for i, s := range resp.Signers {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid signer address %q", s)
		}
		signers[i] = common.HexToAddress(s)
	}

	return signers, nil
}

// Status returns the bridge's monitoring summary.
func (c *Client) Status() (Status, error) {
	var s Status
	if err := c.httpGet("/status", &s); err != nil {
		return Status{}, fmt.Errorf("get status:\n%w", err)
	}

	return s, nil
}

// Health reports whether the bridge answers its health check.
func (c *Client) Health() error {
	return c.httpGet("/health", nil)
}

// RejectionReason returns the bridge's rejection reason carried by err, or "".
func RejectionReason(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Reason
	}

	return ""
}
