package vos_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// VosResponse is the body of the current- and last-hour lookups. The server
// omits both clans while it has no authoritative data yet, so empty fields
// mean "no data", not an error.
type VosResponse struct {
	Clan1 string `json:"clan_1,omitempty"`
	Clan2 string `json:"clan_2,omitempty"`
}

// HasData reports whether the server returned an authoritative pairing.
func (r *VosResponse) HasData() bool {
	return r.Clan1 != "" && r.Clan2 != ""
}

// IncreaseCounterRequest is the vote submission body. Clans carry the
// lower-case wire spelling, leading clan first.
type IncreaseCounterRequest struct {
	Clans [2]string `json:"clans"`
	UUID  string    `json:"uuid"`
}

// GetCurrent fetches the current hour's pairing.
func (c *VosClient) GetCurrent(ctx context.Context) (*VosResponse, error) {
	return c.getVos(ctx, vosEndpoint)
}

// GetLast fetches the previous hour's pairing.
func (c *VosClient) GetLast(ctx context.Context) (*VosResponse, error) {
	return c.getVos(ctx, lastVosEndpoint)
}

func (c *VosClient) getVos(ctx context.Context, endpoint string) (*VosResponse, error) {
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}

	var resp VosResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", endpoint, err)
	}
	return &resp, nil
}

// IncreaseCounter submits one vote. A non-2xx status surfaces as a
// clients.StatusError, which callers treat as a rejected vote.
func (c *VosClient) IncreaseCounter(ctx context.Context, req IncreaseCounterRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode vote: %w", err)
	}

	if _, err := c.Post(ctx, increaseCounterEndpoint, bytes.NewReader(body)); err != nil {
		return fmt.Errorf("failed to submit vote: %w", err)
	}
	return nil
}
