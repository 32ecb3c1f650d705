// Package vos_client is the typed client for the Voice of Seren vote
// service: current and previous hour lookups plus vote submission.
package vos_client

import (
	"github.com/voiceofseren/vostracker/go/clients"
)

type VosClient struct {
	*clients.BaseClient
}

// NewVosClient creates a client for the vote service at baseURL. Pass
// BaseURL for the production service.
func NewVosClient(baseURL string) *VosClient {
	client := &VosClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}

	client.SetHeader("Content-type", contentTypeJSON)

	return client
}
