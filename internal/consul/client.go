// Package consul registers the services with HashiCorp Consul and lets the
// gateway discover healthy instances of them.
package consul

import (
	consulapi "github.com/hashicorp/consul/api"
)

// Service names shared by registration and discovery
const (
	AuthService        = "auth-service"
	PredictionsService = "predictions-service"
	SportsService      = "sports-service"
	NotifierService    = "notifier-service"
)

// Client wraps the Consul API client
type Client struct {
	api *consulapi.Client
}

// NewClientWithToken creates a new Consul client with ACL token authentication
func NewClientWithToken(addr, token string) (*Client, error) {
	config := consulapi.DefaultConfig()
	config.Address = addr

	if token != "" {
		config.Token = token
	}

	client, err := consulapi.NewClient(config)
	if err != nil {
		return nil, err
	}

	return &Client{api: client}, nil
}
