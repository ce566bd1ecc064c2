package consul

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"

	consulapi "github.com/hashicorp/consul/api"
)

// ErrNoInstances is returned when a service has no passing instance
var ErrNoInstances = errors.New("no healthy instances")

// ServiceInstance is one passing instance of a registered service
type ServiceInstance struct {
	ID      string
	Name    string
	Address string
	Port    int
	Tags    []string
}

// URL returns the base http URL of the instance
func (s *ServiceInstance) URL() string {
	return "http://" + s.Address + ":" + strconv.Itoa(s.Port)
}

// ServiceDiscovery resolves service names to running instances
type ServiceDiscovery interface {
	Discover(serviceName string) ([]*ServiceInstance, error)
	DiscoverOne(serviceName string) (*ServiceInstance, error)
}

// Discover lists the instances of serviceName whose checks are passing
func (c *Client) Discover(serviceName string) ([]*ServiceInstance, error) {
	entries, _, err := c.api.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return nil, fmt.Errorf("consul health query for %s: %w", serviceName, err)
	}

	instances := instancesFrom(entries)
	if len(instances) == 0 {
		return nil, fmt.Errorf("%s: %w", serviceName, ErrNoInstances)
	}
	return instances, nil
}

// DiscoverOne picks a random passing instance
func (c *Client) DiscoverOne(serviceName string) (*ServiceInstance, error) {
	instances, err := c.Discover(serviceName)
	if err != nil {
		return nil, err
	}
	return pickOne(serviceName, instances, rand.Intn)
}

// instancesFrom flattens health entries, falling back to the node address
// for services registered without one
func instancesFrom(entries []*consulapi.ServiceEntry) []*ServiceInstance {
	out := make([]*ServiceInstance, 0, len(entries))
	for _, e := range entries {
		if e == nil || e.Service == nil {
			continue
		}
		addr := e.Service.Address
		if addr == "" && e.Node != nil {
			addr = e.Node.Address
		}
		out = append(out, &ServiceInstance{
			ID:      e.Service.ID,
			Name:    e.Service.Service,
			Address: addr,
			Port:    e.Service.Port,
			Tags:    e.Service.Tags,
		})
	}
	return out
}

func pickOne(serviceName string, instances []*ServiceInstance, intn func(int) int) (*ServiceInstance, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("%s: %w", serviceName, ErrNoInstances)
	}
	return instances[intn(len(instances))], nil
}
