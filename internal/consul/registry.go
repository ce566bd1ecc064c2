package consul

import (
	"fmt"
	"net"
	"strconv"

	consulapi "github.com/hashicorp/consul/api"
)

// Registration describes one service instance announced to the local agent
type Registration struct {
	ID         string
	Name       string
	Host       string
	Port       int
	Tags       []string
	HealthPath string
}

// ServiceRegistrar announces and withdraws service instances
type ServiceRegistrar interface {
	Register(reg Registration) error
	Deregister(serviceID string) error
}

// agentRegistration converts reg into the agent API payload. A HealthPath adds
// an HTTP check that removes the instance after a minute of failures.
func (reg Registration) agentRegistration() *consulapi.AgentServiceRegistration {
	out := &consulapi.AgentServiceRegistration{
		ID:      reg.ID,
		Name:    reg.Name,
		Address: reg.Host,
		Port:    reg.Port,
		Tags:    reg.Tags,
	}
	if reg.HealthPath != "" {
		out.Check = &consulapi.AgentServiceCheck{
			HTTP:                           "http://" + net.JoinHostPort(reg.Host, strconv.Itoa(reg.Port)) + reg.HealthPath,
			Interval:                       "10s",
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "1m",
		}
	}
	return out
}

// Register announces reg to the local agent
func (c *Client) Register(reg Registration) error {
	if err := c.api.Agent().ServiceRegister(reg.agentRegistration()); err != nil {
		return fmt.Errorf("register %s: %w", reg.ID, err)
	}
	return nil
}

// Deregister withdraws a service instance
func (c *Client) Deregister(serviceID string) error {
	if err := c.api.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("deregister %s: %w", serviceID, err)
	}
	return nil
}

// RegisterHTTPService registers name at host:port with a /health check.
// The ID is stable per host, so a restarted instance replaces its previous entry.
func RegisterHTTPService(r ServiceRegistrar, name, host string, port int, tags ...string) (string, error) {
	serviceID := name + "-" + host

	// leftover from an unclean exit
	_ = r.Deregister(serviceID)

	err := r.Register(Registration{
		ID:         serviceID,
		Name:       name,
		Host:       host,
		Port:       port,
		Tags:       tags,
		HealthPath: "/health",
	})
	if err != nil {
		return "", err
	}
	return serviceID, nil
}
