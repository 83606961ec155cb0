package discovery

import (
	"fmt"
	"net"

	"github.com/hashicorp/consul/api"

	"github.com/ridloal/storefront-dashboard/internal/platform/logger"
)

type ConsulClient struct {
	client *api.Client
}

type ServiceConfig struct {
	Name string
	ID   string
	Port int
	Tags []string
	// HealthPath is appended to the service address for the HTTP check.
	HealthPath string
}

func NewConsulClient(addr string) (*ConsulClient, error) {
	cfg := api.DefaultConfig()
	cfg.Address = addr

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}
	if _, err = client.Agent().Self(); err != nil {
		return nil, fmt.Errorf("failed to connect to Consul at %s: %w", addr, err)
	}

	logger.Info("Connected to Consul", "addr", addr)
	return &ConsulClient{client: client}, nil
}

// outboundIP returns the preferred outbound IP of this machine.
func outboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

func (c *ConsulClient) Register(cfg ServiceConfig) error {
	hostIP := outboundIP()
	healthPath := cfg.HealthPath
	if healthPath == "" {
		healthPath = "/health"
	}

	registration := &api.AgentServiceRegistration{
		ID:      cfg.ID,
		Name:    cfg.Name,
		Port:    cfg.Port,
		Address: hostIP,
		Tags:    cfg.Tags,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d%s", hostIP, cfg.Port, healthPath),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}
	if err := c.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	logger.Info("Registered service with Consul", "name", cfg.Name, "id", cfg.ID, "addr", fmt.Sprintf("%s:%d", hostIP, cfg.Port))
	return nil
}

func (c *ConsulClient) Deregister(serviceID string) error {
	if err := c.client.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	logger.Info("Deregistered service from Consul", "id", serviceID)
	return nil
}
