// Package discovery advertises the server on the local network over mDNS and finds it again
// from the pen bridge.
package discovery

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

const (
	ServiceType = "_econote._tcp"

	apiPathField = "path=/api"
)

// Server is a running advertisement; Shutdown withdraws it.
type Server struct {
	srv *mdns.Server
}

// Advertise announces instance on port under ServiceType.
func Advertise(instance string, port int) (*Server, error) {
	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, nil, []string{"econote", apiPathField})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	srv, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return &Server{srv: srv}, nil
}

func (s *Server) Shutdown() error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown()
}

// Instance is one server found on the network.
type Instance struct {
	Name string
	Host string
	Addr string // host:port, IPv4
}

// BaseURL is the websocket base of the instance, e.g. ws://192.168.1.4:3000.
func (i Instance) BaseURL() string {
	return "ws://" + i.Addr
}

// Browse collects the instances that answer within timeout.
func Browse(timeout time.Duration) ([]Instance, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan []Instance)

	go func() {
		var found []Instance
		seen := make(map[string]bool)
		for e := range entries {
			inst, ok := fromEntry(e)
			if !ok || seen[inst.Addr] {
				continue
			}
			seen[inst.Addr] = true
			found = append(found, inst)
		}
		done <- found
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)

	found := <-done
	if err != nil {
		return found, fmt.Errorf("mDNS query failed: %w", err)
	}
	return found, nil
}

func fromEntry(e *mdns.ServiceEntry) (Instance, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Instance{}, false
	}
	name := strings.TrimSuffix(e.Name, "."+ServiceType+".local.")
	return Instance{
		Name: name,
		Host: e.Host,
		Addr: fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port),
	}, true
}
