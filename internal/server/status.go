// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"go.astrophena.name/base/request"
)

// Status describes an observed server.
type Status struct {
	Running    bool   `json:"running"`
	PID        int    `json:"pid,omitempty"`
	Port       int    `json:"port"`
	LocalURL   string `json:"local_url"`
	NetworkURL string `json:"network_url,omitempty"`
}

// healthResponse is what the server's health endpoint returns.
type healthResponse struct {
	Status string `json:"status"`
}

// Health reports whether a server on port answers its health endpoint.
func Health(ctx context.Context, client *http.Client, port int) bool {
	if client == nil {
		client = request.DefaultClient
	}
	_, err := request.Make[healthResponse](ctx, request.Params{
		Method:     http.MethodGet,
		URL:        healthURL(port),
		HTTPClient: client,
	})
	return err == nil
}

func healthURL(port int) string {
	return fmt.Sprintf("http://localhost:%d/health", port)
}

// Detect reports the status of a server on the configured port, whether or
// not this process started it.
func Detect(ctx context.Context, c *Config) *Status {
	if c == nil {
		c = &Config{}
	}
	c.setDefaults()

	s := &Status{
		Port:     c.Port,
		LocalURL: fmt.Sprintf("http://localhost:%d", c.Port),
	}
	if !Health(ctx, c.HTTPClient, c.Port) {
		return s
	}
	s.Running = true
	if pid, err := pidAtPort(ctx, c); err == nil {
		s.PID = pid
	}
	if ip := localIP(); ip != "" {
		s.NetworkURL = fmt.Sprintf("http://%s:%d", ip, c.Port)
	}
	return s
}

// pidAtPort finds the PID of the process listening on port. It relies on
// lsof, which both macOS and Linux ship.
func pidAtPort(ctx context.Context, c *Config) (int, error) {
	out, err := c.runCommand(ctx, "lsof", "-ti", ":"+strconv.Itoa(c.Port))
	if err != nil {
		return 0, err
	}
	// lsof prints one PID per line; the first one is the listener we
	// started (children inherit the socket).
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return 0, errors.New("no process found")
	}
	return strconv.Atoi(fields[0])
}

// localIP returns a non-loopback IPv4 address of this machine, if any.
func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return ""
}
