package env

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/MJE43/wheel-of-fortune-go/internal/config"
)

const (
	httpAddrEnvName    = "WHEEL_HTTP_ADDR"
	corsOriginsEnvName = "WHEEL_CORS_ORIGINS"

	defaultHTTPAddr = "127.0.0.1:8088"
)

type httpConfig struct {
	address string
}

func NewHTTPConfig() (config.HTTPConfig, error) {
	addr := os.Getenv(httpAddrEnvName)
	if len(addr) == 0 {
		addr = defaultHTTPAddr
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", httpAddrEnvName, addr, err)
	}

	return &httpConfig{
		address: addr,
	}, nil
}

func (cfg *httpConfig) Address() string {
	return cfg.address
}

type corsConfig struct {
	origins []string
}

func NewCORSConfig() (config.CORSConfig, error) {
	raw := os.Getenv(corsOriginsEnvName)
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &corsConfig{
		origins: origins,
	}, nil
}

func (cfg *corsConfig) AllowedOrigins() []string {
	return append([]string(nil), cfg.origins...)
}
