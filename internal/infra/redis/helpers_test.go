package redis

import (
	"net"

	"checkout-service/internal/config"
)

func splitAddr(addr string) (string, string, error) {
	return net.SplitHostPort(addr)
}

func configFor(host, port string) config.RedisConfig {
	return config.RedisConfig{Host: host, Port: port}
}
