package customHttpClient

import (
	"net/http"

	"github.com/synthiquery/api/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

var pooledClient = &http.Client{Transport: customTransport}

// GetPooledClient hands out the shared connection-pooled client so the
// generation API reuses connections instead of redialing per request.
func GetPooledClient() *http.Client {
	return pooledClient
}
