// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is the shared outbound client (Discord REST calls go through it).
var HTTPClient = &http.Client{
	Timeout: 10 * time.Second,
}