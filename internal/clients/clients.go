package clients

import (
	"math/rand"
	"time"

	"resty.dev/v3"
)

type HTTPClientOptions struct {
	Timeout   time.Duration
	UserAgent string
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Safari/605.1.15",
	"Mozilla/5.0 (Linux; Android 10; SM-G980F) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.120 Mobile Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 13_2_3 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/13.0.3 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36",
}

// RandomUserAgent picks a browser User-Agent so image hosts that reject
// unidentified clients still serve us.
func RandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

func NewClientRequest(t *HTTPClientOptions) *ClientRequest {
	client := resty.New().
		SetTimeout(t.Timeout).
		SetHeader("User-Agent", t.UserAgent)

	return &ClientRequest{
		Client: client,
	}
}
