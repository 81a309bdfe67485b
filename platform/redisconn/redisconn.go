// Package redisconn builds Redis connection settings from a URL.
// This is part of the platform layer and contains no business logic.
package redisconn

import (
	"crypto/tls"
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrNotConfigured is returned when no Redis URL is set.
var ErrNotConfigured = errors.New("redis url not configured")

// ParseOptions parses redisURL. With tlsInsecure the server certificate is
// not verified, also for plain redis:// URLs.
func ParseOptions(redisURL string, tlsInsecure bool) (*redis.Options, error) {
	if redisURL == "" {
		return nil, ErrNotConfigured
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		opt.TLSConfig = clone
	} else if tlsInsecure {
		opt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return opt, nil
}

// NewClient opens a go-redis client for redisURL.
func NewClient(redisURL string, tlsInsecure bool) (*redis.Client, error) {
	opt, err := ParseOptions(redisURL, tlsInsecure)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}
