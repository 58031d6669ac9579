// Copyright (C) 2023 The Eventival Authors.
//
// This file is part of Eventival.
//
// Eventival is free software: you can redistribute it and/or modify it under
// the terms of the GNU Affero General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.
//
// Eventival is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public
// License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with Eventival.  If not, see <https://www.gnu.org/licenses/>.

package client

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/filmfest/eventival/config"
	"github.com/filmfest/eventival/log"
	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

const (
	DirectiveMaxAge = "max-age"
)

var (
	HeaderUserAgent    = http.CanonicalHeaderKey("User-Agent")
	HeaderCacheControl = http.CanonicalHeaderKey("Cache-Control")
)

// FetchError is returned once all attempts to get a document have failed.
type FetchError struct {
	URL      string
	Attempts int
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %s", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type statusError struct {
	status int
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http error %d: %s", e.status, e.url)
}

// retryable reports whether the request may succeed if tried again.
func (e *statusError) retryable() bool {
	return e.status >= http.StatusInternalServerError ||
		e.status == http.StatusTooManyRequests
}

type Client struct {
	client    *http.Client
	useCache  bool
	userAgent string
	cache     httpcache.Cache
	maxAge    time.Duration
	attempts  int
	delay     time.Duration
	backoff   float64
	throttle  time.Duration
	last      time.Time
	sleep     func(time.Duration)
}

func NewClient(config *config.ClientConfig) *Client {
	c := Client{}
	c.userAgent = config.UserAgent
	c.useCache = config.UseCache
	c.attempts = config.Attempts
	if c.attempts < 1 {
		c.attempts = 1
	}
	c.delay = config.Delay
	c.backoff = config.Backoff
	if c.backoff < 1 {
		c.backoff = 1
	}
	c.throttle = config.Throttle
	c.sleep = time.Sleep
	if c.useCache {
		c.maxAge = config.MaxAge
		c.cache = diskcache.New(config.CacheDir)
		transport := httpcache.NewTransport(c.cache)
		c.client = transport.Client()
		log.Printf("using cache dir %s\n", config.CacheDir)
	} else {
		c.client = &http.Client{}
	}
	return &c
}

func (c *Client) rateLimit() {
	if c.throttle <= 0 {
		return
	}
	if d := c.throttle - time.Since(c.last); d > 0 {
		c.sleep(d)
	}
	c.last = time.Now()
}

func (c *Client) doGet(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(HeaderUserAgent, c.userAgent)

	throttle := true
	if c.useCache {
		maxAge := int(c.maxAge.Seconds())
		if maxAge > 0 {
			req.Header.Set(HeaderCacheControl, fmt.Sprintf("%s=%d", DirectiveMaxAge, maxAge))
		}
		// cached responses don't need to wait
		cachedResp, err := httpcache.CachedResponse(c.cache, req)
		if err != nil {
			log.Printf("cache error %s\n", err)
		}
		if cachedResp != nil {
			cachedResp.Body.Close()
			throttle = false
		}
	}
	if throttle {
		c.rateLimit()
	}

	log.Debugf("get %s\n", url)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &statusError{status: resp.StatusCode, url: url}
	}
	return io.ReadAll(resp.Body)
}

// Get fetches url, retrying transport errors, server errors and 429 with a
// delay that grows by the configured backoff factor after each attempt.
func (c *Client) Get(url string) ([]byte, error) {
	delay := c.delay
	var err error
	attempt := 0
	for attempt < c.attempts {
		var body []byte
		attempt++
		body, err = c.doGet(url)
		if err == nil {
			return body, nil
		}
		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			break
		}
		if attempt < c.attempts {
			log.Warnf("%s, retry %d of %d in %s\n", err, attempt, c.attempts-1, delay)
			c.sleep(delay)
			delay = time.Duration(math.Round(float64(delay) * c.backoff))
		}
	}
	fe := &FetchError{URL: url, Attempts: attempt, Err: err}
	var se *statusError
	if errors.As(err, &se) {
		fe.Status = se.status
	}
	return nil, fe
}
