// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package middleware contains the gin middlewares of the registry:
// the request idempotency cache, the bearer token authentication, and
// the CORS headers.
package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// ReplayedHeader marks responses which were served from the
// idempotency cache instead of the downstream handler.
const ReplayedHeader = "idempotent-replayed"

type cachedResponse struct {
	status int
	header http.Header
	body   []byte
}

// Idempotency is a process-wide cache of responses to POST and PATCH
// requests, keyed by the request method, the normalized path, and a
// digest of the canonicalized JSON body. A repeated request is not
// handled again; the cached response is replayed verbatim with the
// ReplayedHeader annotation. The cache lives as long as the process
// and is not required to survive restarts.
type Idempotency struct {
	mutex     sync.RWMutex
	responses map[string]*cachedResponse
}

// NewIdempotency creates an empty idempotency cache. One instance is
// shared by all routes which opt into replay semantics.
func NewIdempotency() *Idempotency {
	return &Idempotency{
		responses: make(map[string]*cachedResponse),
	}
}

// Handler returns the gin middleware of this cache. Only POST and
// PATCH requests with a JSON object or array body participate; other
// requests pass through unconditionally.
func (idem *Idempotency) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPatch:
		default:
			c.Next()
			return
		}
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		key, ok := Key(c.Request.Method, c.Request.URL.Path, body)
		if !ok {
			c.Next()
			return
		}
		idem.mutex.RLock()
		cached, hit := idem.responses[key]
		idem.mutex.RUnlock()
		if hit {
			replay(c, cached)
			return
		}
		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()
		idem.mutex.Lock()
		defer idem.mutex.Unlock()
		if _, raced := idem.responses[key]; raced {
			return
		}
		idem.responses[key] = &cachedResponse{
			status: cw.Status(),
			header: cw.Header().Clone(),
			body:   cw.body.Bytes(),
		}
	}
}

// Key derives the cache key of one request, reporting false when the
// body is not canonicalizable JSON (such requests are never cached).
func Key(method, path string, body []byte) (string, bool) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", false
	}
	// object keys are serialized in sorted order
	canonical, err := json.Marshal(decoded)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(canonical)
	normalized := strings.TrimRight(path, "/")
	return method + " " + normalized + "#" +
		hex.EncodeToString(sum[:]), true
}

func replay(c *gin.Context, cached *cachedResponse) {
	header := c.Writer.Header()
	for name, values := range cached.header {
		header[name] = values
	}
	header.Set(ReplayedHeader, "true")
	c.Writer.WriteHeader(cached.status)
	_, _ = c.Writer.Write(cached.body)
	c.Abort()
}

// captureWriter duplicates the response body into a buffer, so the
// cache can store what the downstream handler wrote.
type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.body.Write(b)
	return cw.ResponseWriter.Write(b)
}

func (cw *captureWriter) WriteString(s string) (int, error) {
	cw.body.WriteString(s)
	return cw.ResponseWriter.WriteString(s)
}
