// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/momeni/dpreg/pkg/adapter/restful/gin/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyIgnoresObjectKeyOrder(t *testing.T) {
	k1, ok := middleware.Key(
		"POST", "/data-products/",
		[]byte(`{"name": "abc", "domain": "test"}`),
	)
	require.True(t, ok)
	k2, ok := middleware.Key(
		"POST", "/data-products/",
		[]byte(`{"domain": "test", "name": "abc"}`),
	)
	require.True(t, ok)
	assert.Equal(t, k1, k2)
}

func TestKeyNormalizesTrailingSlash(t *testing.T) {
	body := []byte(`{"name": "abc"}`)
	k1, ok := middleware.Key("POST", "/data-products/", body)
	require.True(t, ok)
	k2, ok := middleware.Key("POST", "/data-products", body)
	require.True(t, ok)
	assert.Equal(t, k1, k2)
}

func TestKeyDistinguishes(t *testing.T) {
	base, ok := middleware.Key(
		"POST", "/data-products/", []byte(`{"name": "abc"}`),
	)
	require.True(t, ok)
	for _, tc := range []struct {
		name         string
		method, path string
		body         string
	}{
		{"method", "PATCH", "/data-products/", `{"name": "abc"}`},
		{"path", "POST", "/schemas/dp:abc:t", `{"name": "abc"}`},
		{"body", "POST", "/data-products/", `{"name": "abcd"}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			k, ok := middleware.Key(
				tc.method, tc.path, []byte(tc.body),
			)
			require.True(t, ok)
			assert.NotEqual(t, base, k)
		})
	}
}

func TestKeyRejectsNonJSONBody(t *testing.T) {
	_, ok := middleware.Key("POST", "/data-products/", []byte("name=abc"))
	assert.False(t, ok)
	_, ok = middleware.Key("POST", "/data-products/", nil)
	assert.False(t, ok)
}

// countingEngine routes POST /echo to a handler which reports how many
// times it actually ran, behind the idempotency cache.
func countingEngine(calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	idem := middleware.NewIdempotency()
	e.POST("/echo", idem.Handler(), func(c *gin.Context) {
		*calls++
		c.Header("x-custom", "kept")
		c.JSON(http.StatusOK, gin.H{"calls": *calls})
	})
	return e
}

func post(e *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(
		http.MethodPost, "/echo", strings.NewReader(body),
	)
	req.Header.Set("Content-Type", "application/json")
	e.ServeHTTP(w, req)
	return w
}

func TestHandlerReplaysCachedResponse(t *testing.T) {
	calls := 0
	e := countingEngine(&calls)

	w := post(e, `{"name": "abc"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(middleware.ReplayedHeader))
	first := w.Body.String()

	w = post(e, `{"name":   "abc"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get(middleware.ReplayedHeader))
	assert.Equal(t, "kept", w.Header().Get("x-custom"))
	assert.Equal(t, first, w.Body.String())
	assert.Equal(t, 1, calls, "replay must not reach the handler")
}

func TestHandlerMissesOnDifferingBody(t *testing.T) {
	calls := 0
	e := countingEngine(&calls)

	post(e, `{"name": "abc"}`)
	w := post(e, `{"name": "def"}`)
	assert.Empty(t, w.Header().Get(middleware.ReplayedHeader))
	assert.Equal(t, 2, calls)
}

func TestHandlerSkipsNonJSON(t *testing.T) {
	calls := 0
	e := countingEngine(&calls)

	post(e, "not json")
	post(e, "not json")
	assert.Equal(t, 2, calls, "non-JSON requests must never be cached")
}

func TestHandlerBodyStaysReadable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	idem := middleware.NewIdempotency()
	e.POST("/echo", idem.Handler(), func(c *gin.Context) {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": req.Name})
	})

	w := post(e, `{"name": "abc"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"abc"`)
}
