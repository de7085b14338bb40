// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerAuth returns a middleware rejecting requests whose
// Authorization header does not carry the expected bearer token.
func BearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		presented, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare(
			[]byte(presented), []byte(token),
		) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Not authenticated",
			})
			return
		}
		c.Next()
	}
}
