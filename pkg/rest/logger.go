// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// logger is a Gin handler to log requests for debugging.
func (a *API) logger(c *gin.Context) {
	if !log.V(3).Enabled() {
		return // Nothing to do for V < 3
	}
	log := log // Local variable, can assign without changing global log.
	log = log.WithValues(
		"method", c.Request.Method,
		"url", c.Request.URL,
		"from", c.Request.RemoteAddr,
	)
	start := time.Now()
	defer func() {
		status := c.Writer.Status()
		log = log.WithValues("code", status, "text", http.StatusText(status), "latency", time.Since(start))
		if len(c.Errors.Errors()) > 0 {
			log = log.WithValues("errors", c.Errors.Errors())
		}
		if c.IsAborted() || status/100 != 2 {
			log.V(3).Info("Request failed")
		} else {
			log.V(4).Info("Request succeeded")
		}
	}()
	c.Next()
}
