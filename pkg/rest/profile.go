// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package rest

import (
	"sync"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
)

var profileOnce sync.Once

// WebProfile enables the /debug/pprof endpoints, at most once per process.
func WebProfile(router *gin.Engine) {
	profileOnce.Do(func() { pprof.Register(router) })
}
