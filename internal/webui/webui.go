// Package webui serves the single page demo UI.
package webui

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed index.html
var indexHTML []byte

// Register adds the UI route to the engine.
func Register(engine *gin.Engine) {
	engine.GET("/", Index)
}

// Index serves the UI page.
func Index(gctx *gin.Context) {
	gctx.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}
