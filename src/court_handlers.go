package main

import (
	"cbs/src/db"
	"cbs/src/lib"
	"cbs/src/models"
	"cbs/src/types"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const courtCacheTTL = 5 * time.Minute

// courtHandlers serves the read-only catalog. Writes live in a separate admin
// system; this service only gates and prices against it.
func courtHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/courts", func(ctx *gin.Context) {
			var courts []models.Court
			db := db.GetDb()
			err := db.
				Model(&models.Court{}).
				Order("id ASC").
				Limit(100).
				Find(&courts).
				Error
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": courts, "count": len(courts)})
		}).
		GET("/courts/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			cacheKey := fmt.Sprintf("court:%d", params.ID)
			var court models.Court
			if lib.CacheGetJSON(cacheKey, &court) {
				ctx.JSON(http.StatusOK, gin.H{"data": court})
				return
			}
			db := db.GetDb()
			if err := db.
				Where(&models.Court{ID: params.ID}).
				First(&court).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "court not found"})
				return
			}
			lib.CacheSetJSON(cacheKey, &court, courtCacheTTL)
			ctx.JSON(http.StatusOK, gin.H{"data": court})
		})
	return g
}
