package main

import (
	"cbs/src/db"
	"cbs/src/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

func rewardHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/rewards", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var user models.User
			if err := db.
				Select("id", "points").
				Where(&models.User{ID: userId}).
				First(&user).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			var entries []models.RewardLedgerEntry
			err := db.
				Model(&models.RewardLedgerEntry{}).
				Where(&models.RewardLedgerEntry{UserID: userId}).
				Order("created_at DESC").
				Limit(50).
				Find(&entries).
				Error
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": entries, "balance": user.Points, "count": len(entries)})
		})
	return g
}
