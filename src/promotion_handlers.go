package main

import (
	"cbs/src/common"
	"cbs/src/db"
	"cbs/src/types"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func promotionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		// Eligibility pre-check only. Consumption happens inside the booking
		// transaction, so a positive answer here can still lose the race.
		GET("/promotions/:code", func(ctx *gin.Context) {
			var params types.PromotionCodeURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			promo, err := common.VerifyPromotion(db.GetDb(), params.Code, userId)
			if err != nil {
				var pe *common.PromotionInvalidError
				if errors.As(err, &pe) {
					ctx.JSON(http.StatusOK, gin.H{"valid": false, "reason": pe.Reason})
					return
				}
				log.Printf("Error verifying promotion %s: %s\n", params.Code, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"valid": true, "percent": promo.Percent})
		})
	return g
}
