package main

import (
	"cbs/src/common"
	"cbs/src/config"
	"cbs/src/db"
	"cbs/src/models"
	"cbs/src/types"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// bookingErrorStatus maps booking-path failures onto the wire contract:
// malformed or unbookable input → 400, missing court → 404, a slot held or
// taken by someone else → 409, anything else → 500.
func bookingErrorStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrCourtNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrCourtUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrSlotTaken), errors.Is(err, common.ErrSlotLockHeld):
		return http.StatusConflict
	}
	var pe *common.PromotionInvalidError
	if errors.As(err, &pe) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			start, err := time.Parse(config.TIME_PARSE_FORMAT, body.StartTime)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			end, err := time.Parse(config.TIME_PARSE_FORMAT, body.EndTime)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if !end.After(start) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
				return
			}

			// Fast-fail shed layer. Losing here is cheap; the transaction
			// below is what actually prevents double-booking.
			if _, err := common.AcquireSlotLock(body.CourtID, start, end, userId, config.SlotLockTTL()); err != nil {
				if errors.Is(err, common.ErrSlotLockHeld) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				log.Printf("Error acquiring slot lock: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			// The lease lifecycle is independent of the transaction outcome,
			// so release on every path out of this handler.
			defer func() {
				if _, err := common.ReleaseSlotLock(body.CourtID, start, end, userId); err != nil {
					log.Printf("Error releasing slot lock: %s\n", err.Error())
				}
			}()

			reservation, usage, err := common.CreateReservation(ctx.Request.Context(), body.CourtID, userId, start, end, body.PromotionCode)
			if err != nil {
				status := bookingErrorStatus(err)
				if status == http.StatusInternalServerError {
					log.Printf("CreateReservation failed: %s\n", err.Error())
					ctx.JSON(status, gin.H{"error": "Error while processing request"})
					return
				}
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}

			// Post-commit side effects. The booking stays committed whatever
			// happens below.
			common.RunRewardCascade(reservation)
			common.DispatchBookingNotification(userId, reservation)

			resp := gin.H{"data": reservation, "discount_amount": 0.0}
			if usage != nil {
				resp["discount_amount"] = usage.DiscountAmount
				resp["applied_promotion"] = *body.PromotionCode
			}
			ctx.JSON(http.StatusCreated, resp)
		}).
		GET("/bookings", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var reservations []models.Reservation
			db := db.GetDb()
			err := db.
				Model(&models.Reservation{}).
				Where(&models.Reservation{UserID: userId}).
				Order("created_at DESC").
				Limit(20).
				Find(&reservations).
				Error
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reservations, "count": len(reservations)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			var reservation models.Reservation
			db := db.GetDb()
			err := db.
				Model(&models.Reservation{}).
				Where(&models.Reservation{ID: params.ID, UserID: userId}).
				Preload("Court").
				First(&reservation).
				Error
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reservation})
		}).
		PUT("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if _, err := common.CancelReservation(params.ID, userId); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
					return
				}
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		PUT("/bookings/:id/complete", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			reservation, err := common.CompleteReservation(params.ID, userId)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "no pending reservation found"})
					return
				}
				log.Printf("Could not complete reservation %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reservation})
		}).
		POST("/bookings/:id/join", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			reservation, err := common.JoinReservation(params.ID, userId)
			if err != nil {
				switch {
				case errors.Is(err, gorm.ErrRecordNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
				case errors.Is(err, common.ErrJoinNotAllowed), errors.Is(err, common.ErrGameFull):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				default:
					log.Printf("Could not join reservation %d: %s\n", params.ID, err.Error())
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				}
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reservation})
		})
	return g
}
