package common

import (
	"cbs/src/lib"
	"cbs/src/models"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const notificationsTopic = "booking-notifications"

// DispatchBookingNotification hands the post-commit summary to the broker.
// Fire-and-forget: a delivery failure is logged and never reaches the caller,
// the booking has already committed.
func DispatchBookingNotification(userID uint, r *models.Reservation) {
	payload := map[string]any{
		"id":          uuid.NewString(),
		"user_id":     userID,
		"booking_id":  r.ID,
		"court_id":    r.CourtID,
		"start_time":  r.StartTime,
		"end_time":    r.EndTime,
		"total_price": r.TotalPrice,
		"status":      r.Status,
		"summary":     fmt.Sprintf("Court %d booked from %s to %s", r.CourtID, r.StartTime.Format("15:04"), r.EndTime.Format("15:04")),
	}
	go func() {
		if err := lib.KafkaProduceMessage("BookingNotificationsProducer", notificationsTopic, payload); err != nil {
			log.Printf("Error dispatching notification for booking %d: %s\n", r.ID, err.Error())
		}
	}()
}

// BookingNotificationsConsumer drains the notifications topic and hands each
// summary to the delivery transport. Delivery itself lives outside this
// service; here we log the handoff.
func BookingNotificationsConsumer() {
	lib.KafkaConsume("bookingNotifications", notificationsTopic, func(body string) {
		if !gjson.Valid(body) {
			log.Printf("[%s]: Received invalid json body. Skipping\n", notificationsTopic)
			return
		}
		userId := gjson.Get(body, "user_id").Uint()
		summary := gjson.Get(body, "summary").String()
		log.Printf("[%s] delivering to user %d: %s\n", notificationsTopic, userId, summary)
	})
}
