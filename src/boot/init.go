package boot

import (
	"cbs/src/common"
	"cbs/src/db"
	"cbs/src/lib"
	"cbs/src/models"
	"log"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Court{},
		&models.Reservation{},
		&models.SlotLock{},
		&models.Promotion{},
		&models.PromotionUsage{},
		&models.RewardLedgerEntry{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitBroker() {
	go lib.KafkaCreateTopics("booking-notifications")
	go common.BookingNotificationsConsumer()
}

// InitScheduler starts the sweep that completes reservations whose end time
// has passed, which in turn feeds the completed-stage reward rules.
func InitScheduler() {
	id, err := lib.CreateCronJob(common.CompleteElapsedReservations, 1*time.Minute)
	if err != nil {
		log.Printf("Error scheduling completion sweep: %s\n", err.Error())
		return
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	sched.Start()
	log.Printf("Scheduled completion sweep: %s\n", *id)
}
