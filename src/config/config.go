package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = time.RFC3339

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	atoi, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return atoi
}

// SlotLockTTL is the lease duration for the advisory timeslot lock.
func SlotLockTTL() time.Duration {
	return time.Duration(envInt("SLOT_LOCK_TTL_SECONDS", 30)) * time.Second
}

// BookingTxTimeout bounds the authoritative booking transaction so a
// contended conflict check cannot block indefinitely.
func BookingTxTimeout() time.Duration {
	return time.Duration(envInt("BOOKING_TX_TIMEOUT_SECONDS", 5)) * time.Second
}

// OffPeakWindow returns the local-hour window [start, end) that qualifies a
// booking for the off-peak bonus.
func OffPeakWindow() (int, int) {
	return envInt("OFF_PEAK_START_HOUR", 6), envInt("OFF_PEAK_END_HOUR", 9)
}

// RewardPointsDivisor converts a booking's total price into completion points.
func RewardPointsDivisor() float64 {
	d := envInt("REWARD_POINTS_DIVISOR", 1000)
	if d <= 0 {
		d = 1000
	}
	return float64(d)
}

func FirstBookingPoints() int { return envInt("REWARD_FIRST_BOOKING_POINTS", 100) }
func OffPeakPoints() int      { return envInt("REWARD_OFF_PEAK_POINTS", 50) }
func ConsecutivePoints() int  { return envInt("REWARD_CONSECUTIVE_POINTS", 150) }

func ConsecutiveThreshold() int64 {
	return int64(envInt("REWARD_CONSECUTIVE_THRESHOLD", 3))
}
