package common

import (
	"cbs/src/models"
	"errors"
	"time"

	"gorm.io/gorm"
)

// VerifyPromotion checks a code's eligibility for a user without consuming
// it. It runs on the booking transaction so the verdict cannot go stale
// before the usage row lands.
func VerifyPromotion(tx *gorm.DB, code string, userID uint) (*models.Promotion, error) {
	var promo models.Promotion
	if err := tx.
		Where(&models.Promotion{Code: code}).
		First(&promo).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &PromotionInvalidError{Reason: "code does not exist"}
		}
		return nil, err
	}
	if !promo.IsActive {
		return nil, &PromotionInvalidError{Reason: "code is not active"}
	}
	now := time.Now()
	if now.Before(promo.StartDate) || now.After(promo.EndDate) {
		return nil, &PromotionInvalidError{Reason: "code is outside its validity window"}
	}
	if promo.UserID != nil && *promo.UserID != userID {
		return nil, &PromotionInvalidError{Reason: "code is reserved for another user"}
	}
	if promo.UsageLimit != nil {
		var total int64
		if err := tx.
			Model(&models.PromotionUsage{}).
			Where(&models.PromotionUsage{PromotionID: promo.ID}).
			Count(&total).
			Error; err != nil {
			return nil, err
		}
		if uint(total) >= *promo.UsageLimit {
			return nil, &PromotionInvalidError{Reason: "code has reached its usage limit"}
		}
	}
	var prior int64
	if err := tx.
		Model(&models.PromotionUsage{}).
		Where(&models.PromotionUsage{PromotionID: promo.ID, UserID: userID}).
		Count(&prior).
		Error; err != nil {
		return nil, err
	}
	if prior > 0 {
		return nil, &PromotionInvalidError{Reason: "already used"}
	}
	return &promo, nil
}

// ApplyPromotion consumes the code for a booking and returns the discounted
// price. The PromotionUsage insert is the enforcement mechanism: two racing
// applications collide on the (promotion, user) unique index and the loser
// gets "already used".
func ApplyPromotion(tx *gorm.DB, promo *models.Promotion, userID, bookingID uint, originalPrice float64) (float64, *models.PromotionUsage, error) {
	discount := originalPrice * promo.Percent / 100
	usage := models.PromotionUsage{
		PromotionID:    promo.ID,
		UserID:         userID,
		BookingID:      bookingID,
		DiscountAmount: discount,
	}
	if err := tx.Create(&usage).Error; err != nil {
		return 0, nil, &PromotionInvalidError{Reason: "already used"}
	}
	return originalPrice - discount, &usage, nil
}
