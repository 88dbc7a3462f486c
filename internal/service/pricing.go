package service

import (
	"time"

	"github.com/peertrade/peertrade/internal/repository"
)

// calculatePrice computes the amount owed for an offer. FLAT offers cost the
// offer price verbatim. Timed offers bill whole elapsed hours between the
// exchange and the pricing moment; PER_DAY divides those integer hours by 24,
// truncating again. The double truncation undercharges partial days and is
// kept on purpose: client-visible prices depend on it. An end before the
// start bills zero hours; the amount never goes negative.
func calculatePrice(offerPrice int64, priceType repository.PriceType, start, end time.Time) int64 {
	hours := int64(end.Sub(start).Hours())
	if hours < 0 {
		hours = 0
	}
	switch priceType {
	case repository.PriceTypePerHour:
		return offerPrice * hours
	case repository.PriceTypePerDay:
		return offerPrice * (hours / 24)
	default:
		return offerPrice
	}
}
