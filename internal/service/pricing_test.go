package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/peertrade/peertrade/internal/repository"
)

func TestCalculatePrice(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		price     int64
		priceType repository.PriceType
		elapsed   time.Duration
		want      int64
	}{
		{"flat ignores duration", 250, repository.PriceTypeFlat, 90 * time.Hour, 250},
		{"flat zero", 0, repository.PriceTypeFlat, time.Hour, 0},
		{"per hour three hours", 5, repository.PriceTypePerHour, 3 * time.Hour, 15},
		{"per hour partial hour truncates", 5, repository.PriceTypePerHour, 90 * time.Minute, 5},
		{"per hour under an hour is free", 60, repository.PriceTypePerHour, 45 * time.Minute, 0},
		{"per day one full day", 10, repository.PriceTypePerDay, 24 * time.Hour, 10},
		{"per day partial day truncates", 10, repository.PriceTypePerDay, 25 * time.Hour, 10},
		{"per day just under a day is free", 10, repository.PriceTypePerDay, 23*time.Hour + 59*time.Minute, 0},
		{"per day two days", 10, repository.PriceTypePerDay, 49 * time.Hour, 20},
		{"per hour end before start bills nothing", 5, repository.PriceTypePerHour, -10 * time.Hour, 0},
		{"per day end before start bills nothing", 10, repository.PriceTypePerDay, -48 * time.Hour, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculatePrice(tt.price, tt.priceType, start, start.Add(tt.elapsed))
			assert.Equal(t, tt.want, got)
		})
	}
}
