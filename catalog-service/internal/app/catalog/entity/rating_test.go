package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsFromCounts_ZeroState(t *testing.T) {
	stats := StatsFromCounts(nil)

	assert.Equal(t, 0.0, stats.AvgRating)
	assert.Equal(t, 0, stats.TotalReviews)
	assert.Equal(t, RatingCounts{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, stats.RatingCounts)
}

func TestStatsFromCounts_HistogramSumsToTotal(t *testing.T) {
	stats := StatsFromCounts(RatingCounts{5: 3, 4: 2, 1: 1, 7: 10})

	sum := 0
	for _, n := range stats.RatingCounts {
		sum += n
	}
	assert.Equal(t, stats.TotalReviews, sum)
	assert.Equal(t, 6, stats.TotalReviews)
	// (15+8+1)/6 = 4.0
	assert.Equal(t, 4.0, stats.AvgRating)
}

func TestAverageRating_Rounding(t *testing.T) {
	tests := []struct {
		name string
		sum  int
		n    int
		want float64
	}{
		{"no reviews", 0, 0, 0},
		{"single", 5, 1, 5.0},
		{"exact half rounds up", 17, 4, 4.3}, // 4.25
		{"below half", 13, 3, 4.3},           // 4.333
		{"above half", 14, 3, 4.7},           // 4.666
		{"two thirds", 5, 3, 1.7},            // 1.666
		{"large set", 4*999 + 5, 1000, 4.0},  // 4.001
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AverageRating(tt.sum, tt.n))
		})
	}
}

func TestAggregateFromRatings_Scenario(t *testing.T) {
	// A ставит 5
	assert.Equal(t, RatingAggregate{Rating: 5.0, NumReviews: 1}, AggregateFromRatings([]int{5}))
	// B ставит 3
	assert.Equal(t, RatingAggregate{Rating: 4.0, NumReviews: 2}, AggregateFromRatings([]int{5, 3}))
	// A меняет оценку на 1
	assert.Equal(t, RatingAggregate{Rating: 2.0, NumReviews: 2}, AggregateFromRatings([]int{1, 3}))
	// B удаляет отзыв
	assert.Equal(t, RatingAggregate{Rating: 1.0, NumReviews: 1}, AggregateFromRatings([]int{1}))
}

func TestAggregateFromRatings_Empty(t *testing.T) {
	assert.Equal(t, RatingAggregate{}, AggregateFromRatings(nil))
}

func TestProduct_FinalPrice(t *testing.T) {
	p := Product{Price: 200, Discount: 25}
	assert.Equal(t, 150.0, p.FinalPrice())

	p.Discount = 0
	assert.Equal(t, 200.0, p.FinalPrice())
}
