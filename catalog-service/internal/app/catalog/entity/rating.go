package entity

const (
	MinRating = 1
	MaxRating = 5
)

// RatingCounts - гистограмма отзывов по количеству звезд, ключи 1..5
type RatingCounts map[int]int

// NewRatingCounts возвращает гистограмму со всеми корзинами, заполненными нулями
func NewRatingCounts() RatingCounts {
	counts := make(RatingCounts, MaxRating)
	for star := MinRating; star <= MaxRating; star++ {
		counts[star] = 0
	}
	return counts
}

// Add учитывает n отзывов с оценкой star. Оценки вне 1..5 игнорируются
func (c RatingCounts) Add(star, n int) {
	if star < MinRating || star > MaxRating || n <= 0 {
		return
	}
	c[star] += n
}

func (c RatingCounts) Total() int {
	total := 0
	for star := MinRating; star <= MaxRating; star++ {
		total += c[star]
	}
	return total
}

func (c RatingCounts) Sum() int {
	sum := 0
	for star := MinRating; star <= MaxRating; star++ {
		sum += star * c[star]
	}
	return sum
}

// RatingStats - ответ Statistics Reader
type RatingStats struct {
	AvgRating    float64      `json:"avgRating"`
	TotalReviews int          `json:"totalReviews"`
	RatingCounts RatingCounts `json:"ratingCounts"`
}

// RatingAggregate - производные поля товара rating/numReviews
type RatingAggregate struct {
	Rating     float64 `json:"rating"`
	NumReviews int     `json:"numReviews"`
}

// AverageRating - среднее sum/n, округленное до одного знака (half-up).
// Считается в целых числах, чтобы 4.25 не превращалось в 4.2 из-за двоичного представления
func AverageRating(sum, n int) float64 {
	if n <= 0 {
		return 0
	}
	tenths := (20*sum + n) / (2 * n)
	return float64(tenths) / 10
}

func AggregateFromCounts(counts RatingCounts) RatingAggregate {
	total := counts.Total()
	return RatingAggregate{
		Rating:     AverageRating(counts.Sum(), total),
		NumReviews: total,
	}
}

// AggregateFromRatings пересобирает агрегат из полного набора оценок
func AggregateFromRatings(ratings []int) RatingAggregate {
	counts := NewRatingCounts()
	for _, r := range ratings {
		counts.Add(r, 1)
	}
	return AggregateFromCounts(counts)
}

func StatsFromCounts(counts RatingCounts) RatingStats {
	normalized := NewRatingCounts()
	for star, n := range counts {
		normalized.Add(star, n)
	}
	agg := AggregateFromCounts(normalized)

	return RatingStats{
		AvgRating:    agg.Rating,
		TotalReviews: agg.NumReviews,
		RatingCounts: normalized,
	}
}
