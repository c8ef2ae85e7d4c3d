package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"shopcatalog/catalog-service/internal/app/catalog/config"
	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/catalog-service/internal/app/catalog/infrastructure"
	"shopcatalog/catalog-service/internal/app/catalog/repository"
	"shopcatalog/pkg/logger"
	"shopcatalog/pkg/metrics"
	"shopcatalog/pkg/pagination"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Отзыв уже записан, поэтому пересчет и публикация не зависят от отмены запроса.
// Публикация получает свой срок: бюджет пересчета к ней уже может быть исчерпан
const (
	recomputeTimeout = 5 * time.Second
	publishTimeout   = 5 * time.Second
)

// Author - автор запроса из JWT
type Author struct {
	ID   string
	Name string
}

// ReviewServiceOptions - строгость согласованности агрегата
type ReviewServiceOptions struct {
	Consistency      string
	RecomputeRetries int
	RetryBackoff     time.Duration
	// RecomputeTimeout - общий срок всех попыток пересчета, 0 = recomputeTimeout
	RecomputeTimeout time.Duration
}

// ReviewService обрабатывает бизнес-логику отзывов.
// После create/update/delete явно вызывает RatingAggregator, после лайков - нет
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	aggregator  RatingAggregator
	stats       StatsReader
	tx          repository.Transactor
	publisher   infrastructure.MessagePublisher
	opts        ReviewServiceOptions
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	aggregator RatingAggregator,
	stats StatsReader,
	tx repository.Transactor,
	publisher infrastructure.MessagePublisher,
	opts ReviewServiceOptions,
) *ReviewService {
	if opts.Consistency == "" {
		opts.Consistency = config.ConsistencyEventual
	}
	if opts.RecomputeTimeout <= 0 {
		opts.RecomputeTimeout = recomputeTimeout
	}
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		aggregator:  aggregator,
		stats:       stats,
		tx:          tx,
		publisher:   publisher,
		opts:        opts,
	}
}

// GetProductReviews - страница отзывов, статистика и pagination
func (s *ReviewService) GetProductReviews(ctx context.Context, productIDHex string, page pagination.Params) (*entity.ProductReviews, error) {
	productID, err := s.requireProduct(ctx, productIDHex)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.FindByProduct(ctx, productID, page.Skip, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	total, err := s.reviewRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	stats, err := s.stats.ComputeStats(ctx, productID)
	if err != nil {
		return nil, err
	}

	return &entity.ProductReviews{
		Reviews:    reviews,
		Pagination: pagination.NewMeta(total, page),
		Stats:      stats,
	}, nil
}

// CreateReview создает отзыв. Второй отзыв той же пары (product, user) - ErrReviewExists
func (s *ReviewService) CreateReview(ctx context.Context, productIDHex string, author Author, req *entity.CreateReviewRequest) (*entity.Review, error) {
	productID, err := s.requireProduct(ctx, productIDHex)
	if err != nil {
		return nil, err
	}

	_, err = s.reviewRepo.FindOne(ctx, productID, author.ID)
	if err == nil {
		return nil, ErrReviewExists
	}
	if !errors.Is(err, repository.ErrReviewNotFound) {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}

	review := &entity.Review{
		Product:  productID,
		User:     author.ID,
		UserName: author.Name,
		Rating:   req.Rating,
		Comment:  req.Comment,
		Images:   req.Images,
		Likes:    []string{},
	}
	if review.Images == nil {
		review.Images = []string{}
	}

	err = s.applyMutation(ctx, productID, func(ctx context.Context) error {
		return s.reviewRepo.Create(ctx, review)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			// проверку выше обогнал параллельный запрос, сработал уникальный индекс
			return nil, ErrReviewExists
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.ReviewMutations.WithLabelValues("create").Inc()
	metrics.ReviewsRating.Observe(float64(review.Rating))

	s.publishReviewEvent(ctx, entity.ReviewEvent{
		EventType: entity.EventReviewCreated,
		ReviewID:  review.ID.Hex(),
		ProductID: productID.Hex(),
		UserID:    author.ID,
		Rating:    review.Rating,
		Timestamp: time.Now().UTC(),
	})

	return review, nil
}

// UpdateReview меняет отзыв, пустые поля запроса оставляют старые значения
func (s *ReviewService) UpdateReview(ctx context.Context, reviewIDHex, userID string, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	review, err := s.getOwnReview(ctx, reviewIDHex, userID)
	if err != nil {
		return nil, err
	}

	if req.Rating > 0 {
		review.Rating = req.Rating
	}
	if req.Comment != "" {
		review.Comment = req.Comment
	}
	if req.Images != nil {
		review.Images = req.Images
	}

	err = s.applyMutation(ctx, review.Product, func(ctx context.Context) error {
		return s.reviewRepo.Update(ctx, review)
	})
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	metrics.ReviewMutations.WithLabelValues("update").Inc()

	s.publishReviewEvent(ctx, entity.ReviewEvent{
		EventType: entity.EventReviewUpdated,
		ReviewID:  review.ID.Hex(),
		ProductID: review.Product.Hex(),
		UserID:    userID,
		Rating:    review.Rating,
		Timestamp: time.Now().UTC(),
	})

	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, reviewIDHex, userID string) error {
	review, err := s.getOwnReview(ctx, reviewIDHex, userID)
	if err != nil {
		return err
	}

	err = s.applyMutation(ctx, review.Product, func(ctx context.Context) error {
		return s.reviewRepo.Delete(ctx, review.ID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	metrics.ReviewMutations.WithLabelValues("delete").Inc()

	s.publishReviewEvent(ctx, entity.ReviewEvent{
		EventType: entity.EventReviewDeleted,
		ReviewID:  review.ID.Hex(),
		ProductID: review.Product.Hex(),
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	})

	return nil
}

// ToggleLike переключает лайк пользователя: каждый вызов меняет состояние один раз.
// Рейтинг товара от лайков не зависит, агрегат не пересчитывается
func (s *ReviewService) ToggleLike(ctx context.Context, reviewIDHex, userID string) (*entity.LikeResult, error) {
	reviewID, err := parseID(reviewIDHex, ErrReviewNotFound)
	if err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	liked := !slices.Contains(review.Likes, userID)

	var updated *entity.Review
	if liked {
		updated, err = s.reviewRepo.AddLike(ctx, reviewID, userID)
	} else {
		updated, err = s.reviewRepo.RemoveLike(ctx, reviewID, userID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}

	action := "unlike"
	if liked {
		action = "like"
	}
	metrics.ReviewLikes.WithLabelValues(action).Inc()

	return &entity.LikeResult{
		Liked:      liked,
		LikesCount: len(updated.Likes),
	}, nil
}

// applyMutation выполняет изменение отзыва и пересчет агрегата.
//
// transactional: обе записи в одной транзакции, ошибка агрегата откатывает отзыв.
// eventual: отзыв пишется отдельно; ошибка агрегата повторяется RecomputeRetries раз,
// затем логируется и уходит в Kafka как RATING_RECOMPUTE_REQUESTED, запрос при этом успешен
func (s *ReviewService) applyMutation(ctx context.Context, productID primitive.ObjectID, mutate func(ctx context.Context) error) error {
	if s.opts.Consistency == config.ConsistencyTransactional {
		return s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
			if err := mutate(txCtx); err != nil {
				return err
			}

			start := time.Now()
			_, err := s.aggregator.Recompute(txCtx, productID)
			metrics.RecordRatingRecompute(s.opts.Consistency, time.Since(start), err)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrAggregateWrite, err)
			}
			return nil
		})
	}

	if err := mutate(ctx); err != nil {
		return err
	}

	s.recomputeEventually(ctx, productID)
	return nil
}

func (s *ReviewService) recomputeEventually(ctx context.Context, productID primitive.ObjectID) {
	detached := context.WithoutCancel(ctx)
	recomputeCtx, cancel := context.WithTimeout(detached, s.opts.RecomputeTimeout)
	defer cancel()

	var err error
	for attempt := 0; attempt <= s.opts.RecomputeRetries; attempt++ {
		if attempt > 0 && s.opts.RetryBackoff > 0 {
			select {
			case <-recomputeCtx.Done():
				err = recomputeCtx.Err()
			case <-time.After(s.opts.RetryBackoff * time.Duration(attempt)):
			}
			if recomputeCtx.Err() != nil {
				break
			}
		}

		start := time.Now()
		_, err = s.aggregator.Recompute(recomputeCtx, productID)
		metrics.RecordRatingRecompute(s.opts.Consistency, time.Since(start), err)
		if err == nil {
			return
		}
		if errors.Is(err, repository.ErrProductNotFound) {
			// товар удалили вместе с отзывами, агрегат писать некуда
			return
		}
	}

	logger.Error().
		Err(err).
		Str("product_id", productID.Hex()).
		Int("attempts", s.opts.RecomputeRetries+1).
		Msg("Rating aggregate write failed, requesting async recompute")

	pubCtx, pubCancel := context.WithTimeout(detached, publishTimeout)
	defer pubCancel()
	s.publishReviewEvent(pubCtx, entity.ReviewEvent{
		EventType: entity.EventRatingRecomputeRequested,
		ProductID: productID.Hex(),
		Reason:    err.Error(),
		Timestamp: time.Now().UTC(),
	})
}

// requireProduct проверяет существование товара до чтения статистики и записи отзыва
func (s *ReviewService) requireProduct(ctx context.Context, productIDHex string) (primitive.ObjectID, error) {
	productID, err := parseID(productIDHex, ErrProductNotFound)
	if err != nil {
		return primitive.NilObjectID, err
	}

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return primitive.NilObjectID, ErrProductNotFound
		}
		return primitive.NilObjectID, fmt.Errorf("failed to get product: %w", err)
	}

	return productID, nil
}

func (s *ReviewService) getOwnReview(ctx context.Context, reviewIDHex, userID string) (*entity.Review, error) {
	reviewID, err := parseID(reviewIDHex, ErrReviewNotFound)
	if err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	if review.User != userID {
		return nil, ErrForbidden
	}

	return review, nil
}

// publishReviewEvent отправляет событие в review_events. Ошибки только логируются
func (s *ReviewService) publishReviewEvent(ctx context.Context, event entity.ReviewEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", event.EventType).Msg("Failed to marshal review event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, event.ProductID, data); err != nil {
		logger.Error().
			Err(err).
			Str("event_type", event.EventType).
			Str("product_id", event.ProductID).
			Msg("Failed to publish review event")
	}
}
