package rental

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
	"github.com/xiebiao/bookstore-core/internal/domain/rental"
	"github.com/xiebiao/bookstore-core/internal/domain/shared"
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
	"github.com/xiebiao/bookstore-core/pkg/logger"
	"github.com/xiebiao/bookstore-core/pkg/metrics"
	"github.com/xiebiao/bookstore-core/pkg/tracing"
)

// ReturnRentalUseCase 归还图书
// 锁定租借记录后写入归还时间，再把副本从rented改回available
type ReturnRentalUseCase struct {
	tx        shared.Transactor
	copies    inventory.CopyRepository
	rentals   rental.Repository
	publisher shared.EventPublisher
	clock     shared.Clock
	log       *slog.Logger
}

// NewReturnRentalUseCase 创建归还用例
func NewReturnRentalUseCase(
	tx shared.Transactor,
	copies inventory.CopyRepository,
	rentals rental.Repository,
	publisher shared.EventPublisher,
	clock shared.Clock,
	log *slog.Logger,
) *ReturnRentalUseCase {
	return &ReturnRentalUseCase{
		tx:        tx,
		copies:    copies,
		rentals:   rentals,
		publisher: publisher,
		clock:     clock,
		log:       log,
	}
}

// Execute 归还rentalID对应的租借
func (uc *ReturnRentalUseCase) Execute(ctx context.Context, rentalID uint) (detail *rental.Detail, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ReturnRental")
	span.SetAttributes(attribute.Int("rental_id", int(rentalID)))
	defer func() {
		tracing.EndSpan(span, err)
		metrics.IncCounterVec(metrics.RentalsTotal, map[string]string{"action": "return", "result": resultLabel(err)})
	}()
	log := logger.FromContext(ctx, uc.log).With("rental_id", rentalID)

	var returned *rental.Rental
	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		r, err := uc.rentals.LockByID(txCtx, rentalID)
		if err != nil {
			return err
		}
		if err := r.Return(uc.clock()); err != nil {
			return err
		}

		affected, err := uc.rentals.MarkReturned(txCtx, r.ID, *r.ReturnDate)
		if err != nil {
			return err
		}
		if affected != 1 {
			return rental.ErrAlreadyReturned
		}

		affected, err = uc.copies.TransitionStatus(txCtx, []uint{r.CopyID}, inventory.CopyStatusRented, inventory.CopyStatusAvailable)
		if err != nil {
			return err
		}
		if affected != 1 {
			log.Error("returned copy was not rented", "copy_id", r.CopyID)
			return apperrors.ErrInvariantViolation.WithMessagef("副本%d不处于租借状态", r.CopyID)
		}

		returned = r
		detail, err = uc.rentals.FindDetail(txCtx, r.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("rental returned", "copy_id", returned.CopyID)
	publish(ctx, uc.publisher, log, shared.EventRentalReturned, rental.ReturnedEvent{
		RentalID:   returned.ID,
		CopyID:     returned.CopyID,
		ReturnDate: *returned.ReturnDate,
		Overdue:    returned.IsOverdue(*returned.ReturnDate),
	})
	return detail, nil
}
