package rental

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
	"github.com/xiebiao/bookstore-core/internal/domain/rental"
	"github.com/xiebiao/bookstore-core/internal/domain/shared"
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
	"github.com/xiebiao/bookstore-core/pkg/logger"
	"github.com/xiebiao/bookstore-core/pkg/metrics"
	"github.com/xiebiao/bookstore-core/pkg/tracing"
)

const tracerName = "rental"

// CreateRentalUseCase 租借图书
//
// 一个事务内完成：
//  1. 锁定该ISBN下第一本可用且可租借的副本（SELECT ... FOR UPDATE）
//  2. 锁内复核：副本仍为available，且没有未归还的租借记录
//  3. 插入租借记录（到期日 = 当前时间 + 借期）
//  4. 条件更新副本 available → rented
type CreateRentalUseCase struct {
	tx        shared.Transactor
	copies    inventory.CopyRepository
	rentals   rental.Repository
	customers catalog.Repository
	publisher shared.EventPublisher
	clock     shared.Clock
	period    time.Duration
	log       *slog.Logger
}

// NewCreateRentalUseCase period<=0时使用默认借期14天
func NewCreateRentalUseCase(
	tx shared.Transactor,
	copies inventory.CopyRepository,
	rentals rental.Repository,
	customers catalog.Repository,
	publisher shared.EventPublisher,
	clock shared.Clock,
	period time.Duration,
	log *slog.Logger,
) *CreateRentalUseCase {
	return &CreateRentalUseCase{
		tx:        tx,
		copies:    copies,
		rentals:   rentals,
		customers: customers,
		publisher: publisher,
		clock:     clock,
		period:    period,
		log:       log,
	}
}

// CreateRentalRequest 按ISBN租借；也可以给出某本副本的ID，
// 此时按该副本的ISBN重新挑选可租借副本
type CreateRentalRequest struct {
	CustomerID uint
	ISBN       string
	CopyID     uint
}

// Execute 执行租借
func (uc *CreateRentalUseCase) Execute(ctx context.Context, req CreateRentalRequest) (detail *rental.Detail, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateRental")
	span.SetAttributes(attribute.Int("customer_id", int(req.CustomerID)))
	defer func() {
		tracing.EndSpan(span, err)
		metrics.IncCounterVec(metrics.RentalsTotal, map[string]string{"action": "create", "result": resultLabel(err)})
	}()

	isbn, err := uc.resolveISBN(ctx, req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("isbn", isbn))
	log := logger.FromContext(ctx, uc.log).With("customer_id", req.CustomerID, "isbn", isbn)

	var created *rental.Rental
	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.customers.FindCustomerByID(txCtx, req.CustomerID); err != nil {
			return err
		}

		locked, err := uc.copies.LockAvailable(txCtx, isbn, 1, true)
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return rental.ErrNotRentable.WithMessagef("ISBN %s 暂无可租借副本", isbn)
		}
		c := locked[0]

		if c.Status != inventory.CopyStatusAvailable || !c.Rentable {
			log.Error("locked copy is not rentable", "copy_id", c.ID, "status", c.Status)
			return apperrors.ErrInvariantViolation.WithMessagef("副本%d状态异常: %s", c.ID, c.Status)
		}
		open, err := uc.rentals.CountOpenByCopy(txCtx, c.ID)
		if err != nil {
			return err
		}
		if open > 0 {
			log.Error("available copy has open rental", "copy_id", c.ID, "open_rentals", open)
			return apperrors.ErrInvariantViolation.WithMessagef("副本%d存在未归还的租借记录", c.ID)
		}

		created = rental.NewRental(req.CustomerID, c.ID, uc.clock(), uc.period)
		if err := uc.rentals.Create(txCtx, created); err != nil {
			return err
		}

		affected, err := uc.copies.TransitionStatus(txCtx, []uint{c.ID}, inventory.CopyStatusAvailable, inventory.CopyStatusRented)
		if err != nil {
			return err
		}
		if affected != 1 {
			log.Error("copy status changed under lock", "copy_id", c.ID, "updated", affected)
			return apperrors.ErrInvariantViolation.WithMessagef("副本%d状态更新失败", c.ID)
		}

		detail, err = uc.rentals.FindDetail(txCtx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("rental created", "rental_id", created.ID, "copy_id", created.CopyID)
	publish(ctx, uc.publisher, log, shared.EventRentalCreated, rental.CreatedEvent{
		RentalID:   created.ID,
		CustomerID: created.CustomerID,
		CopyID:     created.CopyID,
		ISBN:       detail.ISBN,
		DueDate:    created.DueDate,
	})
	return detail, nil
}

func (uc *CreateRentalUseCase) resolveISBN(ctx context.Context, req CreateRentalRequest) (string, error) {
	if req.ISBN != "" {
		return req.ISBN, nil
	}
	if req.CopyID == 0 {
		return "", apperrors.ErrInvalidParams.WithMessagef("必须指定isbn或copy_id")
	}
	c, err := uc.copies.FindByID(ctx, req.CopyID)
	if err != nil {
		return "", err
	}
	return c.ISBN, nil
}

// publish 事务提交后发布事件，失败只记录日志
func publish(ctx context.Context, p shared.EventPublisher, log *slog.Logger, key string, payload interface{}) {
	if err := p.Publish(ctx, key, payload); err != nil {
		log.Warn("publish event failed", "routing_key", key, "error", err)
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case apperrors.IsClientError(err):
		return metrics.ResultRejected
	default:
		return metrics.ResultFailure
	}
}
