package rdb

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
	"github.com/xiebiao/bookstore-core/internal/domain/rental"
)

// rentalRepository 租借仓储
type rentalRepository struct {
	db *gorm.DB
}

// NewRentalRepository 创建租借仓储
func NewRentalRepository(db *gorm.DB) rental.Repository {
	return &rentalRepository{db: db}
}

func (r *rentalRepository) Create(ctx context.Context, rt *rental.Rental) error {
	db := conn(ctx, r.db)

	var n int64
	if err := db.Model(&CustomerModel{}).Where("id = ?", rt.CustomerID).Count(&n).Error; err != nil {
		return classify(err, "创建租借记录失败")
	}
	if n == 0 {
		return catalog.ErrCustomerNotFound
	}
	if err := db.Model(&BookCopyModel{}).Where("item_id = ?", rt.CopyID).Count(&n).Error; err != nil {
		return classify(err, "创建租借记录失败")
	}
	if n == 0 {
		return inventory.ErrCopyNotFound
	}

	model := &RentalModel{
		CustomerID: rt.CustomerID,
		CopyID:     rt.CopyID,
		RentDate:   rt.RentDate,
		DueDate:    rt.DueDate,
		ReturnDate: rt.ReturnDate,
	}
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return classify(err, "创建租借记录失败")
	}
	rt.ID = model.ID
	return nil
}

func (r *rentalRepository) FindByID(ctx context.Context, id uint) (*rental.Rental, error) {
	var m RentalModel
	if err := conn(ctx, r.db).First(&m, id).Error; err != nil {
		return nil, notFound(err, rental.ErrRentalNotFound, "查询租借记录失败")
	}
	return toRental(&m), nil
}

// LockByID SELECT ... FOR UPDATE，同一租借的并发归还在此排队
func (r *rentalRepository) LockByID(ctx context.Context, id uint) (*rental.Rental, error) {
	var m RentalModel
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&m, id).Error
	if err != nil {
		return nil, notFound(err, rental.ErrRentalNotFound, "锁定租借记录失败")
	}
	return toRental(&m), nil
}

// MarkReturned UPDATE ... WHERE id = ? AND return_date IS NULL
func (r *rentalRepository) MarkReturned(ctx context.Context, id uint, at time.Time) (int64, error) {
	result := conn(ctx, r.db).Model(&RentalModel{}).
		Where("id = ? AND return_date IS NULL", id).
		Update("return_date", at)
	if result.Error != nil {
		return 0, classify(result.Error, "更新归还时间失败")
	}
	return result.RowsAffected, nil
}

func (r *rentalRepository) CountOpenByCopy(ctx context.Context, copyID uint) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&RentalModel{}).
		Where("copy_id = ? AND return_date IS NULL", copyID).
		Count(&n).Error
	if err != nil {
		return 0, classify(err, "统计未归还租借失败")
	}
	return n, nil
}

type rentalRow struct {
	RentalModel
	ISBN      string
	BookTitle string
	FirstName string
	LastName  string
}

func (r *rentalRepository) detailQuery(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Table("book_rents AS br").
		Select(`br.id AS id, br.customer_id AS customer_id, br.copy_id AS copy_id,
			br.rent_date AS rent_date, br.due_date AS due_date, br.return_date AS return_date,
			bc.isbn AS isbn, b.title AS book_title, c.first_name AS first_name, c.last_name AS last_name`).
		Joins("JOIN book_copies AS bc ON bc.item_id = br.copy_id").
		Joins("JOIN books AS b ON b.isbn = bc.isbn").
		Joins("JOIN customers AS c ON c.id = br.customer_id")
}

func (r *rentalRepository) FindDetail(ctx context.Context, id uint) (*rental.Detail, error) {
	var rows []rentalRow
	if err := r.detailQuery(ctx).Where("br.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, classify(err, "查询租借记录失败")
	}
	if len(rows) == 0 {
		return nil, rental.ErrRentalNotFound
	}
	return toDetail(&rows[0]), nil
}

func (r *rentalRepository) List(ctx context.Context, filter rental.ListFilter) ([]*rental.Detail, error) {
	q := r.detailQuery(ctx).Order("br.rent_date DESC, br.id DESC")
	if filter.CustomerID != 0 {
		q = q.Where("br.customer_id = ?", filter.CustomerID)
	}
	if filter.OpenOnly {
		q = q.Where("br.return_date IS NULL")
	}
	var rows []rentalRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, classify(err, "查询租借列表失败")
	}
	out := make([]*rental.Detail, len(rows))
	for i := range rows {
		out[i] = toDetail(&rows[i])
	}
	return out, nil
}

func toRental(m *RentalModel) *rental.Rental {
	return &rental.Rental{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		CopyID:     m.CopyID,
		RentDate:   m.RentDate,
		DueDate:    m.DueDate,
		ReturnDate: m.ReturnDate,
	}
}

func toDetail(row *rentalRow) *rental.Detail {
	customer := catalog.Customer{FirstName: row.FirstName, LastName: row.LastName}
	return &rental.Detail{
		Rental:       *toRental(&row.RentalModel),
		ISBN:         row.ISBN,
		BookTitle:    row.BookTitle,
		CustomerName: customer.FullName(),
	}
}
