package rdb

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-core/internal/domain/promotion"
)

// promotionRepository 促销仓储
type promotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository 创建促销仓储
func NewPromotionRepository(db *gorm.DB) promotion.Repository {
	return &promotionRepository{db: db}
}

func (r *promotionRepository) Create(ctx context.Context, p *promotion.Promotion) error {
	model := &PromotionModel{
		Code:            p.Code,
		Description:     p.Description,
		DiscountPercent: p.DiscountPercent,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
	}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return classify(err, "创建促销失败")
	}
	p.ID = model.ID
	return nil
}

func (r *promotionRepository) FindByID(ctx context.Context, id uint) (*promotion.Promotion, error) {
	var m PromotionModel
	if err := conn(ctx, r.db).First(&m, id).Error; err != nil {
		return nil, notFound(err, promotion.ErrPromotionNotFound, "查询促销失败")
	}
	return toPromotion(&m), nil
}

// ListActive start_date、end_date为DATE类型，按当天零点比较即两端包含
func (r *promotionRepository) ListActive(ctx context.Context, on time.Time) ([]*promotion.Promotion, error) {
	y, m, d := on.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, on.Location())

	var models []PromotionModel
	err := conn(ctx, r.db).
		Where("start_date <= ? AND end_date >= ?", day, day).
		Order("discount_percent DESC, id").
		Find(&models).Error
	if err != nil {
		return nil, classify(err, "查询有效促销失败")
	}
	return toPromotions(models), nil
}

func (r *promotionRepository) List(ctx context.Context) ([]*promotion.Promotion, error) {
	var models []PromotionModel
	if err := conn(ctx, r.db).Order("id").Find(&models).Error; err != nil {
		return nil, classify(err, "查询促销列表失败")
	}
	return toPromotions(models), nil
}

func toPromotion(m *PromotionModel) *promotion.Promotion {
	return &promotion.Promotion{
		ID:              m.ID,
		Code:            m.Code,
		Description:     m.Description,
		DiscountPercent: m.DiscountPercent,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
	}
}

func toPromotions(models []PromotionModel) []*promotion.Promotion {
	out := make([]*promotion.Promotion, len(models))
	for i := range models {
		out[i] = toPromotion(&models[i])
	}
	return out
}
