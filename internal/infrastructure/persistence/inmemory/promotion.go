package inmemory

import (
	"context"
	"sort"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/xiebiao/bookstore-core/internal/domain/promotion"
)

// promotionRepository 促销仓储，记录直接保存promotion.Promotion的副本
type promotionRepository struct {
	s *Store
}

// NewPromotionRepository 创建促销仓储
func NewPromotionRepository(s *Store) promotion.Repository {
	return &promotionRepository{s: s}
}

func (r *promotionRepository) Create(ctx context.Context, p *promotion.Promotion) error {
	err := r.s.write(ctx, func(txn *memdb.Txn) error {
		id, err := nextID(txn, tablePromotions)
		if err != nil {
			return err
		}
		rec := *p
		rec.ID = id
		if err := txn.Insert(tablePromotions, &rec); err != nil {
			return err
		}
		p.ID = id
		return nil
	})
	return wrapErr(err, "创建促销失败")
}

func (r *promotionRepository) FindByID(ctx context.Context, id uint) (*promotion.Promotion, error) {
	txn, done := r.s.read(ctx)
	defer done()
	rec, err := first[promotion.Promotion](txn, tablePromotions, "id", id)
	if err != nil {
		return nil, dbError(err, "查询促销失败")
	}
	if rec == nil {
		return nil, promotion.ErrPromotionNotFound
	}
	p := *rec
	return &p, nil
}

func (r *promotionRepository) all(ctx context.Context) ([]*promotion.Promotion, error) {
	txn, done := r.s.read(ctx)
	defer done()
	recs, err := collect[promotion.Promotion](txn, tablePromotions, "id")
	if err != nil {
		return nil, dbError(err, "查询促销列表失败")
	}
	out := make([]*promotion.Promotion, len(recs))
	for i, rec := range recs {
		p := *rec
		out[i] = &p
	}
	sortByID(out, func(p *promotion.Promotion) uint { return p.ID })
	return out, nil
}

func (r *promotionRepository) ListActive(ctx context.Context, on time.Time) ([]*promotion.Promotion, error) {
	all, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]*promotion.Promotion, 0, len(all))
	for _, p := range all {
		if p.IsActive(on) {
			active = append(active, p)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].DiscountPercent.GreaterThan(active[j].DiscountPercent)
	})
	return active, nil
}

func (r *promotionRepository) List(ctx context.Context) ([]*promotion.Promotion, error) {
	return r.all(ctx)
}
