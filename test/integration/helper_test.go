package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appcatalog "github.com/xiebiao/bookstore-core/internal/application/catalog"
	appinventory "github.com/xiebiao/bookstore-core/internal/application/inventory"
	apporder "github.com/xiebiao/bookstore-core/internal/application/order"
	apprental "github.com/xiebiao/bookstore-core/internal/application/rental"
	"github.com/xiebiao/bookstore-core/internal/domain/promotion"
	"github.com/xiebiao/bookstore-core/internal/domain/shared"
	"github.com/xiebiao/bookstore-core/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-core/internal/infrastructure/messaging"
	"github.com/xiebiao/bookstore-core/internal/infrastructure/persistence"
	"github.com/xiebiao/bookstore-core/internal/infrastructure/persistence/inmemory"
	"github.com/xiebiao/bookstore-core/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-core/internal/interface/http/router"
	"github.com/xiebiao/bookstore-core/pkg/logger"
)

// 集成测试：完整的HTTP → 用例 → 仓储链路，存储使用内存数据库，不依赖外部服务

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`

	status int
	header http.Header
}

// Decode 解析data字段
func (r *Response) Decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, v), "解析data失败: %s", string(r.Data))
}

type testServer struct {
	srv *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := inmemory.NewStore()
	require.NoError(t, err)
	repos := persistence.NewInMemory(store)

	log := logger.Discard()
	clock := shared.SystemClock()
	publisher := messaging.NewNoopPublisher(log)

	manager := appinventory.NewManager(repos.Tx, repos.Copies, repos.Items, repos.Batches, repos.Catalog, log)
	resolver := promotion.NewResolver(repos.Promotions, nil, promotion.PolicyActive, clock, log)
	queries := appcatalog.NewQueryService(repos.Catalog, repos.Items, repos.Promotions, repos.Stats, clock, log)

	handlers := &router.Handlers{
		Inventory: handler.NewInventoryHandler(manager),
		Rental: handler.NewRentalHandler(
			apprental.NewCreateRentalUseCase(repos.Tx, repos.Copies, repos.Rentals, repos.Catalog, publisher, clock, 0, log),
			apprental.NewReturnRentalUseCase(repos.Tx, repos.Copies, repos.Rentals, publisher, clock, log),
			apprental.NewListRentalsUseCase(repos.Rentals),
			clock,
		),
		Order: handler.NewOrderHandler(
			apporder.NewCreateOrderUseCase(repos.Tx, manager, repos.Items, repos.Orders, repos.Catalog, resolver, publisher, clock, log),
			apporder.NewQueryOrdersUseCase(repos.Orders),
		),
		Catalog:   handler.NewCatalogHandler(queries),
		Promotion: handler.NewPromotionHandler(queries),
		Stats:     handler.NewStatsHandler(queries),
	}

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: gin.TestMode},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	srv := httptest.NewServer(router.New(cfg, log, handlers))
	t.Cleanup(srv.Close)
	return &testServer{srv: srv}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			data, err := json.Marshal(body)
			require.NoError(t, err, "JSON序列化失败")
			raw = string(data)
		}
		reader = bytes.NewBufferString(raw)
	}

	req, err := http.NewRequest(method, s.srv.URL+path, reader)
	require.NoError(t, err, "创建HTTP请求失败")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	result := &Response{status: resp.StatusCode, header: resp.Header}
	require.NoError(t, json.Unmarshal(data, result), "解析JSON响应失败: %s", string(data))
	return result
}

func (s *testServer) post(t *testing.T, path string, body interface{}) *Response {
	return s.do(t, http.MethodPost, path, body)
}

func (s *testServer) get(t *testing.T, path string) *Response {
	return s.do(t, http.MethodGet, path, nil)
}

// createBook 建书并返回ISBN
func (s *testServer) createBook(t *testing.T, isbn, title string) string {
	t.Helper()
	resp := s.post(t, "/api/v1/books", map[string]interface{}{
		"isbn":             isbn,
		"title":            title,
		"publication_year": 2016,
		"authors":          []map[string]string{{"name": "Alan A. A. Donovan"}},
	})
	require.Equal(t, http.StatusCreated, resp.status, "建书失败: %s", resp.Message)
	return isbn
}

func (s *testServer) createCustomer(t *testing.T, first, last string) uint {
	t.Helper()
	resp := s.post(t, "/api/v1/customers", map[string]string{"first_name": first, "last_name": last})
	require.Equal(t, http.StatusCreated, resp.status, "创建顾客失败: %s", resp.Message)
	var data struct {
		ID uint `json:"customer_id"`
	}
	resp.Decode(t, &data)
	return data.ID
}

func (s *testServer) provision(t *testing.T, isbn string, qty int, price string, rentable bool) []uint {
	t.Helper()
	resp := s.post(t, "/api/v1/books/"+isbn+"/copies", map[string]interface{}{
		"quantity":   qty,
		"unit_price": price,
		"rentable":   rentable,
	})
	require.Equal(t, http.StatusCreated, resp.status, "入库失败: %s", resp.Message)
	var data struct {
		CopyIDs []uint `json:"copy_ids"`
	}
	resp.Decode(t, &data)
	require.Len(t, data.CopyIDs, qty)
	return data.CopyIDs
}

func (s *testServer) available(t *testing.T, isbn string) int64 {
	t.Helper()
	resp := s.get(t, "/api/v1/books/"+isbn+"/available")
	require.Equal(t, http.StatusOK, resp.status, resp.Message)
	var data struct {
		Available int64 `json:"available"`
	}
	resp.Decode(t, &data)
	return data.Available
}

// orderData 下单结果中测试关心的字段
type orderData struct {
	ID              uint             `json:"order_id"`
	OrderNo         string           `json:"order_no"`
	PromotionID     *uint            `json:"promotion_id"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	Amount          decimal.Decimal  `json:"amount"`
	ItemCount       int              `json:"item_count"`
	Lines           []struct {
		Kind      string          `json:"kind"`
		ISBN      string          `json:"isbn"`
		ItemID    uint            `json:"item_id"`
		Quantity  int             `json:"quantity"`
		UnitPrice decimal.Decimal `json:"unit_price"`
		Subtotal  decimal.Decimal `json:"subtotal"`
		CopyIDs   []uint          `json:"copy_ids"`
	} `json:"lines"`
}

type rentalData struct {
	ID         uint       `json:"rental_id"`
	CopyID     uint       `json:"copy_id"`
	ISBN       string     `json:"isbn"`
	RentDate   time.Time  `json:"rent_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`
}

var isbnSeq int

// nextISBN 每个用例使用不同的ISBN
func nextISBN() string {
	isbnSeq++
	return fmt.Sprintf("978000000%04d", isbnSeq)
}
