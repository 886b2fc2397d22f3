package order

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateOrderNo 生成订单号
// 格式：ORD + 下单时间(秒) + 6位随机数，例如 ORD1699248000123456
// 数据库order_no上有唯一索引，极端情况下的冲突会以Conflict错误返回
func GenerateOrderNo(at time.Time) string {
	return fmt.Sprintf("ORD%d%06d", at.Unix(), rand.Intn(1000000))
}
