package checkout

import (
	"time"

	"github.com/noah-isme/backend-salon/internal/pricing"
)

// PaymentMethod is how a transaction was paid.
type PaymentMethod string

const (
	PayWeChat     PaymentMethod = "wechat"
	PayAlipay     PaymentMethod = "alipay"
	PayDianping   PaymentMethod = "dianping"
	PayMeituan    PaymentMethod = "meituan"
	PayMemberCard PaymentMethod = "member_card"
)

var methodLabels = map[PaymentMethod]string{
	PayWeChat:     "微信支付",
	PayAlipay:     "支付宝",
	PayDianping:   "大众点评核销",
	PayMeituan:    "美团核销",
	PayMemberCard: "会员卡扣款",
}

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	_, ok := methodLabels[m]
	return ok
}

// Label returns the receipt label for m.
func (m PaymentMethod) Label() string {
	return methodLabels[m]
}

// ItemType tags a settled line.
type ItemType string

const (
	ItemService   ItemType = "service"
	ItemProduct   ItemType = "product"
	ItemCardTopUp ItemType = "card_topup"
)

// Status of a transaction. Settlement only produces completed transactions.
type Status string

const StatusCompleted Status = "completed"

// Item is one settled line.
type Item struct {
	Name      string        `json:"name"`
	Type      ItemType      `json:"type"`
	Price     pricing.Money `json:"price"`
	StaffID   string        `json:"staffId,omitempty"`
	ProductID string        `json:"productId,omitempty"`
}

// Transaction is an immutable sale record. TotalAmount equals the sum of item prices.
type Transaction struct {
	ID            string        `json:"id"`
	Date          time.Time     `json:"date"`
	CustomerName  string        `json:"customerName"`
	MemberID      string        `json:"memberId,omitempty"`
	Items         []Item        `json:"items"`
	TotalAmount   pricing.Money `json:"totalAmount"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Status        Status        `json:"status"`
}

// ProductIDs returns the product id of every product item, one entry per unit.
func (tx Transaction) ProductIDs() []string {
	var ids []string
	for _, it := range tx.Items {
		if it.Type == ItemProduct && it.ProductID != "" {
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}
