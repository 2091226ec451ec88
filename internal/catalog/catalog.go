package catalog

import (
	"github.com/noah-isme/backend-salon/internal/pricing"
)

// ServiceType groups services on the menu.
type ServiceType string

const (
	TypeNails        ServiceType = "nails"
	TypeLashes       ServiceType = "lashes"
	TypeHandCare     ServiceType = "hand_care"
	TypeTea          ServiceType = "tea"
	TypeConsultation ServiceType = "consultation"
)

// Category groups retail products.
type Category string

const (
	CategoryCrystal  Category = "crystal"
	CategorySupplies Category = "hand_care_supplies"
	CategoryOther    Category = "other"
)

// Default values for items created without them.
const (
	DefaultDurationMin  = 60
	DefaultProductName  = "未命名商品"
	DefaultProductImage = "https://picsum.photos/200"
)

var (
	// DefaultServiceCommission is stored on new services. Payouts use fixed per-type rates instead.
	DefaultServiceCommission = pricing.RateFromFloat(0.10)
	// DefaultProductCommission is stored on new products.
	DefaultProductCommission = pricing.RateFromFloat(0.05)
)

// Service is a bookable treatment. CommissionRate is informational.
type Service struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Price          pricing.Money `json:"price"`
	DurationMin    int           `json:"durationMin"`
	Type           ServiceType   `json:"type"`
	CommissionRate pricing.Rate  `json:"commissionRate"`
}

// Product is a retail item with tracked stock. CostPrice is for reporting only.
type Product struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	CostPrice      pricing.Money `json:"costPrice"`
	SellingPrice   pricing.Money `json:"sellingPrice"`
	Stock          int           `json:"stock"`
	Image          string        `json:"image"`
	Category       Category      `json:"category"`
	CommissionRate pricing.Rate  `json:"commissionRate"`
}

// FindService returns the service with the given id.
func FindService(services []Service, id string) (Service, bool) {
	for _, s := range services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

// FindProduct returns the product with the given id.
func FindProduct(products []Product, id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// DefaultServices returns the menu a fresh install starts with.
func DefaultServices() []Service {
	svc := func(id, name string, price pricing.Money, minutes int, typ ServiceType) Service {
		return Service{ID: id, Name: name, Price: price, DurationMin: minutes, Type: typ, CommissionRate: DefaultServiceCommission}
	}
	return []Service{
		svc("srv1", "极致单色美甲", 398, 75, TypeNails),
		svc("srv2", "日式极简法式", 468, 90, TypeNails),
		svc("srv3", "日式手绘艺术", 688, 120, TypeNails),
		svc("srv4", "极光魔镜粉", 428, 80, TypeNails),
		svc("srv5", "日式晕染/琥珀", 528, 100, TypeNails),
		svc("srv6", "本甲建构加固", 328, 60, TypeNails),
		svc("srv7", "海蓝之谜奢华手护", 798, 60, TypeHandCare),
		svc("srv8", "鱼子酱抗衰手护", 588, 50, TypeHandCare),
		svc("srv9", "日式空气感美睫", 588, 90, TypeLashes),
		svc("srv10", "特调养生茶饮", 68, 30, TypeTea),
		svc("srv11", "塔罗牌占卜", 500, 60, TypeConsultation),
		svc("srv12", "紫微斗数咨询", 888, 120, TypeConsultation),
	}
}
