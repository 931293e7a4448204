package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/vanshika/orders/backend/internal/domain"
	"github.com/vanshika/orders/backend/internal/payment"
)

// Customer is the buyer embedded in a generated order.
type Customer struct {
	ID      string  `json:"customerId"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address Address `json:"address"`
}

// Address is a shipping address.
type Address struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// LineItem is a single product in an order.
type LineItem struct {
	SKU      string  `json:"sku"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is the payload carried in TransactionRequest.Order.
type Order struct {
	ID        string     `json:"orderId"`
	Customer  Customer   `json:"customer"`
	Items     []LineItem `json:"items"`
	Cost      float64    `json:"cost"`
	Currency  string     `json:"currency"`
	PlacedAt  time.Time  `json:"placedAt"`
	Channel   string     `json:"channel"`
	IPAddress string     `json:"ipAddress"`
}

// Generator produces synthetic transaction requests.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	nameFragments nameFragments
	customers     []Customer
	now           func() time.Time
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	if cfg.NumRequests <= 0 {
		cfg.NumRequests = DefaultConfig().NumRequests
	}
	if cfg.RepeatCustomerChance < 0 {
		cfg.RepeatCustomerChance = 0
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		nameFragments: defaultNameFragments(),
		now:           time.Now,
	}
}

// Generate synthesises requests. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) ([]domain.TransactionRequest, error) {
	reqs := make([]domain.TransactionRequest, g.cfg.NumRequests)
	now := g.now().UTC()

	for i := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		order := g.randomOrder(i, now)
		orderJSON, err := json.Marshal(order)
		if err != nil {
			return nil, fmt.Errorf("encode order %s: %w", order.ID, err)
		}

		method := g.randomMethod()
		var details json.RawMessage
		if g.rand.Float64() >= g.cfg.IncompleteChance {
			details, err = json.Marshal(g.paymentDetails(method, order.Customer))
			if err != nil {
				return nil, fmt.Errorf("encode payment for %s: %w", order.ID, err)
			}
		}

		reqs[i] = domain.TransactionRequest{
			Order:         orderJSON,
			PaymentMethod: method,
			Payment:       details,
		}
	}
	return reqs, nil
}

func (g *Generator) randomOrder(i int, now time.Time) Order {
	items := make([]LineItem, 1+g.rand.Intn(4))
	var cost float64
	for j := range items {
		items[j] = LineItem{
			SKU:      fmt.Sprintf("SKU-%05d", g.rand.Intn(100000)),
			Quantity: 1 + g.rand.Intn(3),
			Price:    float64(100+g.rand.Intn(49900)) / 100,
		}
		cost += items[j].Price * float64(items[j].Quantity)
	}

	return Order{
		ID:        fmt.Sprintf("ORD-%07d", i+1),
		Customer:  g.customer(),
		Items:     items,
		Cost:      float64(int64(cost*100+0.5)) / 100,
		Currency:  "INR",
		PlacedAt:  now.Add(-time.Duration(g.rand.Intn(60*24)) * time.Minute),
		Channel:   g.randomChannel(),
		IPAddress: g.randomIP(),
	}
}

func (g *Generator) customer() Customer {
	if len(g.customers) > 0 && g.rand.Float64() < g.cfg.RepeatCustomerChance {
		return g.customers[g.rand.Intn(len(g.customers))]
	}
	id := fmt.Sprintf("CUS-%06d", len(g.customers)+1)
	c := Customer{
		ID:    id,
		Name:  g.randomFullName(),
		Email: g.randomEmail(),
		Phone: g.randomPhone(),
		Address: Address{
			Line1:      g.randomStreet(),
			City:       g.randomCity(),
			State:      g.randomState(),
			PostalCode: fmt.Sprintf("%06d", 100000+g.rand.Intn(900000)),
			Country:    "IN",
		},
	}
	g.customers = append(g.customers, c)
	return c
}

func (g *Generator) randomMethod() string {
	if g.rand.Float64() < g.cfg.UnlistedMethodChance {
		unlisted := []string{"upi", "cod", "netbanking"}
		return unlisted[g.rand.Intn(len(unlisted))]
	}
	listed := []string{payment.MethodPaytm, payment.MethodICICIDebit}
	return listed[g.rand.Intn(len(listed))]
}

func (g *Generator) paymentDetails(method string, c Customer) map[string]any {
	switch method {
	case payment.MethodPaytm:
		return map[string]any{"wallet": c.Phone}
	case payment.MethodICICIDebit:
		return map[string]any{
			"card":   g.randomMaskedNumber(),
			"expiry": fmt.Sprintf("%02d/%02d", 1+g.rand.Intn(12), 25+g.rand.Intn(6)),
			"holder": c.Name,
		}
	default:
		return map[string]any{"reference": fmt.Sprintf("REF-%08d", g.rand.Intn(100000000))}
	}
}

func (g *Generator) randomFullName() string {
	return fmt.Sprintf("%s %s", g.nameFragments.first[g.rand.Intn(len(g.nameFragments.first))],
		g.nameFragments.last[g.rand.Intn(len(g.nameFragments.last))])
}

func (g *Generator) randomEmail() string {
	host := g.nameFragments.domains[g.rand.Intn(len(g.nameFragments.domains))]
	return fmt.Sprintf("%s.%s%d@%s", g.nameFragments.first[g.rand.Intn(len(g.nameFragments.first))],
		g.nameFragments.last[g.rand.Intn(len(g.nameFragments.last))], g.rand.Intn(100), host)
}

func (g *Generator) randomPhone() string {
	return fmt.Sprintf("+91%d%09d", 6+g.rand.Intn(4), g.rand.Intn(1000000000))
}

func (g *Generator) randomStreet() string {
	return fmt.Sprintf("%d %s %s", g.rand.Intn(999)+1,
		g.nameFragments.streetNames[g.rand.Intn(len(g.nameFragments.streetNames))],
		g.nameFragments.streetSuffix[g.rand.Intn(len(g.nameFragments.streetSuffix))])
}

func (g *Generator) randomCity() string {
	return g.nameFragments.cities[g.rand.Intn(len(g.nameFragments.cities))]
}

func (g *Generator) randomState() string {
	return g.nameFragments.states[g.rand.Intn(len(g.nameFragments.states))]
}

func (g *Generator) randomMaskedNumber() string {
	return fmt.Sprintf("%04d********%04d", g.rand.Intn(10000), g.rand.Intn(10000))
}

func (g *Generator) randomIP() string {
	return fmt.Sprintf("%d.%d.%d.%d", g.rand.Intn(223)+1, g.rand.Intn(256), g.rand.Intn(256), g.rand.Intn(256))
}

func (g *Generator) randomChannel() string {
	channels := []string{"WEB", "ANDROID", "IOS"}
	return channels[g.rand.Intn(len(channels))]
}

type nameFragments struct {
	first        []string
	last         []string
	domains      []string
	streetNames  []string
	streetSuffix []string
	cities       []string
	states       []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:        []string{"Aarav", "Vanshika", "Priya", "Rohan", "Ishaan", "Ananya", "Kabir", "Meera", "Arjun", "Diya", "Neha", "Vikram"},
		last:         []string{"Sharma", "Patel", "Iyer", "Reddy", "Gupta", "Nair", "Singh", "Das", "Mehta", "Rao"},
		domains:      []string{"example.com", "mail.com", "shop.in", "orders.dev"},
		streetNames:  []string{"MG", "Brigade", "Linking", "Park", "Residency", "Church", "Station"},
		streetSuffix: []string{"Road", "Street", "Marg", "Lane"},
		cities:       []string{"Bengaluru", "Mumbai", "Delhi", "Chennai", "Hyderabad", "Pune", "Kolkata"},
		states:       []string{"KA", "MH", "DL", "TN", "TG", "WB"},
	}
}
