package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const placeholderImage = "/placeholder-image.jpg"

// Price is a monetary amount in minor units (kuruş). The backend serialises
// prices as JSON numbers with up to two decimal places; decoding goes through
// the raw decimal string so values never round-trip a float64.
type Price int64

// UnmarshalJSON decodes a JSON number or numeric string into minor units.
func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*p = 0
		return nil
	}
	parsed, err := ParsePrice(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalJSON encodes the price back as a decimal number.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal()), nil
}

// Decimal renders the price as a plain decimal string, e.g. "45.00".
func (p Price) Decimal() string {
	minor := int64(p)
	neg := minor < 0
	if neg {
		minor = -minor
	}
	s := fmt.Sprintf("%d.%02d", minor/100, minor%100)
	if neg {
		return "-" + s
	}
	return s
}

// ParsePrice converts a decimal string with at most two fraction digits into
// minor units.
func ParsePrice(raw string) (Price, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty price", ErrInvalidResponse)
	}
	whole, frac, _ := strings.Cut(raw, ".")
	major, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q", ErrInvalidResponse, raw)
	}
	var cents int64
	if frac != "" {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: price %q", ErrInvalidResponse, raw)
		}
	}
	minor := major*100 + cents
	if strings.HasPrefix(whole, "-") {
		minor = major*100 - cents
	}
	return Price(minor), nil
}

// AuthResult is the normalised authentication response.
type AuthResult struct {
	Token       string
	UserID      string
	Email       string
	DisplayName string
	Role        string
}

// RegisterRequest carries the fields the registration endpoint expects.
type RegisterRequest struct {
	Email       string
	Password    string
	DisplayName string
	Phone       string
	Address     string
}

// Product is the normalised catalog entry.
type Product struct {
	ID           string
	Name         string
	Price        Price
	Description  string
	ImageURL     string
	Stock        int
	Active       bool
	CategoryID   string
	CategoryName string
}

// ProductInput carries the writable product fields for admin create/update.
type ProductInput struct {
	Name        string
	Price       Price
	Description string
	ImageURL    string
	Stock       int
	CategoryID  string
}

// Category is the normalised category entry.
type Category struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Active      bool
	CreatedAt   time.Time
}

// CategoryInput carries the writable category fields.
type CategoryInput struct {
	Name        string
	Description string
	Icon        string
}

// CartEntry is one authoritative cart line as reported by the backend.
type CartEntry struct {
	Product  Product
	Quantity int
}

// OrderLine is one line of a placed order.
type OrderLine struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   Price
}

// Order is the normalised order summary.
type Order struct {
	ID          string
	UserID      string
	UserName    string
	PlacedAt    time.Time
	Status      string
	TotalAmount Price
	Lines       []OrderLine
}

// Wire payloads. Field names follow the backend's JSON contract; anything the
// synchronizer or session manager consumes is normalised first.

type authPayload struct {
	Token string      `json:"token"`
	ID    json.Number `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  string      `json:"role"`
}

func (p authPayload) normalize() (AuthResult, error) {
	token := strings.TrimSpace(p.Token)
	if token == "" {
		return AuthResult{}, fmt.Errorf("%w: auth response missing token", ErrInvalidResponse)
	}
	userID := strings.TrimSpace(p.ID.String())
	if userID == "" {
		// The backend occasionally omits the id on legacy accounts.
		userID = "1"
	}
	return AuthResult{
		Token:       token,
		UserID:      userID,
		Email:       strings.TrimSpace(p.Email),
		DisplayName: strings.TrimSpace(p.Name),
		Role:        strings.ToUpper(strings.TrimSpace(p.Role)),
	}, nil
}

type productPayload struct {
	ID           json.Number `json:"id"`
	Name         string      `json:"isim"`
	Price        Price       `json:"fiyat"`
	Description  string      `json:"açıklama"`
	ImageURL     string      `json:"resimUrl"`
	Stock        int         `json:"stok"`
	Active       *bool       `json:"aktif"`
	CategoryID   json.Number `json:"categoryId"`
	CategoryName string      `json:"categoryName"`
	Category     *struct {
		ID   json.Number `json:"id"`
		Name string      `json:"name"`
	} `json:"category"`
}

func (p productPayload) normalize() (Product, error) {
	id := strings.TrimSpace(p.ID.String())
	if id == "" {
		return Product{}, fmt.Errorf("%w: product missing id", ErrInvalidResponse)
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return Product{}, fmt.Errorf("%w: product %s missing name", ErrInvalidResponse, id)
	}
	if p.Price < 0 {
		return Product{}, fmt.Errorf("%w: product %s has negative price", ErrInvalidResponse, id)
	}

	categoryID := strings.TrimSpace(p.CategoryID.String())
	categoryName := strings.TrimSpace(p.CategoryName)
	if p.Category != nil {
		if categoryID == "" {
			categoryID = strings.TrimSpace(p.Category.ID.String())
		}
		if categoryName == "" {
			categoryName = strings.TrimSpace(p.Category.Name)
		}
	}

	image := strings.TrimSpace(p.ImageURL)
	if image == "" {
		image = placeholderImage
	}

	active := true
	if p.Active != nil {
		active = *p.Active
	}

	return Product{
		ID:           id,
		Name:         name,
		Price:        p.Price,
		Description:  strings.TrimSpace(p.Description),
		ImageURL:     image,
		Stock:        p.Stock,
		Active:       active,
		CategoryID:   categoryID,
		CategoryName: categoryName,
	}, nil
}

type productInputPayload struct {
	Name        string `json:"isim"`
	Price       Price  `json:"fiyat"`
	Description string `json:"açıklama"`
	ImageURL    string `json:"resimUrl"`
	Stock       int    `json:"stok"`
	CategoryID  int64  `json:"categoryId"`
}

type categoryPayload struct {
	ID          json.Number `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Active      *bool       `json:"aktif"`
	CreatedAt   string      `json:"createdAt"`
}

func (p categoryPayload) normalize() (Category, error) {
	id := strings.TrimSpace(p.ID.String())
	if id == "" {
		return Category{}, fmt.Errorf("%w: category missing id", ErrInvalidResponse)
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return Category{}, fmt.Errorf("%w: category %s missing name", ErrInvalidResponse, id)
	}
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	return Category{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(p.Description),
		Icon:        strings.TrimSpace(p.Icon),
		Active:      active,
		CreatedAt:   parseBackendTime(p.CreatedAt),
	}, nil
}

type cartEntryPayload struct {
	Product  *productPayload `json:"product"`
	Quantity int             `json:"quantity"`
}

func (p cartEntryPayload) normalize() (CartEntry, error) {
	if p.Product == nil {
		return CartEntry{}, fmt.Errorf("%w: cart entry missing product", ErrInvalidResponse)
	}
	product, err := p.Product.normalize()
	if err != nil {
		return CartEntry{}, err
	}
	if p.Quantity < 1 {
		return CartEntry{}, fmt.Errorf("%w: cart entry for product %s has quantity %d", ErrInvalidResponse, product.ID, p.Quantity)
	}
	return CartEntry{Product: product, Quantity: p.Quantity}, nil
}

type orderLinePayload struct {
	ProductID   json.Number `json:"productId"`
	ProductName string      `json:"productName"`
	Quantity    int         `json:"quantity"`
	Price       Price       `json:"price"`
}

type orderPayload struct {
	ID          json.Number        `json:"id"`
	UserID      json.Number        `json:"userId"`
	UserName    string             `json:"userName"`
	OrderDate   string             `json:"orderDate"`
	Status      string             `json:"status"`
	TotalAmount Price              `json:"totalAmount"`
	Details     []orderLinePayload `json:"orderDetails"`
}

func (p orderPayload) normalize() (Order, error) {
	id := strings.TrimSpace(p.ID.String())
	if id == "" {
		return Order{}, fmt.Errorf("%w: order missing id", ErrInvalidResponse)
	}
	lines := make([]OrderLine, 0, len(p.Details))
	for _, line := range p.Details {
		lines = append(lines, OrderLine{
			ProductID:   strings.TrimSpace(line.ProductID.String()),
			ProductName: strings.TrimSpace(line.ProductName),
			Quantity:    line.Quantity,
			UnitPrice:   line.Price,
		})
	}
	return Order{
		ID:          id,
		UserID:      strings.TrimSpace(p.UserID.String()),
		UserName:    strings.TrimSpace(p.UserName),
		PlacedAt:    parseBackendTime(p.OrderDate),
		Status:      strings.TrimSpace(p.Status),
		TotalAmount: p.TotalAmount,
		Lines:       lines,
	}, nil
}

// parseBackendTime accepts the handful of timestamp layouts the backend emits.
func parseBackendTime(val string) time.Time {
	val = strings.TrimSpace(val)
	if val == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999", // LocalDateTime without zone
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, val); err == nil {
			return ts
		}
	}
	return time.Time{}
}
