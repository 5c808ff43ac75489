// models.go
// Defines the core data structures shared by the fuelstation API and its Firestore collections.

package models

import (
	"time"
)

// ProductCategory groups products for reporting (fuel vs lubricants etc.).
type ProductCategory string

const (
	CategoryFuel      ProductCategory = "FUEL"
	CategoryLubricant ProductCategory = "LUBRICANT"
	CategoryOther     ProductCategory = "OTHER"
)

// Product is a sellable item. Fuel products are linked to one or more tanks.
type Product struct {
	ProductID       string          `firestore:"product_id" json:"product_id"`
	Name            string          `firestore:"name" json:"name"`
	Category        ProductCategory `firestore:"category" json:"category"`
	Unit            string          `firestore:"unit" json:"unit"` // usually "ltr"
	PurchasePrice   float64         `firestore:"purchase_price" json:"purchase_price"`
	SalesPrice      float64         `firestore:"sales_price" json:"sales_price"`
	OpeningQuantity float64         `firestore:"opening_quantity" json:"opening_quantity"`
	CreatedAt       time.Time       `firestore:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `firestore:"updated_at" json:"updated_at"`
}

// Tank holds the book stock for one fuel product.
//
// RemainingStock is the book value, maintained by the stock ledger; the
// physically measured value comes from dip entries. The ledger keeps
// 0 <= RemainingStock <= Capacity after every committed write.
type Tank struct {
	TankID         string    `firestore:"tank_id" json:"tank_id"`
	Name           string    `firestore:"name" json:"name"`
	ProductID      string    `firestore:"product_id" json:"product_id"`
	Capacity       float64   `firestore:"capacity" json:"capacity"`               // liters
	RemainingStock float64   `firestore:"remaining_stock" json:"remaining_stock"` // liters
	AlertThreshold float64   `firestore:"alert_threshold" json:"alert_threshold"` // liters
	UpdatedAt      time.Time `firestore:"updated_at" json:"updated_at"`
}

// DispenserStatus is the operational state of a pump island.
type DispenserStatus string

const (
	DispenserActive      DispenserStatus = "ACTIVE"
	DispenserMaintenance DispenserStatus = "MAINTENANCE"
	DispenserInactive    DispenserStatus = "INACTIVE"
)

// Dispenser is a pump unit carrying one or more nozzles.
type Dispenser struct {
	DispenserID string          `firestore:"dispenser_id" json:"dispenser_id"`
	Name        string          `firestore:"name" json:"name"`
	Location    string          `firestore:"location" json:"location"`
	Status      DispenserStatus `firestore:"status" json:"status"`
}

// Nozzle is a metering point on a dispenser. LastReading is the cumulative
// meter value and never decreases; TotalSales is the cumulative sold amount.
type Nozzle struct {
	NozzleID    string    `firestore:"nozzle_id" json:"nozzle_id"`
	Name        string    `firestore:"name" json:"name"`
	DispenserID string    `firestore:"dispenser_id" json:"dispenser_id"`
	ProductID   string    `firestore:"product_id" json:"product_id"`
	TankID      string    `firestore:"tank_id" json:"tank_id"`
	LastReading float64   `firestore:"last_reading" json:"last_reading"`
	TotalSales  float64   `firestore:"total_sales" json:"total_sales"`
	UpdatedAt   time.Time `firestore:"updated_at" json:"updated_at"`
}

// Reading is the immutable sale event appended by the stock ledger.
// Records are never updated or deleted in normal flow.
type Reading struct {
	ReadingID       string    `firestore:"reading_id" json:"reading_id"`
	NozzleID        string    `firestore:"nozzle_id" json:"nozzle_id"`
	DispenserID     string    `firestore:"dispenser_id" json:"dispenser_id"`
	ProductID       string    `firestore:"product_id" json:"product_id"`
	TankID          string    `firestore:"tank_id" json:"tank_id"`
	PreviousReading float64   `firestore:"previous_reading" json:"previous_reading"`
	CurrentReading  float64   `firestore:"current_reading" json:"current_reading"`
	SalesVolume     float64   `firestore:"sales_volume" json:"sales_volume"` // liters
	UnitPrice       float64   `firestore:"unit_price" json:"unit_price"`
	SalesAmount     float64   `firestore:"sales_amount" json:"sales_amount"`
	RecordedBy      string    `firestore:"recorded_by" json:"recorded_by"`
	Timestamp       time.Time `firestore:"timestamp" json:"timestamp"`
}

// DipChartEntry is one physical dipstick measurement of a tank, with the
// depth already converted to liters through the calibration table.
type DipChartEntry struct {
	EntryID    string    `firestore:"entry_id" json:"entry_id"`
	TankID     string    `firestore:"tank_id" json:"tank_id"`
	DipMM      float64   `firestore:"dip_mm" json:"dip_mm"`
	DipInches  float64   `firestore:"dip_inches" json:"dip_inches"`
	DipLiters  float64   `firestore:"dip_liters" json:"dip_liters"`
	RecordedBy string    `firestore:"recorded_by" json:"recorded_by"`
	RecordedAt time.Time `firestore:"recorded_at" json:"recorded_at"`
}

// InvoiceKind distinguishes the four invoice ledgers.
type InvoiceKind string

const (
	InvoicePurchase       InvoiceKind = "PURCHASE"
	InvoicePurchaseReturn InvoiceKind = "PURCHASE_RETURN"
	InvoiceSale           InvoiceKind = "SALE"
	InvoiceSaleReturn     InvoiceKind = "SALE_RETURN"
)

// Invoice is a purchase/sale document against an account. Invoices are kept
// independent of the reading ledger; tank fills are recorded separately as
// deliveries (see the ledger package).
type Invoice struct {
	InvoiceID string      `firestore:"invoice_id" json:"invoice_id"`
	Kind      InvoiceKind `firestore:"kind" json:"kind"`
	AccountID string      `firestore:"account_id" json:"account_id"` // supplier or customer
	ProductID string      `firestore:"product_id" json:"product_id"`
	TankID    string      `firestore:"tank_id,omitempty" json:"tank_id,omitempty"` // purchase side only
	Quantity  float64     `firestore:"quantity" json:"quantity"`
	UnitPrice float64     `firestore:"unit_price" json:"unit_price"`
	Total     float64     `firestore:"total" json:"total"`
	Date      time.Time   `firestore:"date" json:"date"`
	Notes     string      `firestore:"notes,omitempty" json:"notes,omitempty"`
	CreatedBy string      `firestore:"created_by" json:"created_by"`
	CreatedAt time.Time   `firestore:"created_at" json:"created_at"`
}

// AccountKind classifies ledger parties.
type AccountKind string

const (
	AccountCustomer AccountKind = "CUSTOMER"
	AccountSupplier AccountKind = "SUPPLIER"
	AccountBank     AccountKind = "BANK"
	AccountCash     AccountKind = "CASH"
)

// Account is a party ledger (customer, supplier, bank or cash book).
type Account struct {
	AccountID      string      `firestore:"account_id" json:"account_id"`
	Name           string      `firestore:"name" json:"name"`
	Kind           AccountKind `firestore:"kind" json:"kind"`
	Phone          string      `firestore:"phone,omitempty" json:"phone,omitempty"`
	Address        string      `firestore:"address,omitempty" json:"address,omitempty"`
	OpeningBalance float64     `firestore:"opening_balance" json:"opening_balance"`
	CreatedAt      time.Time   `firestore:"created_at" json:"created_at"`
}

// VoucherKind distinguishes money in from money out.
type VoucherKind string

const (
	VoucherPayment VoucherKind = "PAYMENT"
	VoucherReceipt VoucherKind = "RECEIPT"
)

// Voucher records a payment or receipt against an account.
type Voucher struct {
	VoucherID string      `firestore:"voucher_id" json:"voucher_id"`
	Kind      VoucherKind `firestore:"kind" json:"kind"`
	AccountID string      `firestore:"account_id" json:"account_id"`
	Amount    float64     `firestore:"amount" json:"amount"`
	Method    string      `firestore:"method,omitempty" json:"method,omitempty"` // cash, bank, mobile
	Reference string      `firestore:"reference,omitempty" json:"reference,omitempty"`
	Date      time.Time   `firestore:"date" json:"date"`
	CreatedBy string      `firestore:"created_by" json:"created_by"`
	CreatedAt time.Time   `firestore:"created_at" json:"created_at"`
}

// Settings is the single company profile document consumed by report
// headers and exports.
type Settings struct {
	CompanyName string `firestore:"company_name" json:"company_name"`
	Address     string `firestore:"address" json:"address"`
	Phone       string `firestore:"phone" json:"phone"`
	Email       string `firestore:"email" json:"email"`
	LogoURL     string `firestore:"logo_url,omitempty" json:"logo_url,omitempty"`
	Currency    string `firestore:"currency" json:"currency"`
}

// AuditLog is an append-only record of privileged operations.
type AuditLog struct {
	LogID     string    `firestore:"log_id" json:"log_id"`
	Timestamp time.Time `firestore:"timestamp" json:"timestamp"`
	UserID    string    `firestore:"user_id" json:"user_id"`
	Action    string    `firestore:"action" json:"action"`
	Details   string    `firestore:"details" json:"details"`
}

// UserRole defines the access level of a user.
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleManager   UserRole = "MANAGER"
	RoleAttendant UserRole = "ATTENDANT"
)

// User represents an authenticated back-office user. Roles are enforced
// server-side on every privileged operation; nothing is trusted from
// client-held claims beyond the token subject.
type User struct {
	UserID    string    `firestore:"user_id" json:"user_id"`
	Username  string    `firestore:"username" json:"username"`
	FullName  string    `firestore:"full_name,omitempty" json:"full_name,omitempty"`
	Role      UserRole  `firestore:"role" json:"role"`
	Active    bool      `firestore:"active" json:"active"`
	LastLogin time.Time `firestore:"last_login" json:"last_login"`
	CreatedAt time.Time `firestore:"created_at" json:"created_at"`
}
