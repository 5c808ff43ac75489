package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"fuelstation/audit"
	"fuelstation/db"
	"fuelstation/middleware"
	"fuelstation/models"
)

// LedgerDocsHandler serves the bookkeeping documents: invoices, vouchers
// and party accounts.
type LedgerDocsHandler struct {
	store *db.Store
	audit *audit.Recorder
	log   *logrus.Logger
}

func NewLedgerDocsHandler(store *db.Store, rec *audit.Recorder, log *logrus.Logger) *LedgerDocsHandler {
	return &LedgerDocsHandler{store: store, audit: rec, log: log}
}

// --- Invoices ---

type InvoiceRequest struct {
	Kind      models.InvoiceKind `json:"kind" validate:"required,oneof=PURCHASE PURCHASE_RETURN SALE SALE_RETURN"`
	AccountID string             `json:"account_id" validate:"required"`
	ProductID string             `json:"product_id" validate:"required"`
	TankID    string             `json:"tank_id"`
	Quantity  float64            `json:"quantity" validate:"gt=0"`
	UnitPrice float64            `json:"unit_price" validate:"gt=0"`
	Date      time.Time          `json:"date" validate:"required"`
	Notes     string             `json:"notes"`
}

// CreateInvoice records an invoice document. Purchase invoices do not move
// tank stock; fuel fills are recorded as explicit deliveries and the two
// are reconciled through dip measurements.
func (h *LedgerDocsHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req InvoiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.store.GetAccount(r.Context(), req.AccountID); err != nil {
		writeError(w, "Account not found", http.StatusNotFound)
		return
	}
	if _, err := h.store.GetProduct(r.Context(), req.ProductID); err != nil {
		writeError(w, "Product not found", http.StatusNotFound)
		return
	}
	if req.TankID != "" {
		if _, err := h.store.GetTank(r.Context(), req.TankID); err != nil {
			writeError(w, "Tank not found", http.StatusNotFound)
			return
		}
	}

	total := decimal.NewFromFloat(req.Quantity).
		Mul(decimal.NewFromFloat(req.UnitPrice)).
		Round(2).
		InexactFloat64()

	inv := &models.Invoice{
		InvoiceID: "INV-" + uuid.NewString(),
		Kind:      req.Kind,
		AccountID: req.AccountID,
		ProductID: req.ProductID,
		TankID:    req.TankID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Total:     total,
		Date:      req.Date,
		Notes:     req.Notes,
		CreatedBy: user.UserID,
		CreatedAt: time.Now(),
	}

	if err := h.store.CreateInvoice(r.Context(), inv); err != nil {
		h.log.Errorf("failed to create invoice: %v", err)
		writeError(w, "Failed to create invoice", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), user.UserID, "INVOICE_CREATE",
		fmt.Sprintf("%s invoice %s for %.2f", inv.Kind, inv.InvoiceID, inv.Total))
	writeJSON(w, inv)
}

// ListInvoices returns one invoice ledger, selected by the kind query param.
func (h *LedgerDocsHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	kind := models.InvoiceKind(r.URL.Query().Get("kind"))
	switch kind {
	case models.InvoicePurchase, models.InvoicePurchaseReturn, models.InvoiceSale, models.InvoiceSaleReturn:
	default:
		writeError(w, "kind must be one of PURCHASE, PURCHASE_RETURN, SALE, SALE_RETURN", http.StatusBadRequest)
		return
	}

	invoices, err := h.store.GetInvoicesByKind(r.Context(), kind)
	if err != nil {
		h.log.Errorf("failed to get invoices: %v", err)
		writeError(w, "Failed to retrieve invoices", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"invoices": invoices,
		"count":    len(invoices),
	})
}

func (h *LedgerDocsHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req deleteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.store.DeleteInvoice(r.Context(), req.ID); err != nil {
		h.log.Errorf("failed to delete invoice: %v", err)
		writeError(w, "Failed to delete invoice", http.StatusInternalServerError)
		return
	}
	h.audit.Event(r.Context(), user.UserID, "INVOICE_DELETE", fmt.Sprintf("invoice %s", req.ID))
	writeJSON(w, map[string]string{"message": "Invoice deleted successfully"})
}

// --- Vouchers ---

type VoucherRequest struct {
	Kind      models.VoucherKind `json:"kind" validate:"required,oneof=PAYMENT RECEIPT"`
	AccountID string             `json:"account_id" validate:"required"`
	Amount    float64            `json:"amount" validate:"gt=0"`
	Method    string             `json:"method"`
	Reference string             `json:"reference"`
	Date      time.Time          `json:"date" validate:"required"`
}

func (h *LedgerDocsHandler) CreateVoucher(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req VoucherRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if _, err := h.store.GetAccount(r.Context(), req.AccountID); err != nil {
		writeError(w, "Account not found", http.StatusNotFound)
		return
	}

	v := &models.Voucher{
		VoucherID: "VCH-" + uuid.NewString(),
		Kind:      req.Kind,
		AccountID: req.AccountID,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		Date:      req.Date,
		CreatedBy: user.UserID,
		CreatedAt: time.Now(),
	}
	if err := h.store.CreateVoucher(r.Context(), v); err != nil {
		h.log.Errorf("failed to create voucher: %v", err)
		writeError(w, "Failed to create voucher", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), user.UserID, "VOUCHER_CREATE",
		fmt.Sprintf("%s voucher %s for %.2f", v.Kind, v.VoucherID, v.Amount))
	writeJSON(w, v)
}

func (h *LedgerDocsHandler) ListVouchers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	vouchers, err := h.store.GetAllVouchers(r.Context())
	if err != nil {
		h.log.Errorf("failed to get vouchers: %v", err)
		writeError(w, "Failed to retrieve vouchers", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"vouchers": vouchers,
		"count":    len(vouchers),
	})
}

func (h *LedgerDocsHandler) DeleteVoucher(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req deleteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.store.DeleteVoucher(r.Context(), req.ID); err != nil {
		h.log.Errorf("failed to delete voucher: %v", err)
		writeError(w, "Failed to delete voucher", http.StatusInternalServerError)
		return
	}
	h.audit.Event(r.Context(), user.UserID, "VOUCHER_DELETE", fmt.Sprintf("voucher %s", req.ID))
	writeJSON(w, map[string]string{"message": "Voucher deleted successfully"})
}

// --- Accounts ---

type AccountRequest struct {
	AccountID      string             `json:"account_id"`
	Name           string             `json:"name" validate:"required"`
	Kind           models.AccountKind `json:"kind" validate:"required,oneof=CUSTOMER SUPPLIER BANK CASH"`
	Phone          string             `json:"phone"`
	Address        string             `json:"address"`
	OpeningBalance float64            `json:"opening_balance"`
}

func (h *LedgerDocsHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	accounts, err := h.store.GetAllAccounts(r.Context())
	if err != nil {
		h.log.Errorf("failed to get accounts: %v", err)
		writeError(w, "Failed to retrieve accounts", http.StatusInternalServerError)
		return
	}
	writeJSON(w, accounts)
}

func (h *LedgerDocsHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req AccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	a := &models.Account{
		AccountID:      req.AccountID,
		Name:           req.Name,
		Kind:           req.Kind,
		Phone:          req.Phone,
		Address:        req.Address,
		OpeningBalance: req.OpeningBalance,
		CreatedAt:      time.Now(),
	}
	if a.AccountID == "" {
		a.AccountID = "ACC-" + uuid.NewString()
	}

	if err := h.store.CreateAccount(r.Context(), a); err != nil {
		h.log.Errorf("failed to create account: %v", err)
		writeError(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), user.UserID, "ACCOUNT_CREATE", fmt.Sprintf("account %s (%s)", a.Name, a.AccountID))
	writeJSON(w, a)
}

func (h *LedgerDocsHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req AccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.AccountID == "" {
		writeError(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	a, err := h.store.GetAccount(r.Context(), req.AccountID)
	if err != nil {
		writeError(w, "Account not found", http.StatusNotFound)
		return
	}
	a.Name = req.Name
	a.Kind = req.Kind
	a.Phone = req.Phone
	a.Address = req.Address
	a.OpeningBalance = req.OpeningBalance

	if err := h.store.UpdateAccount(r.Context(), a); err != nil {
		h.log.Errorf("failed to update account: %v", err)
		writeError(w, "Failed to update account", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), user.UserID, "ACCOUNT_UPDATE", fmt.Sprintf("account %s", a.AccountID))
	writeJSON(w, a)
}

func (h *LedgerDocsHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req deleteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.store.DeleteAccount(r.Context(), req.ID); err != nil {
		h.log.Errorf("failed to delete account: %v", err)
		writeError(w, "Failed to delete account", http.StatusInternalServerError)
		return
	}
	h.audit.Event(r.Context(), user.UserID, "ACCOUNT_DELETE", fmt.Sprintf("account %s", req.ID))
	writeJSON(w, map[string]string{"message": "Account deleted successfully"})
}
