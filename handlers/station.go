package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fuelstation/audit"
	"fuelstation/db"
	"fuelstation/middleware"
	"fuelstation/models"
)

// StationHandler serves the master-data screens: products, tanks,
// dispensers and nozzles. All of these follow the same thin
// list/create/update/delete shape.
type StationHandler struct {
	store *db.Store
	audit *audit.Recorder
	log   *logrus.Logger
}

func NewStationHandler(store *db.Store, rec *audit.Recorder, log *logrus.Logger) *StationHandler {
	return &StationHandler{store: store, audit: rec, log: log}
}

func (h *StationHandler) actor(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
	}
	return user, ok
}

// --- Products ---

type ProductRequest struct {
	ProductID       string                 `json:"product_id"`
	Name            string                 `json:"name" validate:"required"`
	Category        models.ProductCategory `json:"category" validate:"required,oneof=FUEL LUBRICANT OTHER"`
	Unit            string                 `json:"unit"`
	PurchasePrice   float64                `json:"purchase_price" validate:"gte=0"`
	SalesPrice      float64                `json:"sales_price" validate:"gte=0"`
	OpeningQuantity float64                `json:"opening_quantity" validate:"gte=0"`
}

func (h *StationHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	products, err := h.store.GetAllProducts(r.Context())
	if err != nil {
		h.log.Errorf("failed to get products: %v", err)
		writeError(w, "Failed to retrieve products", http.StatusInternalServerError)
		return
	}
	writeJSON(w, products)
}

func (h *StationHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	now := time.Now()
	product := &models.Product{
		ProductID:       req.ProductID,
		Name:            req.Name,
		Category:        req.Category,
		Unit:            req.Unit,
		PurchasePrice:   req.PurchasePrice,
		SalesPrice:      req.SalesPrice,
		OpeningQuantity: req.OpeningQuantity,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if product.ProductID == "" {
		product.ProductID = "PRD-" + uuid.NewString()
	}
	if product.Unit == "" {
		product.Unit = "ltr"
	}

	if err := h.store.CreateProduct(r.Context(), product); err != nil {
		h.log.Errorf("failed to create product: %v", err)
		writeError(w, "Failed to create product", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), user.UserID, "PRODUCT_CREATE", fmt.Sprintf("product %s (%s)", product.Name, product.ProductID))
	writeJSON(w, product)
}

func (h *StationHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		writeError(w, "Product ID is required", http.StatusBadRequest)
		return
	}

	product, err := h.store.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, "Product not found", http.StatusNotFound)
		return
	}

	product.Name = req.Name
	product.Category = req.Category
	if req.Unit != "" {
		product.Unit = req.Unit
	}
	product.PurchasePrice = req.PurchasePrice
	product.SalesPrice = req.SalesPrice
	product.OpeningQuantity = req.OpeningQuantity

	if err := h.store.UpdateProduct(r.Context(), product); err != nil {
		h.log.Errorf("failed to update product: %v", err)
		writeError(w, "Failed to update product", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), user.UserID, "PRODUCT_UPDATE", fmt.Sprintf("product %s", product.ProductID))
	writeJSON(w, product)
}

type deleteRequest struct {
	ID string `json:"id" validate:"required"`
}

func (h *StationHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req deleteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.store.DeleteProduct(r.Context(), req.ID); err != nil {
		h.log.Errorf("failed to delete product: %v", err)
		writeError(w, "Failed to delete product", http.StatusInternalServerError)
		return
	}
	h.audit.Event(r.Context(), user.UserID, "PRODUCT_DELETE", fmt.Sprintf("product %s", req.ID))
	writeJSON(w, map[string]string{"message": "Product deleted successfully"})
}

// --- Tanks ---

type TankRequest struct {
	TankID         string  `json:"tank_id"`
	Name           string  `json:"name" validate:"required"`
	ProductID      string  `json:"product_id" validate:"required"`
	Capacity       float64 `json:"capacity" validate:"gt=0"`
	RemainingStock float64 `json:"remaining_stock" validate:"gte=0"`
	AlertThreshold float64 `json:"alert_threshold" validate:"gte=0"`
}

func (h *StationHandler) ListTanks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tanks, err := h.store.GetAllTanks(r.Context())
	if err != nil {
		h.log.Errorf("failed to get tanks: %v", err)
		writeError(w, "Failed to retrieve tanks", http.StatusInternalServerError)
		return
	}
	writeJSON(w, tanks)
}

func (h *StationHandler) CreateTank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req TankRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.RemainingStock > req.Capacity {
		writeError(w, "Remaining stock cannot exceed capacity", http.StatusBadRequest)
		return
	}
	if _, err := h.store.GetProduct(r.Context(), req.ProductID); err != nil {
		writeError(w, "Linked product not found", http.StatusNotFound)
		return
	}

	tank := &models.Tank{
		TankID:         req.TankID,
		Name:           req.Name,
		ProductID:      req.ProductID,
		Capacity:       req.Capacity,
		RemainingStock: req.RemainingStock,
		AlertThreshold: req.AlertThreshold,
		UpdatedAt:      time.Now(),
	}
	if tank.TankID == "" {
		tank.TankID = "TNK-" + uuid.NewString()
	}

	if err := h.store.CreateTank(r.Context(), tank); err != nil {
		h.log.Errorf("failed to create tank: %v", err)
		writeError(w, "Failed to create tank", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), user.UserID, "TANK_CREATE", fmt.Sprintf("tank %s (%s)", tank.Name, tank.TankID))
	writeJSON(w, tank)
}

func (h *StationHandler) UpdateTank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req TankRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.TankID == "" {
		writeError(w, "Tank ID is required", http.StatusBadRequest)
		return
	}

	tank, err := h.store.GetTank(r.Context(), req.TankID)
	if err != nil {
		writeError(w, "Tank not found", http.StatusNotFound)
		return
	}

	// book stock stays under ledger control; master-data edits only touch
	// the descriptive fields
	tank.Name = req.Name
	tank.ProductID = req.ProductID
	tank.Capacity = req.Capacity
	tank.AlertThreshold = req.AlertThreshold
	if tank.RemainingStock > tank.Capacity {
		writeError(w, "Capacity cannot drop below current stock", http.StatusBadRequest)
		return
	}

	if err := h.store.UpdateTank(r.Context(), tank); err != nil {
		h.log.Errorf("failed to update tank: %v", err)
		writeError(w, "Failed to update tank", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), user.UserID, "TANK_UPDATE", fmt.Sprintf("tank %s", tank.TankID))
	writeJSON(w, tank)
}

func (h *StationHandler) DeleteTank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req deleteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.store.DeleteTank(r.Context(), req.ID); err != nil {
		h.log.Errorf("failed to delete tank: %v", err)
		writeError(w, "Failed to delete tank", http.StatusInternalServerError)
		return
	}
	h.audit.Event(r.Context(), user.UserID, "TANK_DELETE", fmt.Sprintf("tank %s", req.ID))
	writeJSON(w, map[string]string{"message": "Tank deleted successfully"})
}

// --- Dispensers ---

type DispenserRequest struct {
	DispenserID string                 `json:"dispenser_id"`
	Name        string                 `json:"name" validate:"required"`
	Location    string                 `json:"location"`
	Status      models.DispenserStatus `json:"status" validate:"required,oneof=ACTIVE MAINTENANCE INACTIVE"`
}

func (h *StationHandler) ListDispensers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	dispensers, err := h.store.GetAllDispensers(r.Context())
	if err != nil {
		h.log.Errorf("failed to get dispensers: %v", err)
		writeError(w, "Failed to retrieve dispensers", http.StatusInternalServerError)
		return
	}
	writeJSON(w, dispensers)
}

func (h *StationHandler) CreateDispenser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req DispenserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	d := &models.Dispenser{
		DispenserID: req.DispenserID,
		Name:        req.Name,
		Location:    req.Location,
		Status:      req.Status,
	}
	if d.DispenserID == "" {
		d.DispenserID = "DSP-" + uuid.NewString()
	}

	if err := h.store.CreateDispenser(r.Context(), d); err != nil {
		h.log.Errorf("failed to create dispenser: %v", err)
		writeError(w, "Failed to create dispenser", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), user.UserID, "DISPENSER_CREATE", fmt.Sprintf("dispenser %s (%s)", d.Name, d.DispenserID))
	writeJSON(w, d)
}

func (h *StationHandler) UpdateDispenser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req DispenserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.DispenserID == "" {
		writeError(w, "Dispenser ID is required", http.StatusBadRequest)
		return
	}

	d, err := h.store.GetDispenser(r.Context(), req.DispenserID)
	if err != nil {
		writeError(w, "Dispenser not found", http.StatusNotFound)
		return
	}
	d.Name = req.Name
	d.Location = req.Location
	d.Status = req.Status

	if err := h.store.UpdateDispenser(r.Context(), d); err != nil {
		h.log.Errorf("failed to update dispenser: %v", err)
		writeError(w, "Failed to update dispenser", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), user.UserID, "DISPENSER_UPDATE", fmt.Sprintf("dispenser %s", d.DispenserID))
	writeJSON(w, d)
}

func (h *StationHandler) DeleteDispenser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req deleteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.store.DeleteDispenser(r.Context(), req.ID); err != nil {
		h.log.Errorf("failed to delete dispenser: %v", err)
		writeError(w, "Failed to delete dispenser", http.StatusInternalServerError)
		return
	}
	h.audit.Event(r.Context(), user.UserID, "DISPENSER_DELETE", fmt.Sprintf("dispenser %s", req.ID))
	writeJSON(w, map[string]string{"message": "Dispenser deleted successfully"})
}

// --- Nozzles ---

type NozzleRequest struct {
	NozzleID    string  `json:"nozzle_id"`
	Name        string  `json:"name" validate:"required"`
	DispenserID string  `json:"dispenser_id" validate:"required"`
	ProductID   string  `json:"product_id" validate:"required"`
	TankID      string  `json:"tank_id" validate:"required"`
	LastReading float64 `json:"last_reading" validate:"gte=0"`
}

func (h *StationHandler) ListNozzles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	nozzles, err := h.store.GetAllNozzles(r.Context())
	if err != nil {
		h.log.Errorf("failed to get nozzles: %v", err)
		writeError(w, "Failed to retrieve nozzles", http.StatusInternalServerError)
		return
	}
	writeJSON(w, nozzles)
}

func (h *StationHandler) CreateNozzle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req NozzleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	// a nozzle is only valid with its full linkage in place
	if _, err := h.store.GetDispenser(r.Context(), req.DispenserID); err != nil {
		writeError(w, "Linked dispenser not found", http.StatusNotFound)
		return
	}
	if _, err := h.store.GetProduct(r.Context(), req.ProductID); err != nil {
		writeError(w, "Linked product not found", http.StatusNotFound)
		return
	}
	tank, err := h.store.GetTank(r.Context(), req.TankID)
	if err != nil {
		writeError(w, "Linked tank not found", http.StatusNotFound)
		return
	}
	if tank.ProductID != req.ProductID {
		writeError(w, "Tank holds a different product", http.StatusBadRequest)
		return
	}

	n := &models.Nozzle{
		NozzleID:    req.NozzleID,
		Name:        req.Name,
		DispenserID: req.DispenserID,
		ProductID:   req.ProductID,
		TankID:      req.TankID,
		LastReading: req.LastReading,
		UpdatedAt:   time.Now(),
	}
	if n.NozzleID == "" {
		n.NozzleID = "NZ-" + uuid.NewString()
	}

	if err := h.store.CreateNozzle(r.Context(), n); err != nil {
		h.log.Errorf("failed to create nozzle: %v", err)
		writeError(w, "Failed to create nozzle", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), user.UserID, "NOZZLE_CREATE", fmt.Sprintf("nozzle %s (%s)", n.Name, n.NozzleID))
	writeJSON(w, n)
}

// UpdateNozzle renames or relinks a nozzle. LastReading and TotalSales are
// meter counters owned by the ledger and cannot be edited here.
func (h *StationHandler) UpdateNozzle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req NozzleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.NozzleID == "" {
		writeError(w, "Nozzle ID is required", http.StatusBadRequest)
		return
	}

	n, err := h.store.GetNozzle(r.Context(), req.NozzleID)
	if err != nil {
		writeError(w, "Nozzle not found", http.StatusNotFound)
		return
	}

	if _, err := h.store.GetDispenser(r.Context(), req.DispenserID); err != nil {
		writeError(w, "Linked dispenser not found", http.StatusNotFound)
		return
	}
	if _, err := h.store.GetProduct(r.Context(), req.ProductID); err != nil {
		writeError(w, "Linked product not found", http.StatusNotFound)
		return
	}
	tank, err := h.store.GetTank(r.Context(), req.TankID)
	if err != nil {
		writeError(w, "Linked tank not found", http.StatusNotFound)
		return
	}
	if tank.ProductID != req.ProductID {
		writeError(w, "Tank holds a different product", http.StatusBadRequest)
		return
	}

	n.Name = req.Name
	n.DispenserID = req.DispenserID
	n.ProductID = req.ProductID
	n.TankID = req.TankID
	n.UpdatedAt = time.Now()

	if err := h.store.UpdateNozzle(r.Context(), n); err != nil {
		h.log.Errorf("failed to update nozzle: %v", err)
		writeError(w, "Failed to update nozzle", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), user.UserID, "NOZZLE_UPDATE", fmt.Sprintf("nozzle %s", n.NozzleID))
	writeJSON(w, n)
}

func (h *StationHandler) DeleteNozzle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req deleteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.store.DeleteNozzle(r.Context(), req.ID); err != nil {
		h.log.Errorf("failed to delete nozzle: %v", err)
		writeError(w, "Failed to delete nozzle", http.StatusInternalServerError)
		return
	}
	h.audit.Event(r.Context(), user.UserID, "NOZZLE_DELETE", fmt.Sprintf("nozzle %s", req.ID))
	writeJSON(w, map[string]string{"message": "Nozzle deleted successfully"})
}
