package db

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fuelstation/models"
)

// Collection names. The ledger transactions reference these directly.
const (
	ColAccounts   = "accounts"
	ColProducts   = "products"
	ColTanks      = "tanks"
	ColDispensers = "dispensers"
	ColNozzles    = "nozzles"
	ColReadings   = "readings"
	ColDipEntries = "dip_entries"
	ColInvoices   = "invoices"
	ColVouchers   = "vouchers"
	ColUsers      = "users"
	ColPasswords  = "passwords"
	ColSettings   = "settings"
	ColAuditLogs  = "audit_logs"
)

// settingsDocID is the single company-profile document.
const settingsDocID = "company"

// ErrNotFound reports a missing document.
var ErrNotFound = fmt.Errorf("document not found")

// Store wraps the Firestore client with typed access to the station's
// collections.
type Store struct {
	client *firestore.Client
	log    *logrus.Logger
}

// New initializes the Firestore client via the Firebase SDK.
func New(ctx context.Context, projectID, credentialsPath string, log *logrus.Logger) (*Store, error) {
	opt := option.WithCredentialsFile(credentialsPath)

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firestore client: %w", err)
	}

	log.WithField("project", projectID).Info("connected to Firestore")

	return &Store{client: client, log: log}, nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Client exposes the raw Firestore client for transactional workflows.
func (s *Store) Client() *firestore.Client {
	return s.client
}

func wrapGetErr(entity, id string, err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s %s: %w", entity, id, err)
}

// --- Tank Operations ---

func (s *Store) CreateTank(ctx context.Context, tank *models.Tank) error {
	_, err := s.client.Collection(ColTanks).Doc(tank.TankID).Set(ctx, tank)
	if err != nil {
		return fmt.Errorf("failed to create tank: %w", err)
	}
	return nil
}

func (s *Store) GetTank(ctx context.Context, tankID string) (*models.Tank, error) {
	doc, err := s.client.Collection(ColTanks).Doc(tankID).Get(ctx)
	if err != nil {
		return nil, wrapGetErr("tank", tankID, err)
	}
	var tank models.Tank
	if err := doc.DataTo(&tank); err != nil {
		return nil, fmt.Errorf("failed to parse tank: %w", err)
	}
	return &tank, nil
}

func (s *Store) GetAllTanks(ctx context.Context) ([]models.Tank, error) {
	iter := s.client.Collection(ColTanks).Documents(ctx)
	defer iter.Stop()

	var tanks []models.Tank
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate tanks: %w", err)
		}
		var tank models.Tank
		if err := doc.DataTo(&tank); err != nil {
			s.log.WithField("doc", doc.Ref.ID).Warnf("failed to parse tank: %v", err)
			continue
		}
		tanks = append(tanks, tank)
	}
	return tanks, nil
}

func (s *Store) UpdateTank(ctx context.Context, tank *models.Tank) error {
	tank.UpdatedAt = time.Now()
	_, err := s.client.Collection(ColTanks).Doc(tank.TankID).Set(ctx, tank)
	if err != nil {
		return fmt.Errorf("failed to update tank: %w", err)
	}
	return nil
}

func (s *Store) DeleteTank(ctx context.Context, tankID string) error {
	_, err := s.client.Collection(ColTanks).Doc(tankID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete tank: %w", err)
	}
	return nil
}

// --- Product Operations ---

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	_, err := s.client.Collection(ColProducts).Doc(product.ProductID).Set(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	doc, err := s.client.Collection(ColProducts).Doc(productID).Get(ctx)
	if err != nil {
		return nil, wrapGetErr("product", productID, err)
	}
	var product models.Product
	if err := doc.DataTo(&product); err != nil {
		return nil, fmt.Errorf("failed to parse product: %w", err)
	}
	return &product, nil
}

func (s *Store) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	iter := s.client.Collection(ColProducts).Documents(ctx)
	defer iter.Stop()

	var products []models.Product
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate products: %w", err)
		}
		var product models.Product
		if err := doc.DataTo(&product); err != nil {
			s.log.WithField("doc", doc.Ref.ID).Warnf("failed to parse product: %v", err)
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now()
	_, err := s.client.Collection(ColProducts).Doc(product.ProductID).Set(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, productID string) error {
	_, err := s.client.Collection(ColProducts).Doc(productID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// --- Dispenser Operations ---

func (s *Store) CreateDispenser(ctx context.Context, d *models.Dispenser) error {
	_, err := s.client.Collection(ColDispensers).Doc(d.DispenserID).Set(ctx, d)
	if err != nil {
		return fmt.Errorf("failed to create dispenser: %w", err)
	}
	return nil
}

func (s *Store) GetDispenser(ctx context.Context, dispenserID string) (*models.Dispenser, error) {
	doc, err := s.client.Collection(ColDispensers).Doc(dispenserID).Get(ctx)
	if err != nil {
		return nil, wrapGetErr("dispenser", dispenserID, err)
	}
	var d models.Dispenser
	if err := doc.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to parse dispenser: %w", err)
	}
	return &d, nil
}

func (s *Store) GetAllDispensers(ctx context.Context) ([]models.Dispenser, error) {
	iter := s.client.Collection(ColDispensers).Documents(ctx)
	defer iter.Stop()

	var dispensers []models.Dispenser
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate dispensers: %w", err)
		}
		var d models.Dispenser
		if err := doc.DataTo(&d); err != nil {
			s.log.WithField("doc", doc.Ref.ID).Warnf("failed to parse dispenser: %v", err)
			continue
		}
		dispensers = append(dispensers, d)
	}
	return dispensers, nil
}

func (s *Store) UpdateDispenser(ctx context.Context, d *models.Dispenser) error {
	_, err := s.client.Collection(ColDispensers).Doc(d.DispenserID).Set(ctx, d)
	if err != nil {
		return fmt.Errorf("failed to update dispenser: %w", err)
	}
	return nil
}

func (s *Store) DeleteDispenser(ctx context.Context, dispenserID string) error {
	_, err := s.client.Collection(ColDispensers).Doc(dispenserID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete dispenser: %w", err)
	}
	return nil
}

// --- Nozzle Operations ---

func (s *Store) CreateNozzle(ctx context.Context, n *models.Nozzle) error {
	_, err := s.client.Collection(ColNozzles).Doc(n.NozzleID).Set(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to create nozzle: %w", err)
	}
	return nil
}

func (s *Store) GetNozzle(ctx context.Context, nozzleID string) (*models.Nozzle, error) {
	doc, err := s.client.Collection(ColNozzles).Doc(nozzleID).Get(ctx)
	if err != nil {
		return nil, wrapGetErr("nozzle", nozzleID, err)
	}
	var n models.Nozzle
	if err := doc.DataTo(&n); err != nil {
		return nil, fmt.Errorf("failed to parse nozzle: %w", err)
	}
	return &n, nil
}

func (s *Store) GetAllNozzles(ctx context.Context) ([]models.Nozzle, error) {
	iter := s.client.Collection(ColNozzles).Documents(ctx)
	defer iter.Stop()

	var nozzles []models.Nozzle
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate nozzles: %w", err)
		}
		var n models.Nozzle
		if err := doc.DataTo(&n); err != nil {
			s.log.WithField("doc", doc.Ref.ID).Warnf("failed to parse nozzle: %v", err)
			continue
		}
		nozzles = append(nozzles, n)
	}
	return nozzles, nil
}

func (s *Store) UpdateNozzle(ctx context.Context, n *models.Nozzle) error {
	n.UpdatedAt = time.Now()
	_, err := s.client.Collection(ColNozzles).Doc(n.NozzleID).Set(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to update nozzle: %w", err)
	}
	return nil
}

func (s *Store) DeleteNozzle(ctx context.Context, nozzleID string) error {
	_, err := s.client.Collection(ColNozzles).Doc(nozzleID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete nozzle: %w", err)
	}
	return nil
}

// --- Reading Operations ---

// GetReadingsBetween returns readings with timestamp in [start, end].
func (s *Store) GetReadingsBetween(ctx context.Context, start, end time.Time) ([]models.Reading, error) {
	iter := s.client.Collection(ColReadings).
		Where("timestamp", ">=", start).
		Where("timestamp", "<=", end).
		Documents(ctx)
	defer iter.Stop()

	var readings []models.Reading
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate readings: %w", err)
		}
		var reading models.Reading
		if err := doc.DataTo(&reading); err != nil {
			s.log.WithField("doc", doc.Ref.ID).Warnf("failed to parse reading: %v", err)
			continue
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

// GetReadingsByNozzle returns the reading history of one nozzle.
func (s *Store) GetReadingsByNozzle(ctx context.Context, nozzleID string) ([]models.Reading, error) {
	iter := s.client.Collection(ColReadings).
		Where("nozzle_id", "==", nozzleID).
		Documents(ctx)
	defer iter.Stop()

	var readings []models.Reading
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate readings: %w", err)
		}
		var reading models.Reading
		if err := doc.DataTo(&reading); err != nil {
			s.log.WithField("doc", doc.Ref.ID).Warnf("failed to parse reading: %v", err)
			continue
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

// --- Dip Chart Entry Operations ---

func (s *Store) CreateDipEntry(ctx context.Context, entry *models.DipChartEntry) error {
	_, err := s.client.Collection(ColDipEntries).Doc(entry.EntryID).Set(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to create dip entry: %w", err)
	}
	return nil
}

func (s *Store) GetAllDipEntries(ctx context.Context) ([]models.DipChartEntry, error) {
	iter := s.client.Collection(ColDipEntries).Documents(ctx)
	defer iter.Stop()

	var entries []models.DipChartEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate dip entries: %w", err)
		}
		var entry models.DipChartEntry
		if err := doc.DataTo(&entry); err != nil {
			s.log.WithField("doc", doc.Ref.ID).Warnf("failed to parse dip entry: %v", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetDipEntriesByTank returns all dip measurements recorded for a tank.
func (s *Store) GetDipEntriesByTank(ctx context.Context, tankID string) ([]models.DipChartEntry, error) {
	iter := s.client.Collection(ColDipEntries).
		Where("tank_id", "==", tankID).
		Documents(ctx)
	defer iter.Stop()

	var entries []models.DipChartEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate dip entries: %w", err)
		}
		var entry models.DipChartEntry
		if err := doc.DataTo(&entry); err != nil {
			s.log.WithField("doc", doc.Ref.ID).Warnf("failed to parse dip entry: %v", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// --- Invoice Operations ---

func (s *Store) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	_, err := s.client.Collection(ColInvoices).Doc(inv.InvoiceID).Set(ctx, inv)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	doc, err := s.client.Collection(ColInvoices).Doc(invoiceID).Get(ctx)
	if err != nil {
		return nil, wrapGetErr("invoice", invoiceID, err)
	}
	var inv models.Invoice
	if err := doc.DataTo(&inv); err != nil {
		return nil, fmt.Errorf("failed to parse invoice: %w", err)
	}
	return &inv, nil
}

// GetInvoicesByKind returns one of the four invoice ledgers.
func (s *Store) GetInvoicesByKind(ctx context.Context, kind models.InvoiceKind) ([]models.Invoice, error) {
	iter := s.client.Collection(ColInvoices).
		Where("kind", "==", string(kind)).
		Documents(ctx)
	defer iter.Stop()

	var invoices []models.Invoice
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate invoices: %w", err)
		}
		var inv models.Invoice
		if err := doc.DataTo(&inv); err != nil {
			s.log.WithField("doc", doc.Ref.ID).Warnf("failed to parse invoice: %v", err)
			continue
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (s *Store) DeleteInvoice(ctx context.Context, invoiceID string) error {
	_, err := s.client.Collection(ColInvoices).Doc(invoiceID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return nil
}

// --- Voucher Operations ---

func (s *Store) CreateVoucher(ctx context.Context, v *models.Voucher) error {
	_, err := s.client.Collection(ColVouchers).Doc(v.VoucherID).Set(ctx, v)
	if err != nil {
		return fmt.Errorf("failed to create voucher: %w", err)
	}
	return nil
}

func (s *Store) GetAllVouchers(ctx context.Context) ([]models.Voucher, error) {
	iter := s.client.Collection(ColVouchers).Documents(ctx)
	defer iter.Stop()

	var vouchers []models.Voucher
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate vouchers: %w", err)
		}
		var v models.Voucher
		if err := doc.DataTo(&v); err != nil {
			s.log.WithField("doc", doc.Ref.ID).Warnf("failed to parse voucher: %v", err)
			continue
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, nil
}

func (s *Store) DeleteVoucher(ctx context.Context, voucherID string) error {
	_, err := s.client.Collection(ColVouchers).Doc(voucherID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete voucher: %w", err)
	}
	return nil
}

// --- Account Operations ---

func (s *Store) CreateAccount(ctx context.Context, a *models.Account) error {
	_, err := s.client.Collection(ColAccounts).Doc(a.AccountID).Set(ctx, a)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	doc, err := s.client.Collection(ColAccounts).Doc(accountID).Get(ctx)
	if err != nil {
		return nil, wrapGetErr("account", accountID, err)
	}
	var a models.Account
	if err := doc.DataTo(&a); err != nil {
		return nil, fmt.Errorf("failed to parse account: %w", err)
	}
	return &a, nil
}

func (s *Store) GetAllAccounts(ctx context.Context) ([]models.Account, error) {
	iter := s.client.Collection(ColAccounts).Documents(ctx)
	defer iter.Stop()

	var accounts []models.Account
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate accounts: %w", err)
		}
		var a models.Account
		if err := doc.DataTo(&a); err != nil {
			s.log.WithField("doc", doc.Ref.ID).Warnf("failed to parse account: %v", err)
			continue
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (s *Store) UpdateAccount(ctx context.Context, a *models.Account) error {
	_, err := s.client.Collection(ColAccounts).Doc(a.AccountID).Set(ctx, a)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, accountID string) error {
	_, err := s.client.Collection(ColAccounts).Doc(accountID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// --- Settings Operations ---

func (s *Store) GetSettings(ctx context.Context) (*models.Settings, error) {
	doc, err := s.client.Collection(ColSettings).Doc(settingsDocID).Get(ctx)
	if err != nil {
		return nil, wrapGetErr("settings", settingsDocID, err)
	}
	var settings models.Settings
	if err := doc.DataTo(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings *models.Settings) error {
	_, err := s.client.Collection(ColSettings).Doc(settingsDocID).Set(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// --- User Operations ---

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.client.Collection(ColUsers).Doc(user.UserID).Set(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	doc, err := s.client.Collection(ColUsers).Doc(userID).Get(ctx)
	if err != nil {
		return nil, wrapGetErr("user", userID, err)
	}
	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	iter := s.client.Collection(ColUsers).
		Where("username", "==", username).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

func (s *Store) GetAllUsers(ctx context.Context) ([]models.User, error) {
	iter := s.client.Collection(ColUsers).Documents(ctx)
	defer iter.Stop()

	var users []models.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", err)
		}
		var user models.User
		if err := doc.DataTo(&user); err != nil {
			s.log.WithField("doc", doc.Ref.ID).Warnf("failed to parse user: %v", err)
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	_, err := s.client.Collection(ColUsers).Doc(user.UserID).Set(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	_, err := s.client.Collection(ColUsers).Doc(userID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// --- Password Operations ---

func (s *Store) StorePasswordHash(ctx context.Context, userID, passwordHash string) error {
	_, err := s.client.Collection(ColPasswords).Doc(userID).Set(ctx, map[string]interface{}{
		"user_id":       userID,
		"password_hash": passwordHash,
		"updated_at":    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to store password hash: %w", err)
	}
	return nil
}

func (s *Store) GetPasswordHash(ctx context.Context, userID string) (string, error) {
	doc, err := s.client.Collection(ColPasswords).Doc(userID).Get(ctx)
	if err != nil {
		return "", wrapGetErr("password", userID, err)
	}

	data := doc.Data()
	if hash, ok := data["password_hash"].(string); ok {
		return hash, nil
	}
	return "", fmt.Errorf("password hash not found for user: %s", userID)
}

// --- Audit Operations ---

func (s *Store) AppendAuditLog(ctx context.Context, entry *models.AuditLog) error {
	_, err := s.client.Collection(ColAuditLogs).Doc(entry.LogID).Set(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}
	return nil
}
