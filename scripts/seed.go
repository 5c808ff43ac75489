package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"fuelstation/auth"
	"fuelstation/config"
	"fuelstation/db"
	"fuelstation/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	cfg.Validate()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsPath, logrus.New())
	if err != nil {
		log.Fatalf("Failed to initialize Firestore: %v", err)
	}
	defer store.Close()

	log.Println("Starting database seeding...")

	if err := seedUsers(ctx, store); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}
	if err := seedStation(ctx, store); err != nil {
		log.Fatalf("Failed to seed station: %v", err)
	}
	if err := seedAccounts(ctx, store); err != nil {
		log.Fatalf("Failed to seed accounts: %v", err)
	}
	if err := seedSettings(ctx, store); err != nil {
		log.Fatalf("Failed to seed settings: %v", err)
	}

	log.Println("Database seeding completed successfully")
}

func seedUsers(ctx context.Context, store *db.Store) error {
	users := []struct {
		User     models.User
		Password string
	}{
		{
			User: models.User{
				UserID:    "user-admin",
				Username:  "admin",
				FullName:  "Station Administrator",
				Role:      models.RoleAdmin,
				Active:    true,
				CreatedAt: time.Now(),
			},
			Password: "changeme1",
		},
		{
			User: models.User{
				UserID:    "user-manager",
				Username:  "manager",
				FullName:  "Shift Manager",
				Role:      models.RoleManager,
				Active:    true,
				CreatedAt: time.Now(),
			},
			Password: "changeme1",
		},
		{
			User: models.User{
				UserID:    "user-attendant1",
				Username:  "attendant1",
				FullName:  "Pump Attendant",
				Role:      models.RoleAttendant,
				Active:    true,
				CreatedAt: time.Now(),
			},
			Password: "changeme1",
		},
	}

	for _, u := range users {
		if err := store.CreateUser(ctx, &u.User); err != nil {
			return fmt.Errorf("failed to create user %s: %w", u.User.Username, err)
		}
		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", u.User.Username, err)
		}
		if err := store.StorePasswordHash(ctx, u.User.UserID, hash); err != nil {
			return fmt.Errorf("failed to store password for %s: %w", u.User.Username, err)
		}
		log.Printf("  Created user: %s (%s)", u.User.Username, u.User.Role)
	}
	return nil
}

func seedStation(ctx context.Context, store *db.Store) error {
	products := []models.Product{
		{ProductID: "PRD-petrol-92", Name: "Petrol 92", Category: models.CategoryFuel, Unit: "ltr", SalesPrice: 2.45, CreatedAt: time.Now()},
		{ProductID: "PRD-diesel", Name: "Diesel", Category: models.CategoryFuel, Unit: "ltr", SalesPrice: 2.10, CreatedAt: time.Now()},
		{ProductID: "PRD-engine-oil-1l", Name: "Engine Oil 1L", Category: models.CategoryLubricant, Unit: "pcs", SalesPrice: 9.50, CreatedAt: time.Now()},
	}
	for i := range products {
		if err := store.CreateProduct(ctx, &products[i]); err != nil {
			return fmt.Errorf("failed to create product %s: %w", products[i].ProductID, err)
		}
		log.Printf("  Created product: %s", products[i].Name)
	}

	tanks := []models.Tank{
		{TankID: "TNK-1", Name: "Tank 1 (Petrol 92)", ProductID: "PRD-petrol-92", Capacity: 20000, RemainingStock: 12000, AlertThreshold: 2000, UpdatedAt: time.Now()},
		{TankID: "TNK-2", Name: "Tank 2 (Diesel)", ProductID: "PRD-diesel", Capacity: 25000, RemainingStock: 18000, AlertThreshold: 2500, UpdatedAt: time.Now()},
	}
	for i := range tanks {
		if err := store.CreateTank(ctx, &tanks[i]); err != nil {
			return fmt.Errorf("failed to create tank %s: %w", tanks[i].TankID, err)
		}
		log.Printf("  Created tank: %s", tanks[i].Name)
	}

	dispensers := []models.Dispenser{
		{DispenserID: "DSP-1", Name: "Dispenser 1", Location: "Forecourt East", Status: models.DispenserActive},
		{DispenserID: "DSP-2", Name: "Dispenser 2", Location: "Forecourt West", Status: models.DispenserActive},
	}
	for i := range dispensers {
		if err := store.CreateDispenser(ctx, &dispensers[i]); err != nil {
			return fmt.Errorf("failed to create dispenser %s: %w", dispensers[i].DispenserID, err)
		}
		log.Printf("  Created dispenser: %s", dispensers[i].Name)
	}

	nozzles := []models.Nozzle{
		{NozzleID: "NZ-1A", Name: "Nozzle 1A", DispenserID: "DSP-1", TankID: "TNK-1", ProductID: "PRD-petrol-92", UpdatedAt: time.Now()},
		{NozzleID: "NZ-1B", Name: "Nozzle 1B", DispenserID: "DSP-1", TankID: "TNK-2", ProductID: "PRD-diesel", UpdatedAt: time.Now()},
		{NozzleID: "NZ-2A", Name: "Nozzle 2A", DispenserID: "DSP-2", TankID: "TNK-1", ProductID: "PRD-petrol-92", UpdatedAt: time.Now()},
	}
	for i := range nozzles {
		if err := store.CreateNozzle(ctx, &nozzles[i]); err != nil {
			return fmt.Errorf("failed to create nozzle %s: %w", nozzles[i].NozzleID, err)
		}
		log.Printf("  Created nozzle: %s", nozzles[i].NozzleID)
	}

	return nil
}

func seedAccounts(ctx context.Context, store *db.Store) error {
	accounts := []models.Account{
		{AccountID: "ACC-cash", Name: "Cash in Hand", Kind: models.AccountCash, CreatedAt: time.Now()},
		{AccountID: "ACC-bank", Name: "Main Bank Account", Kind: models.AccountBank, CreatedAt: time.Now()},
		{AccountID: "ACC-depot", Name: "Fuel Depot Ltd", Kind: models.AccountSupplier, CreatedAt: time.Now()},
	}
	for i := range accounts {
		if err := store.CreateAccount(ctx, &accounts[i]); err != nil {
			return fmt.Errorf("failed to create account %s: %w", accounts[i].AccountID, err)
		}
		log.Printf("  Created account: %s", accounts[i].Name)
	}
	return nil
}

func seedSettings(ctx context.Context, store *db.Store) error {
	settings := &models.Settings{
		CompanyName: "Sample Fuel Station",
		Address:     "1 Station Road",
		Phone:       "+00 000 0000",
		Email:       "office@example.com",
		Currency:    "USD",
	}
	if err := store.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	log.Println("  Saved company settings")
	return nil
}
