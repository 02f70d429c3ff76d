package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"wanderly/internal/products"
	"wanderly/internal/shared/config"
	"wanderly/internal/shared/database"
	"wanderly/internal/trips"
	"wanderly/internal/users"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Seeder struct {
	db  *database.DB
	now time.Time
}

func main() {
	_ = godotenv.Load()
	fmt.Println("🌱 Starting Wanderly Database Seeder...")

	cfg := config.Load()
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, now: time.Now().UTC().Truncate(24 * time.Hour)}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(context.Background()); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates every table, children first
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"outbox_events",
		"purchases",
		"order_items",
		"orders",
		"cart_items",
		"products",
		"trip_registrations",
		"tickets",
		"trips",
		"users",
	}

	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *Seeder) SeedAll(ctx context.Context) error {
	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	if err := s.SeedTrips(userIDs["admin"]); err != nil {
		return fmt.Errorf("failed to seed trips: %w", err)
	}
	if err := s.SeedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}
	return nil
}

// SeedUsers creates one admin and two travellers, all with password "qwerty"
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key, firstName, lastName, email, phone string
		role                                   users.Role
	}{
		{"admin", "Admin", "User", "admin@wanderly.test", "", users.RoleAdmin},
		{"user1", "Rana", "Khoury", "rana@wanderly.test", "+961 70 111 222", users.RoleUser},
		{"user2", "Omar", "Saleh", "omar@wanderly.test", "+961 71 333 444", users.RoleUser},
	}

	ids := make(map[string]uuid.UUID, len(usersData))
	for _, d := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FirstName: d.firstName,
			LastName:  d.lastName,
			Email:     d.email,
			Phone:     d.phone,
			Password:  string(hashedPassword),
			Role:      d.role,
		}
		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", d.email, err)
		}
		ids[d.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}
	return ids, nil
}

func (s *Seeder) SeedTrips(adminID uuid.UUID) error {
	fmt.Println("  🧭 Seeding trips...")

	departure := s.now.AddDate(0, 0, 3).Add(7 * time.Hour)
	tripsData := []trips.Trip{
		{
			Title:       "Petra and Wadi Rum",
			Description: "Rose city by day, desert camp by night.",
			Destination: "Jordan",
			Type:        "Adventure",
			Price:       890,
			Capacity:    20,
			StartDate:   s.now.AddDate(0, 0, 3),
			Days:        3,
			DayPlans: []trips.DayPlan{
				s.day(1, "Fly to Amman, drive to Petra", trips.MealDinner),
				s.day(2, "Treasury, Monastery trail", trips.MealBreakfast, trips.MealLunch),
				s.day(3, "Jeep tour of Wadi Rum, return", trips.MealBreakfast),
			},
			Included:         []string{"Flights", "Hotel", "Guide"},
			NotIncluded:      []string{"Visa"},
			IncludeFlights:   true,
			Airline:          "Royal Jordanian",
			FlightNumber:     "RJ402",
			DepartureCity:    "Beirut",
			DepartureAirport: "BEY",
			ArrivalCity:      "Amman",
			ArrivalAirport:   "AMM",
			DepartureTime:    &departure,
			SeatClasses:      []string{trips.SeatClassEconomy, trips.SeatClassBusiness},
			TicketPrice:      240,
			SeatAllocation:   30,
		},
		{
			Title:       "Cedars Weekend",
			Description: "Hike the Qadisha valley and sleep among the cedars.",
			Destination: "Lebanon",
			Type:        "Hiking",
			Price:       210,
			Capacity:    12,
			StartDate:   s.now.AddDate(0, 0, 10),
			Days:        2,
			DayPlans: []trips.DayPlan{
				s.day(1, "Qadisha valley trail", trips.MealLunch, trips.MealDinner),
				s.day(2, "Cedars reserve, return", trips.MealBreakfast),
			},
			Included:    []string{"Guesthouse", "Guide"},
			NotIncluded: []string{"Transport"},
		},
	}

	for i := range tripsData {
		t := &tripsData[i]
		t.Status = trips.TripStatusUpcoming
		t.EndDate = trips.ComputeEndDate(t.StartDate, t.Days)
		t.AvailableSeats = t.SeatAllocation
		t.CreatedBy = adminID
		if err := s.db.PostgreSQL.Create(t).Error; err != nil {
			return fmt.Errorf("failed to create trip %s: %w", t.Title, err)
		}
		fmt.Printf("    ✅ Created trip: %s (%d seats)\n", t.Title, t.SeatAllocation)
	}
	return nil
}

func (s *Seeder) day(index int, details string, meals ...trips.MealType) trips.DayPlan {
	plan := trips.DayPlan{DayIndex: index, Details: details}
	for _, m := range meals {
		plan.Meals = append(plan.Meals, trips.Meal{Type: m, Details: "Local cuisine"})
	}
	return plan
}

func (s *Seeder) SeedProducts() error {
	fmt.Println("  🛍️ Seeding products...")

	productsData := []products.Product{
		{Title: "Enamel camp mug", Price: 12.5, Category: products.CategoryTravel, Stock: 40},
		{Title: "Cedar postcard set", Price: 6, Category: products.CategorySouvenir, Stock: 100},
		{Title: "Packable sun hat", Price: 19.99, Category: products.CategoryFashion, Stock: 25},
		{Title: "Universal travel adapter", Price: 24, Category: products.CategoryElectronics, Stock: 15},
	}

	for i := range productsData {
		p := &productsData[i]
		if err := s.db.PostgreSQL.Create(p).Error; err != nil {
			return fmt.Errorf("failed to create product %s: %w", p.Title, err)
		}
		fmt.Printf("    ✅ Created product: %s\n", p.Title)
	}
	return nil
}
