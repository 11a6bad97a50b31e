package store

import (
	"context"
	"fmt"
)

const schemaSQL = `
DROP TABLE IF EXISTS food_bev_orders;
DROP TABLE IF EXISTS food_bev_items;
DROP TABLE IF EXISTS table_rentals;
DROP TABLE IF EXISTS game_sales;
DROP TABLE IF EXISTS board_games;
DROP TABLE IF EXISTS operating_expenses;

CREATE TABLE board_games (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	price REAL NOT NULL,
	cost REAL NOT NULL,
	category TEXT NOT NULL,
	in_stock INTEGER NOT NULL
);

CREATE TABLE game_sales (
	id INTEGER PRIMARY KEY,
	game_id INTEGER NOT NULL,
	sale_date TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	unit_price REAL NOT NULL,
	channel TEXT NOT NULL,
	FOREIGN KEY (game_id) REFERENCES board_games(id)
);

CREATE TABLE table_rentals (
	id INTEGER PRIMARY KEY,
	table_number INTEGER NOT NULL,
	rental_date TEXT NOT NULL,
	start_time TEXT NOT NULL,
	duration_hours REAL NOT NULL,
	hourly_rate REAL NOT NULL
);

CREATE TABLE food_bev_items (
	id INTEGER PRIMARY KEY,
	item_name TEXT NOT NULL UNIQUE,
	sell_price REAL NOT NULL,
	cost REAL NOT NULL,
	category TEXT NOT NULL
);

CREATE TABLE food_bev_orders (
	id INTEGER PRIMARY KEY,
	rental_id INTEGER NOT NULL,
	item_name TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	unit_price REAL NOT NULL,
	FOREIGN KEY (rental_id) REFERENCES table_rentals(id)
);

CREATE TABLE operating_expenses (
	id INTEGER PRIMARY KEY,
	month TEXT NOT NULL,
	category TEXT NOT NULL,
	amount REAL NOT NULL,
	description TEXT NOT NULL
);
`

type seedGame struct {
	name     string
	price    float64
	cost     float64
	category string
	inStock  int
}

type seedSale struct {
	gameID    int
	saleDate  string
	quantity  int
	unitPrice float64
	channel   string
}

type seedRental struct {
	table    int
	date     string
	start    string
	duration float64
	rate     float64
}

type seedItem struct {
	name     string
	sell     float64
	cost     float64
	category string
}

type seedOrder struct {
	rentalID  int
	item      string
	quantity  int
	unitPrice float64
}

type seedExpense struct {
	month       string
	category    string
	amount      float64
	description string
}

// Wholesale cost runs around 55% of retail.
var seedGames = []seedGame{
	{"Catan", 49.99, 27.50, "Strategy", 8},
	{"Ticket to Ride", 44.99, 24.75, "Family", 12},
	{"Pandemic", 39.99, 22.00, "Cooperative", 5},
	{"Wingspan", 59.99, 33.00, "Strategy", 6},
	{"Azul", 34.99, 19.25, "Abstract", 10},
	{"Codenames", 19.99, 11.00, "Party", 15},
	{"Splendor", 29.99, 16.50, "Strategy", 7},
	{"7 Wonders", 49.99, 27.50, "Strategy", 4},
	{"Carcassonne", 34.99, 19.25, "Family", 9},
	{"Dominion", 44.99, 24.75, "Deck Building", 6},
	{"Scythe", 79.99, 44.00, "Strategy", 3},
	{"Root", 69.99, 38.50, "Strategy", 4},
	{"Gloomhaven", 139.99, 77.00, "RPG", 2},
	{"Exploding Kittens", 19.99, 11.00, "Party", 20},
	{"Mysterium", 44.99, 24.75, "Cooperative", 5},
}

var seedSales = []seedSale{
	{1, "2026-01-15", 2, 49.99, "in_store"},
	{2, "2026-01-18", 1, 44.99, "online"},
	{3, "2026-01-20", 3, 39.99, "in_store"},
	{6, "2026-01-22", 4, 19.99, "online"},
	{5, "2026-01-25", 2, 34.99, "in_store"},
	{14, "2026-01-28", 5, 19.99, "online"},
	{1, "2026-02-01", 1, 49.99, "in_store"},
	{4, "2026-02-03", 2, 59.99, "online"},
	{7, "2026-02-05", 1, 29.99, "in_store"},
	{11, "2026-02-08", 1, 79.99, "online"},
	{12, "2026-02-10", 2, 69.99, "in_store"},
	{9, "2026-02-12", 3, 34.99, "online"},
	{10, "2026-02-14", 1, 44.99, "in_store"},
	{8, "2026-02-16", 2, 49.99, "online"},
	{15, "2026-02-18", 1, 44.99, "in_store"},
}

var seedRentals = []seedRental{
	{1, "2026-01-15", "14:00", 2.0, 8.00},
	{2, "2026-01-15", "16:00", 3.0, 8.00},
	{3, "2026-01-16", "18:00", 2.5, 8.00},
	{1, "2026-01-18", "12:00", 4.0, 8.00},
	{4, "2026-01-20", "15:00", 2.0, 10.00},
	{2, "2026-01-22", "17:00", 3.0, 8.00},
	{5, "2026-01-25", "14:00", 2.0, 10.00},
	{3, "2026-01-28", "19:00", 3.5, 8.00},
	{1, "2026-02-01", "13:00", 2.0, 8.00},
	{4, "2026-02-03", "16:00", 4.0, 10.00},
	{2, "2026-02-05", "18:00", 2.5, 8.00},
	{5, "2026-02-08", "15:00", 3.0, 10.00},
	{3, "2026-02-10", "14:00", 2.0, 8.00},
	{1, "2026-02-12", "17:00", 3.0, 8.00},
	{4, "2026-02-15", "12:00", 5.0, 10.00},
	{2, "2026-02-18", "16:00", 2.0, 8.00},
}

var seedItems = []seedItem{
	{"Coffee", 4.50, 1.20, "Beverage"},
	{"Latte", 5.50, 1.60, "Beverage"},
	{"Tea", 3.50, 0.80, "Beverage"},
	{"Hot Chocolate", 4.00, 1.30, "Beverage"},
	{"Soda", 2.50, 0.60, "Beverage"},
	{"Craft Beer", 7.00, 3.00, "Alcohol"},
	{"Wine", 8.00, 3.50, "Alcohol"},
	{"Brownie", 3.50, 1.25, "Food"},
	{"Cookie", 2.50, 0.80, "Food"},
	{"Nachos", 9.00, 3.50, "Food"},
	{"Pizza Slice", 5.00, 2.00, "Food"},
}

var seedOrders = []seedOrder{
	{1, "Coffee", 2, 4.50},
	{1, "Brownie", 1, 3.50},
	{2, "Craft Beer", 3, 7.00},
	{2, "Nachos", 1, 9.00},
	{3, "Tea", 2, 3.50},
	{4, "Pizza Slice", 4, 5.00},
	{4, "Soda", 4, 2.50},
	{5, "Coffee", 2, 4.50},
	{6, "Craft Beer", 4, 7.00},
	{7, "Hot Chocolate", 2, 4.00},
	{7, "Cookie", 3, 2.50},
	{8, "Wine", 2, 8.00},
	{9, "Latte", 2, 5.50},
	{10, "Nachos", 2, 9.00},
	{10, "Soda", 3, 2.50},
	{11, "Tea", 1, 3.50},
	{12, "Pizza Slice", 3, 5.00},
	{13, "Coffee", 3, 4.50},
	{14, "Craft Beer", 2, 7.00},
	{15, "Brownie", 2, 3.50},
}

var seedExpenses = []seedExpense{
	{"2026-01", "rent", 3500.00, "Monthly lease, Unit 4"},
	{"2026-01", "utilities", 420.00, "Electricity, water, internet"},
	{"2026-01", "labor", 6200.00, "Staff wages"},
	{"2026-01", "insurance", 300.00, "Liability coverage"},
	{"2026-01", "marketing", 250.00, "Local ads and game night flyers"},
	{"2026-01", "supplies", 340.00, "Cleaning and kitchen supplies"},
	{"2026-02", "rent", 3500.00, "Monthly lease, Unit 4"},
	{"2026-02", "utilities", 450.00, "Electricity, water, internet"},
	{"2026-02", "labor", 6400.00, "Staff wages"},
	{"2026-02", "insurance", 300.00, "Liability coverage"},
	{"2026-02", "marketing", 180.00, "Social media promotion"},
	{"2026-02", "supplies", 310.00, "Cleaning and kitchen supplies"},
}

// Init creates the tables and seeds the sample data, replacing anything
// already there.
func (s *Store) Init(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	for _, g := range seedGames {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO board_games (name, price, cost, category, in_stock) VALUES (?, ?, ?, ?, ?)`,
			g.name, g.price, g.cost, g.category, g.inStock); err != nil {
			return fmt.Errorf("seed board_games: %w", err)
		}
	}
	for _, sale := range seedSales {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO game_sales (game_id, sale_date, quantity, unit_price, channel) VALUES (?, ?, ?, ?, ?)`,
			sale.gameID, sale.saleDate, sale.quantity, sale.unitPrice, sale.channel); err != nil {
			return fmt.Errorf("seed game_sales: %w", err)
		}
	}
	for _, r := range seedRentals {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO table_rentals (table_number, rental_date, start_time, duration_hours, hourly_rate) VALUES (?, ?, ?, ?, ?)`,
			r.table, r.date, r.start, r.duration, r.rate); err != nil {
			return fmt.Errorf("seed table_rentals: %w", err)
		}
	}
	for _, item := range seedItems {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO food_bev_items (item_name, sell_price, cost, category) VALUES (?, ?, ?, ?)`,
			item.name, item.sell, item.cost, item.category); err != nil {
			return fmt.Errorf("seed food_bev_items: %w", err)
		}
	}
	for _, o := range seedOrders {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO food_bev_orders (rental_id, item_name, quantity, unit_price) VALUES (?, ?, ?, ?)`,
			o.rentalID, o.item, o.quantity, o.unitPrice); err != nil {
			return fmt.Errorf("seed food_bev_orders: %w", err)
		}
	}
	for _, e := range seedExpenses {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO operating_expenses (month, category, amount, description) VALUES (?, ?, ?, ?)`,
			e.month, e.category, e.amount, e.description); err != nil {
			return fmt.Errorf("seed operating_expenses: %w", err)
		}
	}

	return tx.Commit()
}
