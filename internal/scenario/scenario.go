// Package scenario projects revenue and profit under hypothetical changes
// to prices, volumes, expenses, and table hours.
package scenario

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DB runs parameterized read-only queries against the cafe database.
type DB interface {
	QueryArgs(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error)
}

// Runner evaluates what-if scenarios. Domain problems (unknown item,
// missing parameter) come back inside the result map under "error";
// the error return is reserved for database failures.
type Runner struct {
	db DB
}

func NewRunner(db DB) *Runner {
	return &Runner{db: db}
}

// ValidTypes lists the scenario types Run accepts.
var ValidTypes = []string{"price_change", "volume_change", "expense_change", "hours_change"}

func (r *Runner) Run(ctx context.Context, scenarioType string, params map[string]any) (map[string]any, error) {
	switch scenarioType {
	case "price_change":
		return r.priceChange(ctx, params)
	case "volume_change":
		return r.volumeChange(ctx, params)
	case "expense_change":
		return r.expenseChange(ctx, params)
	case "hours_change":
		return r.hoursChange(ctx, params)
	default:
		return map[string]any{
			"error":       fmt.Sprintf("Unknown scenario type: %s", scenarioType),
			"valid_types": ValidTypes,
		}, nil
	}
}

func (r *Runner) priceChange(ctx context.Context, params map[string]any) (map[string]any, error) {
	target, ok := stringParam(params, "target")
	if !ok {
		return missingParam("price_change", "target"), nil
	}
	pct, ok := numberParam(params, "change_percent")
	if !ok {
		return missingParam("price_change", "change_percent"), nil
	}
	multiplier := 1 + pct/100

	switch strings.ToLower(target) {
	case "games":
		row, err := r.one(ctx, `
			SELECT
				SUM(gs.quantity * gs.unit_price) AS revenue,
				SUM(gs.quantity * (gs.unit_price - bg.cost)) AS profit
			FROM game_sales gs
			JOIN board_games bg ON gs.game_id = bg.id`)
		if err != nil {
			return nil, err
		}
		return aggregatePriceResult(
			fmt.Sprintf("Game prices %s by %s%%", direction(pct), formatNum(math.Abs(pct))),
			row, multiplier), nil

	case "food":
		row, err := r.one(ctx, `
			SELECT
				SUM(fbo.quantity * fbo.unit_price) AS revenue,
				SUM(fbo.quantity * (fbo.unit_price - fbi.cost)) AS profit
			FROM food_bev_orders fbo
			JOIN food_bev_items fbi ON fbo.item_name = fbi.item_name`)
		if err != nil {
			return nil, err
		}
		return aggregatePriceResult(
			fmt.Sprintf("Food & beverage prices %s by %s%%", direction(pct), formatNum(math.Abs(pct))),
			row, multiplier), nil

	case "tables", "rentals", "table_rentals":
		row, err := r.one(ctx, `SELECT SUM(duration_hours * hourly_rate) AS revenue FROM table_rentals`)
		if err != nil {
			return nil, err
		}
		revenue, _ := num(row, "revenue")
		projected := revenue * multiplier
		return map[string]any{
			"scenario":          fmt.Sprintf("Table rental rates %s by %s%%", direction(pct), formatNum(math.Abs(pct))),
			"current_revenue":   round2(revenue),
			"projected_revenue": round2(projected),
			"revenue_change":    round2(projected - revenue),
			"note":              "Table rentals are pure profit (no direct costs)",
			"assumption":        "Assumes same booking volume at new rates",
		}, nil
	}

	return r.itemPriceChange(ctx, target, pct, multiplier)
}

func (r *Runner) itemPriceChange(ctx context.Context, target string, pct, multiplier float64) (map[string]any, error) {
	pattern := "%" + strings.ToLower(target) + "%"

	games, err := r.db.QueryArgs(ctx,
		`SELECT id, name, price, cost FROM board_games WHERE LOWER(name) LIKE ?`, pattern)
	if err != nil {
		return nil, err
	}
	if len(games) > 0 {
		game := games[0]
		sales, err := r.one(ctx, `
			SELECT SUM(quantity) AS units, SUM(quantity * unit_price) AS revenue
			FROM game_sales WHERE game_id = ?`, game["id"])
		if err != nil {
			return nil, err
		}
		units, haveUnits := num(sales, "units")
		name, _ := game["name"].(string)
		if !haveUnits || units == 0 {
			return map[string]any{"error": fmt.Sprintf("No sales found for %s", name)}, nil
		}
		price, _ := num(game, "price")
		cost, _ := num(game, "cost")
		revenue, _ := num(sales, "revenue")
		return itemPriceResult(name, units, revenue, price, cost, pct, multiplier), nil
	}

	foods, err := r.db.QueryArgs(ctx,
		`SELECT item_name, sell_price, cost FROM food_bev_items WHERE LOWER(item_name) LIKE ?`, pattern)
	if err != nil {
		return nil, err
	}
	if len(foods) > 0 {
		food := foods[0]
		name, _ := food["item_name"].(string)
		sales, err := r.one(ctx, `
			SELECT SUM(quantity) AS units, SUM(quantity * unit_price) AS revenue
			FROM food_bev_orders WHERE LOWER(item_name) = ?`, strings.ToLower(name))
		if err != nil {
			return nil, err
		}
		units, haveUnits := num(sales, "units")
		if !haveUnits || units == 0 {
			return map[string]any{"error": fmt.Sprintf("No sales found for %s", name)}, nil
		}
		price, _ := num(food, "sell_price")
		cost, _ := num(food, "cost")
		revenue, _ := num(sales, "revenue")
		return itemPriceResult(name, units, revenue, price, cost, pct, multiplier), nil
	}

	return map[string]any{"error": fmt.Sprintf("Could not find item matching '%s'", target)}, nil
}

func itemPriceResult(name string, units, revenue, price, cost, pct, multiplier float64) map[string]any {
	currentProfit := units * (price - cost)
	newPrice := price * multiplier
	newRevenue := units * newPrice
	newProfit := units * (newPrice - cost)
	return map[string]any{
		"scenario": fmt.Sprintf("%s price changed from $%.2f to $%.2f (%+.0f%%)",
			name, price, newPrice, pct),
		"units_sold":        units,
		"current_revenue":   round2(revenue),
		"projected_revenue": round2(newRevenue),
		"revenue_change":    round2(newRevenue - revenue),
		"current_profit":    round2(currentProfit),
		"projected_profit":  round2(newProfit),
		"profit_change":     round2(newProfit - currentProfit),
		"assumption":        "Assumes same units sold at new price",
	}
}

// aggregatePriceResult applies a uniform markup over an aggregate; profit
// moves by the full revenue delta because costs stay fixed.
func aggregatePriceResult(scenario string, row map[string]any, multiplier float64) map[string]any {
	revenue, _ := num(row, "revenue")
	profit, _ := num(row, "profit")
	newRevenue := revenue * multiplier
	newProfit := profit + revenue*(multiplier-1)
	return map[string]any{
		"scenario":          scenario,
		"current_revenue":   round2(revenue),
		"projected_revenue": round2(newRevenue),
		"revenue_change":    round2(newRevenue - revenue),
		"current_profit":    round2(profit),
		"projected_profit":  round2(newProfit),
		"profit_change":     round2(newProfit - profit),
		"assumption":        "Assumes same volume sold at new prices",
	}
}

func (r *Runner) volumeChange(ctx context.Context, params map[string]any) (map[string]any, error) {
	target, ok := stringParam(params, "target")
	if !ok {
		return missingParam("volume_change", "target"), nil
	}
	qty, ok := numberParam(params, "quantity_change")
	if !ok {
		return missingParam("volume_change", "quantity_change"), nil
	}
	pattern := "%" + strings.ToLower(target) + "%"

	games, err := r.db.QueryArgs(ctx,
		`SELECT name, price, cost FROM board_games WHERE LOWER(name) LIKE ?`, pattern)
	if err != nil {
		return nil, err
	}
	if len(games) > 0 {
		game := games[0]
		name, _ := game["name"].(string)
		price, _ := num(game, "price")
		cost, _ := num(game, "cost")
		return volumeResult(name, price, cost, qty), nil
	}

	foods, err := r.db.QueryArgs(ctx,
		`SELECT item_name, sell_price, cost FROM food_bev_items WHERE LOWER(item_name) LIKE ?`, pattern)
	if err != nil {
		return nil, err
	}
	if len(foods) > 0 {
		food := foods[0]
		name, _ := food["item_name"].(string)
		price, _ := num(food, "sell_price")
		cost, _ := num(food, "cost")
		return volumeResult(name, price, cost, qty), nil
	}

	return map[string]any{"error": fmt.Sprintf("Could not find item matching '%s'", target)}, nil
}

func volumeResult(name string, price, cost, qty float64) map[string]any {
	profitPerUnit := price - cost
	verb, dir := "Sell", "more"
	if qty <= 0 {
		verb, dir = "Sold", "fewer"
	}
	return map[string]any{
		"scenario":        fmt.Sprintf("%s %s %s units of %s", verb, formatNum(math.Abs(qty)), dir, name),
		"price_per_unit":  price,
		"cost_per_unit":   cost,
		"profit_per_unit": round2(profitPerUnit),
		"revenue_impact":  round2(qty * price),
		"profit_impact":   round2(qty * profitPerUnit),
	}
}

var monthAliases = map[string]string{
	"january": "2026-01", "jan": "2026-01",
	"february": "2026-02", "feb": "2026-02",
}

func (r *Runner) expenseChange(ctx context.Context, params map[string]any) (map[string]any, error) {
	category, ok := stringParam(params, "category")
	if !ok {
		return missingParam("expense_change", "category"), nil
	}
	pct, ok := numberParam(params, "change_percent")
	if !ok {
		return missingParam("expense_change", "change_percent"), nil
	}
	multiplier := 1 + pct/100

	monthLabel := "all time"
	var monthValue string
	if month, ok := stringParam(params, "month"); ok && month != "" {
		monthValue = month
		if mapped, ok := monthAliases[strings.ToLower(month)]; ok {
			monthValue = mapped
		}
		monthLabel = monthValue
	}

	var (
		row map[string]any
		err error
	)
	if strings.ToLower(category) == "all" {
		if monthValue != "" {
			row, err = r.one(ctx, `SELECT SUM(amount) AS total FROM operating_expenses WHERE month = ?`, monthValue)
		} else {
			row, err = r.one(ctx, `SELECT SUM(amount) AS total FROM operating_expenses`)
		}
		if err != nil {
			return nil, err
		}
		total, have := num(row, "total")
		if !have || total == 0 {
			return map[string]any{"error": fmt.Sprintf("No expenses found for %s", monthLabel)}, nil
		}
		return expenseResult(
			fmt.Sprintf("All operating expenses %s by %s%%", direction(pct), formatNum(math.Abs(pct))),
			monthLabel, total, multiplier), nil
	}

	pattern := "%" + strings.ToLower(category) + "%"
	if monthValue != "" {
		row, err = r.one(ctx,
			`SELECT SUM(amount) AS total FROM operating_expenses WHERE LOWER(category) LIKE ? AND month = ?`,
			pattern, monthValue)
	} else {
		row, err = r.one(ctx,
			`SELECT SUM(amount) AS total FROM operating_expenses WHERE LOWER(category) LIKE ?`, pattern)
	}
	if err != nil {
		return nil, err
	}
	total, have := num(row, "total")
	if !have || total == 0 {
		return map[string]any{
			"error": fmt.Sprintf("No expenses found matching category '%s' for %s", category, monthLabel),
		}, nil
	}
	return expenseResult(
		fmt.Sprintf("%s expenses %s by %s%%", titleCase(category), direction(pct), formatNum(math.Abs(pct))),
		monthLabel, total, multiplier), nil
}

func expenseResult(scenario, period string, total, multiplier float64) map[string]any {
	newTotal := total * multiplier
	return map[string]any{
		"scenario":           scenario,
		"period":             period,
		"current_expenses":   round2(total),
		"projected_expenses": round2(newTotal),
		"expense_change":     round2(newTotal - total),
		"net_profit_impact":  round2(-(newTotal - total)),
		"note":               "Negative impact means reduced profit",
	}
}

func (r *Runner) hoursChange(ctx context.Context, params map[string]any) (map[string]any, error) {
	hours, ok := numberParam(params, "hours_change")
	if !ok {
		return missingParam("hours_change", "hours_change"), nil
	}
	rate, haveRate := numberParam(params, "hourly_rate")
	if !haveRate {
		row, err := r.one(ctx, `SELECT AVG(hourly_rate) AS rate FROM table_rentals`)
		if err != nil {
			return nil, err
		}
		rate, _ = num(row, "rate")
	}

	verb := "Add"
	if hours <= 0 {
		verb = "Reduce"
	}
	impact := hours * rate
	return map[string]any{
		"scenario":       fmt.Sprintf("%s %s rental hours at $%.2f/hour", verb, formatNum(math.Abs(hours)), rate),
		"hourly_rate":    rate,
		"hours_change":   hours,
		"revenue_impact": round2(impact),
		"profit_impact":  round2(impact),
		"note":           "Table rentals are 100% margin (no direct costs)",
	}, nil
}

func (r *Runner) one(ctx context.Context, sqlText string, args ...any) (map[string]any, error) {
	rows, err := r.db.QueryArgs(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return map[string]any{}, nil
	}
	return rows[0], nil
}

func missingParam(scenarioType, name string) map[string]any {
	return map[string]any{
		"error": fmt.Sprintf("%s requires parameter '%s'", scenarioType, name),
	}
}

func stringParam(params map[string]any, key string) (string, bool) {
	v, ok := params[key].(string)
	return v, ok
}

func numberParam(params map[string]any, key string) (float64, bool) {
	switch v := params[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// num reads a numeric column that may come back as NULL.
func num(row map[string]any, key string) (float64, bool) {
	switch v := row[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func direction(pct float64) string {
	if pct > 0 {
		return "increased"
	}
	return "decreased"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatNum drops a trailing ".0" so whole percentages read naturally.
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
