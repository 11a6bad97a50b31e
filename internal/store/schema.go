package store

// SchemaDescription is the table reference handed to the model so it can
// write queries against the cafe database.
func SchemaDescription() string {
	return `Database schema:

board_games(id, name, price, cost, category, in_stock)
  - Inventory of games for sale. price is retail, cost is wholesale.

game_sales(id, game_id, sale_date, quantity, unit_price, channel)
  - Individual sale records. game_id references board_games.id.
  - channel is 'in_store' or 'online'. sale_date is 'YYYY-MM-DD'.

table_rentals(id, table_number, rental_date, start_time, duration_hours, hourly_rate)
  - Table bookings. Revenue per rental = duration_hours * hourly_rate.
  - rental_date is 'YYYY-MM-DD', start_time is 'HH:MM'.

food_bev_items(id, item_name, sell_price, cost, category)
  - Menu with margins. category is 'Beverage', 'Alcohol', or 'Food'.

food_bev_orders(id, rental_id, item_name, quantity, unit_price)
  - Food and drink ordered during rentals. rental_id references table_rentals.id.

operating_expenses(id, month, category, amount, description)
  - Monthly fixed costs. month is 'YYYY-MM'.
  - category is one of: rent, utilities, labor, insurance, marketing, supplies.`
}
