package tui

const welcomeText = `Board Game Cafe Assistant

I can help you answer questions about our cafe's data:

  - Inventory: board games in stock, prices, categories
  - Sales: game sales history, revenue, top sellers
  - Table rentals: bookings, revenue, popular times
  - Food & beverage: order history, popular items, margins
  - Expenses: monthly operating costs

Just ask me anything in natural language.
Type /help for commands or /quit to exit.`

const helpText = `Commands:

  /help      Show this help message
  /tables    Show database schema
  /sample    Show sample questions
  /clear     Clear the screen
  /history   Clear conversation history
  /quit      Exit the assistant

Or just ask a question in plain English.
Press ctrl+y to copy the last answer.`

var sampleQuestions = []string{
	"How many board games do we have in stock?",
	"What are our top 3 selling games?",
	"What was our profit margin on game sales?",
	"What were our total operating expenses in January?",
	"Which food items have the highest profit margin?",
	"What's our net profit after all expenses?",
}
