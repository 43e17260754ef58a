package extract

import (
	"fmt"
	"strings"
)

// Prompt templates mirror the wire contract the decoders expect. Changing a
// field name here without changing the decode structs breaks extraction
// silently, so keep them together.

func statementSystemPrompt(categories []string) string {
	return fmt.Sprintf(`You are a financial document parser. Extract all transactions from the text and output them as JSON array.

Each transaction should have:
- date: ISO 8601 format (YYYY-MM-DD)
- description: Transaction description
- amount: Negative for expenses, positive for income
- currency: Currency code (default USD)
- category: One of: %s
- merchant: Merchant name or null

Rules:
- Use negative amounts for expenses, positive for income
- If date is ambiguous, use context to infer year
- If category is unclear, use "Other"
- Output only valid JSON array, no explanations`, strings.Join(categories, ", "))
}

func scannedStatementSystemPrompt(categories []string) string {
	return fmt.Sprintf(`You are a bank statement parser. Extract ALL transactions from this bank statement.

Output a JSON array of transactions. Each transaction should have:
- date: ISO 8601 format (YYYY-MM-DD)
- description: Transaction description (merchant name, payment details, etc.)
- amount: Negative for expenses/debits (money out), positive for income/credits (money in)
- currency: Currency code (default USD)
- category: One of: %s
- merchant: Merchant name extracted from description, or null

Rules:
- Extract EVERY transaction row - DO NOT SUMMARIZE
- Look for columns like "Date", "Description", "Debit", "Credit", "Amount", "Balance"
- Debits/expenses should be NEGATIVE amounts
- Credits/income should be POSITIVE amounts
- Parse dates carefully - convert to YYYY-MM-DD format
- Extract merchant names from descriptions
- CRITICAL: Include ALL transactions

Output only valid JSON array, no explanations`, strings.Join(categories, ", "))
}

func receiptSystemPrompt(categories []string, fromImage bool) string {
	subject := "a receipt"
	if fromImage {
		subject = "a receipt image or scanned document"
	}
	return fmt.Sprintf(`You are analyzing %s. Extract detailed item information for tracking purchases.

Output JSON format:
{
  "merchant": "Store name",
  "date": "YYYY-MM-DD",
  "items": [
    {
      "name": "product-name-in-kebab-case",
      "quantity": 2.5,
      "unit": "lb" | "oz" | "kg" | "g" | "each" | "pack" | null,
      "unit_price": 3.99,
      "total_price": 9.97,
      "category": "produce" | "dairy" | "meat" | "seafood" | "bakery" | "frozen" | "beverages" | "snacks" | "pantry" | "household" | "personal_care" | "alcohol" | "other",
      "brand": "Brand name" | null
    }
  ],
  "tax": 2.50,
  "total": 45.67,
  "category": "%s"
}

CRITICAL Item extraction rules:
- Extract EVERY individual line item from the receipt - DO NOT SUMMARIZE
- Product names MUST be in lowercase kebab-case (e.g., "pumpkin-spice-latte", "chicken-sandwich", "iced-coffee")
- Remove store codes, SKUs, abbreviations - use clean descriptive names
- Parse quantity and unit when available
- If no quantity shown, assume quantity: 1
- Categorize items appropriately:
  - produce: fruits, vegetables
  - dairy: milk, cheese, yogurt, butter
  - meat: chicken, beef, pork
  - seafood: fish, shrimp
  - bakery: bread, bagels, pastries
  - frozen: frozen meals, ice cream
  - beverages: coffee, tea, water, juice, soda
  - snacks: chips, candy, cookies
  - pantry: canned goods, condiments, seasonings
  - household: cleaning supplies
  - personal_care: hygiene products
  - alcohol: beer, wine, spirits
  - other: anything else
- Extract brand names when visible
- unit_price is price per unit, total_price is the line item total

IMPORTANT: Extract ALL items individually. Do not combine or summarize multiple items.

Output only valid JSON.`, subject, strings.Join(categories, ", "))
}
