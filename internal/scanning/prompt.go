package scanning

import (
	"fmt"
	"strings"
)

// extractionPrompt is the shared instruction text used by all model backends
// when extracting line items from a receipt image.
const extractionPrompt = `Analyze this receipt image and extract all items with their EXACT prices. Return the data in the following JSON format:

{
  "text": "Raw text content from the receipt",
  "items": [
    {
      "id": "item-1",
      "name": "Item name",
      "price": 12.99,
      "assignedTo": []
    }
  ]
}

CRITICAL INSTRUCTIONS FOR PRICE ACCURACY:
- Look carefully at each line item and match the EXACT price shown for that item
- Prices are typically on the same line as the item name, usually on the right side
- Be very precise with decimal places (e.g., if you see $3.99, use exactly 3.99)
- Some receipts show prices without dollar signs - still convert them to decimal numbers
- Do NOT use the total, subtotal, tax amounts, or any summary prices
- Only extract the individual item prices as they appear on the receipt
- If a line shows multiple prices, use the price that corresponds to that specific item
- Double-check each price against what you see in the image

EXTRACTION RULES:
- Extract ALL individual items from the receipt
- Use clear, readable item names (remove any extra codes or abbreviations if possible)
- Convert all prices to decimal numbers (e.g., $12.99 -> 12.99, 5.50 -> 5.50)
- Skip taxes, tips, totals, subtotals, and any summary lines
- Include the raw text content in the "text" field
- If you can't read something clearly, make your best educated guess based on context`

// maxElaborationContext bounds how much receipt text is forwarded with an
// elaboration request.
const maxElaborationContext = 500

// elaborationPrompt builds the instruction text for explaining an unclear
// receipt item using whatever context the caller supplied.
func elaborationPrompt(e Elaboration) string {
	price := "unknown"
	if e.ItemPrice > 0 {
		price = fmt.Sprintf("%.2f", e.ItemPrice)
	}

	store := e.StoreName
	if store == "" {
		store = "Unknown store"
	}

	receiptContext := "No additional context"
	if e.ReceiptText != "" {
		receiptContext = e.ReceiptText
		if len(receiptContext) > maxElaborationContext {
			receiptContext = receiptContext[:maxElaborationContext]
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are helping to clarify what a grocery store item is. Based on the following information, provide a helpful description of what this item likely is:

Item Name: %q
Price: $%s
Store: %s
Receipt Context: %s

`, e.ItemName, price, store, receiptContext)

	b.WriteString(`Please provide a brief, helpful description (2-3 sentences) that explains:
1. What this item likely is (food, household item, etc.)
2. Common uses or context for this item
3. Why someone might buy it at this price point

Be specific and helpful. If the item name is unclear or abbreviated, make your best educated guess based on the price, store type, and any context from the receipt. Focus on being practical and informative.

Examples:
- "ORGS" at $3.99 -> "This appears to be organic produce, likely organic fruits or vegetables. Organic items typically cost more than conventional produce."
- "BREAD WHL" at $2.49 -> "This is whole wheat bread, a healthy staple food item. Whole grain breads are popular for sandwiches and toast."
- "MILK 2%" at $3.79 -> "This is 2% reduced-fat milk, a common dairy product. The price suggests it's regular-sized (gallon) milk from a grocery store."`)

	return b.String()
}
