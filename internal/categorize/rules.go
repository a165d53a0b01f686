package categorize

// Rule maps a keyword to a category. Rules are evaluated in slice order and
// the first keyword found in the text wins, so put the more specific
// keywords first when two overlap.
type Rule struct {
	Keyword  string
	Category string
}

// Categories is the closed vocabulary every entry category is drawn from.
// Anything a rule or the external classifier produces outside this list is
// discarded in favor of Fallback.
func Categories() []string {
	return []string{
		"sales", "supplies", "rent", "utilities", "internet", "phone",
		"transport", "food", "maintenance", "wages", "taxes", "marketing",
		"equipment", "other",
	}
}

// Fallback is the category of last resort.
const Fallback = "other"

// InVocabulary reports whether the category is part of the closed set.
func InVocabulary(category string) bool {
	for _, c := range Categories() {
		if c == category {
			return true
		}
	}
	return false
}

// DefaultRules is the bilingual keyword table the bot ships with. Portuguese
// first since that is what Brazilian receipts carry.
func DefaultRules() []Rule {
	return []Rule{
		// Revenue
		{"venda", "sales"},
		{"vendas", "sales"},
		{"sold", "sales"},
		{"sale", "sales"},
		{"receita", "sales"},
		{"revenue", "sales"},
		{"pagamento recebido", "sales"},
		{"payment received", "sales"},
		{"pix recebido", "sales"},

		// Cost of goods
		{"fornecedor", "supplies"},
		{"supplier", "supplies"},
		{"material", "supplies"},
		{"matéria", "supplies"},
		{"insumo", "supplies"},
		{"ingrediente", "supplies"},
		{"estoque", "supplies"},
		{"stock", "supplies"},

		// Operating expenses
		{"aluguel", "rent"},
		{"rent", "rent"},
		{"luz", "utilities"},
		{"energia", "utilities"},
		{"água", "utilities"},
		{"water", "utilities"},
		{"electricity", "utilities"},
		{"internet", "internet"},
		{"telefone", "phone"},
		{"phone", "phone"},

		// Transport
		{"transporte", "transport"},
		{"uber", "transport"},
		{"gasolina", "transport"},
		{"gas", "transport"},
		{"fuel", "transport"},
		{"combustível", "transport"},

		// Food
		{"almoço", "food"},
		{"lanche", "food"},
		{"comida", "food"},
		{"restaurante", "food"},
		{"lunch", "food"},
		{"food", "food"},

		// Maintenance
		{"manutenção", "maintenance"},
		{"conserto", "maintenance"},
		{"repair", "maintenance"},

		// Wages
		{"salário", "wages"},
		{"funcionário", "wages"},
		{"employee", "wages"},
		{"salary", "wages"},
		{"wages", "wages"},
	}
}

// RevenueCategories are the categories counted as revenue by the advisor;
// everything else is treated as a cost driver.
func RevenueCategories() map[string]bool {
	return map[string]bool{"sales": true}
}
