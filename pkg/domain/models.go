package domain

// Customer is the typed payload of a customer document.
type Customer struct {
	Firstname string
	Lastname  string
}

// Document converts the customer to its stored form.
func (c Customer) Document() Document {
	return Document{
		"firstname": c.Firstname,
		"lastname":  c.Lastname,
	}
}

// CreditCard is an element of a customer's creditcards array.
type CreditCard struct {
	Provider   string
	Number     string
	Expiration string
}

// Value converts the card to the element stored in the creditcards array.
func (c CreditCard) Value() map[string]interface{} {
	return map[string]interface{}{
		"provider":   c.Provider,
		"number":     c.Number,
		"expiration": c.Expiration,
	}
}

// Product is the typed payload of a product document.
type Product struct {
	Name  string
	Price float64
}

// Document converts the product to its stored form.
func (p Product) Document() Document {
	return Document{
		"name":  p.Name,
		"price": p.Price,
	}
}

// NewReceipt assembles a receipt from point-in-time copies of a customer and
// its products. The copies are never re-synchronised with their sources.
func NewReceipt(customer Document, products []Document) Document {
	items := make([]interface{}, 0, len(products))
	for _, p := range products {
		items = append(items, map[string]interface{}(p.Clone()))
	}
	var snapshot interface{}
	if customer != nil {
		snapshot = map[string]interface{}(customer.Clone())
	}
	return Document{
		FieldCustomer: snapshot,
		FieldProducts: items,
	}
}
