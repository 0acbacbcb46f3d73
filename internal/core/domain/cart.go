package domain

// CartLine is an immutable snapshot of one cart entry, taken when the
// checkout saga starts. UnitPrice is whole rupees at snapshot time.
type CartLine struct {
	ProductID string
	Quantity  int
	UnitPrice int64
	Variant   string
}

func (l CartLine) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Subtotal sums line totals over a cart snapshot.
func Subtotal(lines []CartLine) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.LineTotal()
	}
	return sum
}

type ShippingAddress struct {
	Name       string
	Street     string
	City       string
	PostalCode string
	Phone      string
}
