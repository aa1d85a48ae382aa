package currency

// Formatter binds the formatting functions to a selected currency so the
// choice is passed explicitly to whoever renders amounts.
type Formatter struct {
	cur Currency
}

// NewFormatter returns a Formatter for c, or for Default() when c is nil.
func NewFormatter(c *Currency) Formatter {
	return Formatter{cur: orDefault(c)}
}

// Currency returns the descriptor the formatter renders with.
func (f Formatter) Currency() Currency {
	return f.cur
}

func (f Formatter) Format(amount float64) string {
	return Format(amount, &f.cur)
}

func (f Formatter) FormatCents(cents int64) string {
	return FormatCents(cents, &f.cur)
}

func (f Formatter) Parse(input string) float64 {
	return ParseFor(input, &f.cur)
}
