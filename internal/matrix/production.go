package matrix

// Canonical level names of the sector and product axes
var (
	SectorFields  = []string{"location", "sector name", "sector code 1", "sector code 2"}
	ProductFields = []string{"location", "product name", "product code 1", "product code 2", "unit"}

	// ExtensionFields are the row levels of the canonical extension table
	ExtensionFields = []string{"name", "unit", "compartment", "kind"}

	// ProductionFields is the flat field list of the production table.
	// The location is shared between the sector and the product.
	ProductionFields = []string{
		"location",
		"sector name",
		"sector code 1",
		"sector code 2",
		"product name",
		"product code 1",
		"product code 2",
		"unit",
	}
)

// ProductionEntry is one (sector, product) pair with its principal output
type ProductionEntry struct {
	Sector  Label
	Product Label
	Value   float64
}

// ProductionVector holds the principal production in publisher order
type ProductionVector struct {
	Entries []ProductionEntry
}

// Len returns the number of entries
func (p *ProductionVector) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Entries)
}

// Values returns the output values in order
func (p *ProductionVector) Values() []float64 {
	out := make([]float64, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = e.Value
	}
	return out
}

// Select returns a new vector with the entries at the given positions
func (p *ProductionVector) Select(positions []int) *ProductionVector {
	out := &ProductionVector{Entries: make([]ProductionEntry, len(positions))}
	for i, pos := range positions {
		e := p.Entries[pos]
		out.Entries[i] = ProductionEntry{Sector: e.Sector.Clone(), Product: e.Product.Clone(), Value: e.Value}
	}
	return out
}

// Row flattens an entry into the production table field order
func (e ProductionEntry) Row() []string {
	row := make([]string, 0, len(ProductionFields))
	row = append(row, e.Sector...)
	if len(e.Product) > 0 {
		row = append(row, e.Product[1:]...)
	}
	return row
}

// EntryFromRow splits a production table row (without the value) into
// sector and product labels
func EntryFromRow(fields []string, value float64) ProductionEntry {
	sector := Label{fields[0], fields[1], fields[2], fields[3]}
	product := Label{fields[0], fields[4], fields[5], fields[6], fields[7]}
	return ProductionEntry{Sector: sector, Product: product, Value: value}
}
