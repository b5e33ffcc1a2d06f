package fuelcsv

// Profile describes the column layout of a fuel spreadsheet export.
type Profile struct {
	Name string

	DateCol     string
	AmountCol   string
	VolumeCol   string
	OdometerCol string

	// Optional columns.
	StationCol string
	NoteCol    string
	VendorCol  string

	DateLayouts []string

	// Decimal and Thousands are the number separators of the layout.
	Decimal   string
	Thousands string
}

func (p Profile) requiredCols() []string {
	return []string{p.DateCol, p.AmountCol, p.VolumeCol, p.OdometerCol}
}

// profiles are tried in order against every row until a header matches.
var profiles = []Profile{
	{
		Name:        "planilha",
		DateCol:     "Data",
		AmountCol:   "Valor",
		VolumeCol:   "Litros",
		OdometerCol: "KM",
		StationCol:  "Posto",
		NoteCol:     "Observação",
		VendorCol:   "Fornecedor",
		DateLayouts: []string{"02/01/2006 15:04", "02/01/2006", "02/01/06"},
		Decimal:     ",",
		Thousands:   ".",
	},
	{
		Name:        "sheet",
		DateCol:     "Date",
		AmountCol:   "Amount",
		VolumeCol:   "Volume",
		OdometerCol: "Odometer",
		StationCol:  "Station",
		NoteCol:     "Note",
		VendorCol:   "Vendor",
		DateLayouts: []string{"2006-01-02T15:04:05Z07:00", "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"},
		Decimal:     ".",
		Thousands:   ",",
	},
}
