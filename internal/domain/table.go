package domain

// DetailRows is a scenario detail table as read from the warehouse, minus
// its ordering column. Cells are nil, string, int64 or float64.
type DetailRows struct {
	Columns []string
	Rows    [][]any
}

// DetailTable is the side table shown next to the map: ZIPCODE index,
// DEMAND_SCORE first, then every detail column.
type DetailTable struct {
	Scenario int      `json:"scenario"`
	Table    string   `json:"table"`
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
}
