package report

// Field is one named cell of a record
type Field struct {
	Key   string
	Value string
}

// Record is an ordered list of fields
type Record []Field

// Table holds a report's detail records. The first record's keys form the
// header, in order.
type Table struct {
	Records []Record
}

// Header returns the keys of the first record
func (t Table) Header() []string {
	if len(t.Records) == 0 {
		return nil
	}
	header := make([]string, len(t.Records[0]))
	for i, f := range t.Records[0] {
		header[i] = f.Key
	}
	return header
}

// Rows returns each record's values aligned to the header. Missing keys become
// empty cells and keys outside the header are dropped.
func (t Table) Rows() [][]string {
	header := t.Header()
	rows := make([][]string, 0, len(t.Records))
	for _, rec := range t.Records {
		row := make([]string, len(header))
		for i, key := range header {
			for _, f := range rec {
				if f.Key == key {
					row[i] = f.Value
					break
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// IsEmpty reports whether the table has no records
func (t Table) IsEmpty() bool {
	return len(t.Records) == 0
}
