package domo

// Align reorders a header/records grid to this schema's column order. Payload
// columns the schema does not define are dropped; schema columns missing from
// the payload become empty cells, keeping every record at schema width.
func (s Schema) Align(header []string, records [][]string) ([]string, [][]string) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[name] = i
	}

	// -1 marks a schema column the payload does not carry.
	sources := make([]int, len(s.Columns))
	alignedHeader := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		alignedHeader[i] = col.Name
		if j, ok := pos[col.Name]; ok {
			sources[i] = j
		} else {
			sources[i] = -1
		}
	}

	aligned := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(sources))
		for i, j := range sources {
			if j >= 0 && j < len(rec) {
				row[i] = rec[j]
			}
		}
		aligned = append(aligned, row)
	}
	return alignedHeader, aligned
}
