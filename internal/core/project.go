package core

// Project returns a table holding only the selected columns, in the table's
// own column order. An empty selection keeps every column. Selected names
// that do not exist are returned as unknown and otherwise ignored; if none
// of the selected names exist the table is returned unchanged, so a
// projection never yields a table without columns.
//
// The returned table shares cells with t.
func Project(t *Table, selected []string) (out *Table, unknown []string) {
	if len(selected) == 0 {
		return t, nil
	}

	want := make(map[string]bool, len(selected))
	for _, name := range selected {
		if t.Column(name) == nil {
			unknown = append(unknown, name)
			continue
		}
		want[name] = true
	}
	if len(want) == 0 {
		return t, unknown
	}

	out = &Table{Columns: make([]*Column, 0, len(want))}
	for _, c := range t.Columns {
		if want[c.Name] {
			out.Columns = append(out.Columns, c)
		}
	}
	return out, unknown
}
