package excel

// sheetData is one worksheet read back as text
type sheetData struct {
	Name string
	Rows [][]string // first row is the flattened header
}

func (s sheetData) header() [][]string {
	if len(s.Rows) == 0 {
		return nil
	}
	return s.Rows[:1]
}

func (s sheetData) body() [][]string {
	if len(s.Rows) < 2 {
		return nil
	}
	return s.Rows[1:]
}
