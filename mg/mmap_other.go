//go:build !unix

package mg

// MappedTable On platforms without mmap the table is read into memory
type MappedTable struct {
	Table Table
}

func Map(path string, expected int) (*MappedTable, error) {
	t, err := Load(path, expected)
	if t == nil && err != nil {
		return nil, err
	}
	return &MappedTable{Table: t}, err
}

func (m *MappedTable) Close() error {
	m.Table = nil
	return nil
}
