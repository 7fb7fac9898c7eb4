package renamer

// RenameMap 记录已改名目录的 原路径 -> 新路径，保持插入顺序
type RenameMap struct {
	order []string
	moves map[string]string
}

func NewRenameMap() *RenameMap {
	return &RenameMap{moves: make(map[string]string)}
}

func (m *RenameMap) Add(from, to string) {
	if _, ok := m.moves[from]; !ok {
		m.order = append(m.order, from)
	}
	m.moves[from] = to
}

func (m *RenameMap) Len() int {
	return len(m.order)
}

// Targets 按插入顺序返回所有新路径
func (m *RenameMap) Targets() []string {
	targets := make([]string, 0, len(m.order))
	for _, from := range m.order {
		targets = append(targets, m.moves[from])
	}
	return targets
}
