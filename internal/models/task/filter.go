package task

import "strings"

type SortField string

const (
	SortNone       SortField = ""
	SortDueDate    SortField = "due_date"
	SortCreateDate SortField = "create_date"
)

// ParseSortField возвращает SortNone для любого неизвестного значения
func ParseSortField(raw string) SortField {
	switch SortField(raw) {
	case SortDueDate:
		return SortDueDate
	case SortCreateDate:
		return SortCreateDate
	default:
		return SortNone
	}
}

type ListFilter struct {
	Search string
	Sort   SortField
}

// Matches проверяет вхождение Search в название задачи (с учётом регистра)
func (f ListFilter) Matches(t *Task) bool {
	return f.Search == "" || strings.Contains(t.Title, f.Search)
}

// Less сравнивает две задачи по полю сортировки, при равенстве - по id
func (f ListFilter) Less(a, b *Task) bool {
	switch f.Sort {
	case SortDueDate:
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
	case SortCreateDate:
		if !a.CreateDate.Equal(b.CreateDate) {
			return a.CreateDate.Before(b.CreateDate)
		}
	}
	return a.ID < b.ID
}
