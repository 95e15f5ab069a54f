package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/scdig/internal/formatter"
	"github.com/desertthunder/scdig/internal/models"
)

var _ list.Item = categoryItem{}

// categoryItem is one choice of the category picker: a storefront or "all".
type categoryItem struct {
	name  string
	count int
}

func (i categoryItem) FilterValue() string { return i.name }
func (i categoryItem) Title() string       { return i.name }
func (i categoryItem) Description() string {
	if i.count == 1 {
		return "1 link"
	}
	return fmt.Sprintf("%d links", i.count)
}

// categoryItems lists "all" followed by every category in display order.
func categoryItems(s *models.Summary) []list.Item {
	total := 0
	items := make([]list.Item, 0, len(models.Categories())+1)
	for _, c := range models.Categories() {
		total += s.Count(c)
		items = append(items, categoryItem{name: c.String(), count: s.Count(c)})
	}
	return append([]list.Item{categoryItem{name: formatter.AllCategories, count: total}}, items...)
}
