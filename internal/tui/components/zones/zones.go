// Package zones lists saved locations in match order.
package zones

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/automute/internal/models"
)

// DeleteLocationMsg asks the parent to delete a location.
type DeleteLocationMsg struct {
	Name string
}

type Item struct {
	Location models.SavedLocation
	Position int
}

func (i Item) Title() string { return fmt.Sprintf("%d. %s", i.Position, i.Location.Name) }
func (i Item) Description() string {
	return fmt.Sprintf("%.5f, %.5f | %.0fm | %s", i.Location.Latitude, i.Location.Longitude, i.Location.Radius, i.Location.TargetRingerMode)
}
func (i Item) FilterValue() string { return i.Location.Name }

type KeyMap struct {
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(locations []models.SavedLocation, width, height int) Model {
	l := list.New(items(locations), list.NewDefaultDelegate(), width, height)
	l.Title = "Saved locations"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	return Model{list: l, keys: DefaultKeyMap()}
}

func items(locations []models.SavedLocation) []list.Item {
	out := make([]list.Item, len(locations))
	for i, loc := range locations {
		out[i] = Item{Location: loc, Position: i + 1}
	}
	return out
}

func (m *Model) SetLocations(locations []models.SavedLocation) tea.Cmd {
	return m.list.SetItems(items(locations))
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Selected returns the highlighted location.
func (m Model) Selected() (models.SavedLocation, bool) {
	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		return models.SavedLocation{}, false
	}
	return item.Location, true
}

func (m Model) Len() int { return len(m.list.Items()) }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Delete) {
		if loc, ok := m.Selected(); ok {
			return m, func() tea.Msg { return DeleteLocationMsg{Name: loc.Name} }
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "No saved locations."
	}
	return m.list.View()
}
