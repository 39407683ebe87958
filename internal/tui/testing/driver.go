package testing

import tea "github.com/charmbracelet/bubbletea"

// Feed delivers msg and then runs every command it produces, recursively,
// until the model settles. Commands must not block; replace timers first.
func Feed(m tea.Model, msg tea.Msg) tea.Model {
	next, cmd := m.Update(msg)
	return Drain(next, cmd)
}

// Drain runs cmd and feeds its messages back into m. Batches are expanded
// in order and nil messages are dropped.
func Drain(m tea.Model, cmd tea.Cmd) tea.Model {
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case nil:
		return m
	case tea.BatchMsg:
		for _, c := range msg {
			m = Drain(m, c)
		}
		return m
	default:
		return Feed(m, msg)
	}
}

// Messages runs cmd and returns the messages it produces without
// delivering them anywhere.
func Messages(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, Messages(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}
