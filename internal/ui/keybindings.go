package ui

import tea "github.com/charmbracelet/bubbletea"

// --- Key Helpers ---

func isKey(msg tea.KeyMsg, keys ...string) bool {
	for _, k := range keys {
		if msg.String() == k {
			return true
		}
	}
	return false
}

func isQuit(msg tea.KeyMsg) bool {
	return isKey(msg, "q", "ctrl+c")
}

func isBack(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyEsc {
		return true
	}
	return isKey(msg, "esc", "ctrl+[")
}

func isUp(msg tea.KeyMsg) bool {
	return isKey(msg, "up", "shift+tab")
}

func isDown(msg tea.KeyMsg) bool {
	return isKey(msg, "down", "tab")
}

func isEnter(msg tea.KeyMsg) bool {
	return isKey(msg, "enter")
}

func isSave(msg tea.KeyMsg) bool {
	return isKey(msg, "ctrl+s")
}

func isBackspace(msg tea.KeyMsg) bool {
	return isKey(msg, "backspace", "delete")
}

// typedText returns the printable text carried by msg, if any.
func typedText(msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) > 0 {
			return string(msg.Runes), true
		}
	case tea.KeySpace:
		return " ", true
	}
	return "", false
}

// tabIndexForKey maps the number row to tabs.
func tabIndexForKey(key string) (int, bool) {
	switch key {
	case "1":
		return tabProviders, true
	case "2":
		return tabCountries, true
	}
	return 0, false
}
