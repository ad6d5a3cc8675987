package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const frameInterval = 16 * time.Millisecond

type frameMsg time.Time

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
