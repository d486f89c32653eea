package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/chartpull/internal/tasks"
)

// MsgKind enumerates all message types in the progress UI.
type MsgKind int

// Msg represents all possible messages in the progress UI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var _ tea.Msg = Msg{}

const (
	MsgProgressUpdate MsgKind = iota
	MsgRunComplete
	MsgChannelClosed
)

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// runCompleteMsg is the constructor for [MsgRunComplete]
func runCompleteMsg(result *tasks.EnrichResult, err error) Msg {
	return Msg{
		kind: MsgRunComplete,
		data: struct {
			result *tasks.EnrichResult
			err    error
		}{result, err},
	}
}

// channelClosedMsg is the constructor for [MsgChannelClosed]
func channelClosedMsg() Msg {
	return Msg{kind: MsgChannelClosed}
}
