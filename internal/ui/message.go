package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgLikedFetched MsgKind = iota
	MsgProgressUpdate
	MsgReplayComplete
)

type likedFetched struct {
	list models.LikedList
	err  error
}

type replayComplete struct {
	result *tasks.ReplayResult
	err    error
}

// likedFetchedMsg is the constructor for [MsgLikedFetched]
func likedFetchedMsg(l models.LikedList, err error) Msg {
	return Msg{kind: MsgLikedFetched, data: likedFetched{l, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// replayCompleteMsg is the constructor for [MsgReplayComplete]
func replayCompleteMsg(result *tasks.ReplayResult, err error) Msg {
	return Msg{kind: MsgReplayComplete, data: replayComplete{result, err}}
}
