// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through a single replay:
//  1. [LikedListView] : Browse the source account's liked tracks, oldest first
//  2. [ConfirmView] : Confirm the add or delete against the destination account
//  3. [TransferView] : Monitor per-batch progress with a progress bar
//  4. [ResultView] : Display the replay summary or the error that aborted it
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the tasks.Engine, providing non-blocking status reporting during replays.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
