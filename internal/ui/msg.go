package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/okian/demandgen/internal/domain/model"
)

// SnapshotMsg carries a freshly published snapshot.
type SnapshotMsg struct {
	Snapshot model.Snapshot
}

// StreamClosedMsg reports that no more snapshots will arrive.
type StreamClosedMsg struct{}

// Stream is a source of published snapshots.
type Stream interface {
	C() <-chan model.Snapshot
	Done() <-chan struct{}
}

// WaitForSnapshot blocks until the next snapshot or the end of the stream.
func WaitForSnapshot(s Stream) tea.Cmd {
	return func() tea.Msg {
		select {
		case snap, ok := <-s.C():
			if !ok {
				return StreamClosedMsg{}
			}
			return SnapshotMsg{Snapshot: snap}
		case <-s.Done():
			return StreamClosedMsg{}
		}
	}
}
