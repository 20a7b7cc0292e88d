package sse

import (
	"context"
	"sync"

	"ms-attendance/internal/models"
)

// AttendanceEventEmitter manages SSE subscribers and broadcasts attendance
// updates per kegiatan.
type AttendanceEventEmitter struct {
	clients     map[int64][]chan models.AttendanceUpdate
	clientMutex sync.RWMutex
}

func NewAttendanceEventEmitter() *AttendanceEventEmitter {
	return &AttendanceEventEmitter{
		clients: make(map[int64][]chan models.AttendanceUpdate),
	}
}

// Subscribe adds a client to a kegiatan's attendance updates. The channel is
// closed and removed when ctx is cancelled (client disconnect).
func (e *AttendanceEventEmitter) Subscribe(ctx context.Context, kegiatanID int64) chan models.AttendanceUpdate {
	clientChan := make(chan models.AttendanceUpdate, 10)

	e.clientMutex.Lock()
	e.clients[kegiatanID] = append(e.clients[kegiatanID], clientChan)
	e.clientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeClient(kegiatanID, clientChan)
	}()

	return clientChan
}

// EmitAttendanceUpdate broadcasts one update to every subscriber of the
// kegiatan. Sends are non-blocking; a slow client just misses the update.
// The read lock is held across the sends so a disconnecting client cannot
// close its channel mid-broadcast.
func (e *AttendanceEventEmitter) EmitAttendanceUpdate(update models.AttendanceUpdate) {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()

	for _, clientChan := range e.clients[update.KegiatanID] {
		select {
		case clientChan <- update:
		default:
			// Channel buffer full, skip this client for now
		}
	}
}

func (e *AttendanceEventEmitter) removeClient(kegiatanID int64, clientChan chan models.AttendanceUpdate) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	clients := e.clients[kegiatanID]
	for i, ch := range clients {
		if ch == clientChan {
			e.clients[kegiatanID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.clients[kegiatanID]) == 0 {
		delete(e.clients, kegiatanID)
	}
}

// ClientCount returns the number of subscribers for a kegiatan.
func (e *AttendanceEventEmitter) ClientCount(kegiatanID int64) int {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return len(e.clients[kegiatanID])
}
