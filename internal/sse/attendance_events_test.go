package sse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-attendance/internal/models"
)

func TestSubscribeAndEmit(t *testing.T) {
	emitter := NewAttendanceEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientChan := emitter.Subscribe(ctx, 7)
	assert.Equal(t, 1, emitter.ClientCount(7))

	update := models.AttendanceUpdate{
		KegiatanID: 7,
		Tanggal:    "2026-09-01",
		Kind:       "update",
		MemberID:   1,
		Nama:       "Budi Santoso",
		Status:     models.StatusPresent,
	}
	emitter.EmitAttendanceUpdate(update)

	select {
	case received := <-clientChan:
		assert.Equal(t, update, received)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the update")
	}
}

func TestEmitOnlyReachesMatchingKegiatan(t *testing.T) {
	emitter := NewAttendanceEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chanSeven := emitter.Subscribe(ctx, 7)
	chanEight := emitter.Subscribe(ctx, 8)

	emitter.EmitAttendanceUpdate(models.AttendanceUpdate{KegiatanID: 7, Kind: "update"})

	select {
	case received := <-chanSeven:
		assert.Equal(t, int64(7), received.KegiatanID)
	case <-time.After(time.Second):
		t.Fatal("kegiatan 7 subscriber did not receive the update")
	}

	select {
	case <-chanEight:
		t.Fatal("kegiatan 8 subscriber must not see kegiatan 7 updates")
	default:
	}
}

func TestCancelRemovesSubscriber(t *testing.T) {
	emitter := NewAttendanceEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())

	clientChan := emitter.Subscribe(ctx, 7)
	require.Equal(t, 1, emitter.ClientCount(7))

	cancel()

	// Removal happens on a goroutine watching ctx.Done.
	assert.Eventually(t, func() bool {
		return emitter.ClientCount(7) == 0
	}, time.Second, 10*time.Millisecond)

	_, open := <-clientChan
	assert.False(t, open, "channel is closed on disconnect")
}

func TestEmitDuringDisconnectDoesNotPanic(t *testing.T) {
	emitter := NewAttendanceEventEmitter()

	// Hammer broadcasts while subscribers connect and disconnect. A channel
	// closed between the subscriber lookup and the send would panic here.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			emitter.EmitAttendanceUpdate(models.AttendanceUpdate{KegiatanID: 7, Kind: "update"})
		}
	}()

	for i := 0; i < 100; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		emitter.Subscribe(ctx, 7)
		cancel()
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("broadcast loop did not finish")
	}

	assert.Eventually(t, func() bool {
		return emitter.ClientCount(7) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestEmitSkipsSlowClient(t *testing.T) {
	emitter := NewAttendanceEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	emitter.Subscribe(ctx, 7)

	// Overfill the buffered channel; emits past the buffer are dropped
	// instead of blocking the scan path.
	for i := 0; i < 20; i++ {
		emitter.EmitAttendanceUpdate(models.AttendanceUpdate{KegiatanID: 7, Kind: "update"})
	}
}
