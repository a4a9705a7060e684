package services

import (
	"testing"

	"github.com/socialdistribution/node/pkg/internal/models"
)

func TestQueueSinkForwardsDeliveries(t *testing.T) {
	inner := &fakeSink{}
	sink := NewQueueSink(inner, 8)

	node := models.RemoteNode{Name: "peer", BaseURL: "https://peer.example"}
	for i := 0; i < 3; i++ {
		if err := sink.Deliver(node, "https://peer.example/api/authors/x/inbox/", "payload"); err != nil {
			t.Fatalf("Deliver() returned error: %v", err)
		}
	}

	// Close drains the worker, after which every enqueued job must have
	// reached the inner sink.
	sink.Close()

	inner.mu.Lock()
	defer inner.mu.Unlock()
	if len(inner.deliveries) != 3 {
		t.Errorf("inner sink saw %d deliveries, want 3", len(inner.deliveries))
	}
}

func TestQueueSinkDropsOnOverflowWithoutBlocking(t *testing.T) {
	// A failing inner sink keeps the worker busy; an undersized buffer then
	// forces the enqueue path to drop instead of blocking the caller.
	inner := &failingSink{}
	sink := NewQueueSink(inner, 1)

	node := models.RemoteNode{Name: "peer", BaseURL: "https://peer.example"}
	for i := 0; i < 64; i++ {
		if err := sink.Deliver(node, "https://peer.example/api/authors/x/inbox/", "payload"); err != nil {
			t.Fatalf("Deliver() returned error: %v", err)
		}
	}

	sink.Close()
}
