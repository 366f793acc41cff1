package storage

import (
	"context"
	"testing"
)

func TestSaveOffers_EmptyIsNoop(t *testing.T) {
	// Zero offers must not touch the pool; pages with nothing extracted
	// are common and should not cost a round trip.
	s := &Store{}
	if err := s.SaveOffers(context.Background(), 1, 1, 1, nil); err != nil {
		t.Fatalf("SaveOffers(nil) error = %v", err)
	}
}
