package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var claimed, statusChanged int
	dispatcher.Subscribe(EventCaseClaimed, func(_ context.Context, _ Event) error {
		claimed++
		return nil
	})
	dispatcher.Subscribe(EventCaseStatusChanged, func(_ context.Context, _ Event) error {
		statusChanged++
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventCaseClaimed, CaseID: "case-1"})
	require.NoError(t, err)
	require.Equal(t, 1, claimed)
	require.Equal(t, 0, statusChanged)
}

func TestDispatcherContinuesPastHandlerError(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var delivered []string
	dispatcher.Subscribe(EventCaseCreated, func(_ context.Context, _ Event) error {
		delivered = append(delivered, "first")
		return errors.New("handler blew up")
	})
	dispatcher.Subscribe(EventCaseCreated, func(_ context.Context, _ Event) error {
		delivered = append(delivered, "second")
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventCaseCreated, CaseID: "case-1"})
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, delivered)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	err := dispatcher.Publish(context.Background(), Event{Type: EventCaseFirstResponse, CaseID: "case-1"})
	require.NoError(t, err)
}
