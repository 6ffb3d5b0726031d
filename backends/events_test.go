// File: /backends/events_test.go
package backends

import "testing"

func TestEventHubDelivery(t *testing.T) {
	hub := newEventHub()

	var vehicleEvents, reservationEvents []ChangeEvent
	unsubVehicles := hub.subscribe(TableVehicles, func(e ChangeEvent) {
		vehicleEvents = append(vehicleEvents, e)
	})
	defer unsubVehicles()
	unsubReservations := hub.subscribe(TableReservations, func(e ChangeEvent) {
		reservationEvents = append(reservationEvents, e)
	})
	defer unsubReservations()

	hub.publish(ChangeEvent{Type: EventAdded, Table: TableVehicles, New: "v1"})

	if len(vehicleEvents) != 1 {
		t.Fatalf("vehicle subscriber got %d events, want 1", len(vehicleEvents))
	}
	if vehicleEvents[0].Type != EventAdded || vehicleEvents[0].New != "v1" {
		t.Errorf("unexpected event: %+v", vehicleEvents[0])
	}
	if len(reservationEvents) != 0 {
		t.Errorf("reservation subscriber got %d events from another table", len(reservationEvents))
	}
}

func TestEventHubUnsubscribe(t *testing.T) {
	hub := newEventHub()

	count := 0
	unsubscribe := hub.subscribe(TableTrips, func(ChangeEvent) { count++ })

	hub.publish(ChangeEvent{Type: EventAdded, Table: TableTrips})
	unsubscribe()
	hub.publish(ChangeEvent{Type: EventModified, Table: TableTrips})

	if count != 1 {
		t.Errorf("subscriber ran %d times, want 1", count)
	}

	// Unsubscribe is idempotent.
	unsubscribe()
}

func TestEventHubMultipleSubscribers(t *testing.T) {
	hub := newEventHub()

	first, second := 0, 0
	u1 := hub.subscribe(TableVehicles, func(ChangeEvent) { first++ })
	defer u1()
	u2 := hub.subscribe(TableVehicles, func(ChangeEvent) { second++ })
	defer u2()

	hub.publish(ChangeEvent{Type: EventRemoved, Table: TableVehicles})

	if first != 1 || second != 1 {
		t.Errorf("delivery counts = (%d, %d), want (1, 1)", first, second)
	}
}
