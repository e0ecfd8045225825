package repository

import (
	"testing"
	"time"

	"MarketChat/entity"

	"go.mongodb.org/mongo-driver/bson"
)

func lookup(d bson.D, key string) (interface{}, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func TestRoomDocRoundTripKeepsLegacyPair(t *testing.T) {
	room := entity.NewChatRoom("u1", "b1", time.Now())
	room.Appointments = append(room.Appointments, entity.Appointment{ID: "a1", PreferredDate: "2025-06-01", PreferredTime: "10:00"})

	doc := newRoomDoc(room)
	if doc.Appointments[0].Date != "2025-06-01" || doc.Appointments[0].Time != "10:00" {
		t.Fatalf("legacy pair not written: %+v", doc.Appointments[0])
	}

	data, err := bson.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var decoded roomDoc
	if err := bson.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	got := decoded.room()
	if got.Appointments[0].PreferredDate != "2025-06-01" || got.Messages == nil {
		t.Fatalf("decoded room = %+v", got)
	}
}

func TestLegacyOnlyAppointmentIsRead(t *testing.T) {
	raw, _ := bson.Marshal(bson.D{
		{Key: "_id", Value: "r1"},
		{Key: "user_id", Value: "u1"},
		{Key: "business_id", Value: "b1"},
		{Key: "appointments", Value: bson.A{bson.D{{Key: "id", Value: "a1"}, {Key: "status", Value: "pending"}, {Key: "date", Value: "2024-01-02"}, {Key: "time", Value: "08:15"}}}},
	})
	var doc roomDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	room := doc.room()
	if room.Appointments[0].PreferredDate != "2024-01-02" || room.Appointments[0].PreferredTime != "08:15" {
		t.Fatalf("legacy slot not adopted: %+v", room.Appointments[0])
	}
	if room.Messages == nil || room.Status != entity.RoomActive {
		t.Fatalf("room not normalized: %+v", room)
	}
}

func TestAppointmentFilterMatchesRevision(t *testing.T) {
	at := time.Date(2025, 5, 30, 15, 0, 0, 0, time.UTC)
	f := appointmentFilter("r1", "a1", entity.Revision{Status: entity.StatusPending, UpdatedAt: at})
	v, ok := lookup(f, "appointments")
	if !ok {
		t.Fatal("filter does not constrain appointments")
	}
	match, _ := lookup(v.(bson.D), "$elemMatch")
	status, _ := lookup(match.(bson.D), "status")
	if status != "pending" {
		t.Fatalf("status condition = %v", status)
	}
	updated, _ := lookup(match.(bson.D), "updated_at")
	if ts, ok := updated.(time.Time); !ok || !ts.Equal(at) {
		t.Fatalf("updated_at condition = %v", updated)
	}
}

func TestAppointmentUpdateOperators(t *testing.T) {
	now := time.Now()
	u := appointmentUpdate(entity.AppointmentUpdate{
		Status:         entity.StatusConfirmed,
		ClearSuggested: true,
		PreferredDate:  "2025-06-01",
		PreferredTime:  "10:00",
		UpdatedAt:      now,
	})
	set, ok := lookup(u, "$set")
	if !ok {
		t.Fatal("no $set")
	}
	for _, key := range []string{"appointments.$.status", "appointments.$.preferred_date", "appointments.$.date", "appointments.$.time", "last_activity"} {
		if _, ok := lookup(set.(bson.D), key); !ok {
			t.Errorf("$set misses %s", key)
		}
	}
	unset, ok := lookup(u, "$unset")
	if !ok {
		t.Fatal("suggested time not cleared")
	}
	if _, ok := lookup(unset.(bson.D), "appointments.$.suggested_time"); !ok {
		t.Fatal("wrong $unset target")
	}

	reschedule := appointmentUpdate(entity.AppointmentUpdate{
		Status:        entity.StatusRescheduleRequested,
		SuggestedTime: &entity.SuggestedTime{Date: "2025-06-02", Time: "11:00"},
		UpdatedAt:     now,
	})
	if _, ok := lookup(reschedule, "$unset"); ok {
		t.Fatal("reschedule must not unset the suggestion")
	}
	set, _ = lookup(reschedule, "$set")
	if _, ok := lookup(set.(bson.D), "appointments.$.preferred_date"); ok {
		t.Fatal("reschedule must not overwrite the preferred slot")
	}
}

func TestRoomSummaryPipelineParty(t *testing.T) {
	p := roomSummaryPipeline(entity.Party{ID: "b1", Type: entity.SenderBusiness})
	match, _ := lookup(p[0], "$match")
	if id, ok := lookup(match.(bson.D), "business_id"); !ok || id != "b1" {
		t.Fatalf("match stage = %v", match)
	}
	sort, _ := lookup(p[1], "$sort")
	if dir, _ := lookup(sort.(bson.D), "last_activity"); dir != -1 {
		t.Fatalf("sort stage = %v", sort)
	}

	p = roomSummaryPipeline(entity.Party{ID: "u1", Type: entity.SenderUser})
	match, _ = lookup(p[0], "$match")
	if _, ok := lookup(match.(bson.D), "user_id"); !ok {
		t.Fatalf("match stage = %v", match)
	}
}

func TestCountUnreadFrom(t *testing.T) {
	before := []entity.Message{
		{SenderType: entity.SenderUser},
		{SenderType: entity.SenderUser, Read: true},
		{SenderType: entity.SenderBusiness},
	}
	if got := countUnreadFrom(before, entity.SenderUser); got != 1 {
		t.Fatalf("count = %d", got)
	}
}
