package repository

import (
	"MarketChat/entity"
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// appointmentDoc stores the legacy date/time pair next to the canonical
// preferred slot so older readers keep working.
type appointmentDoc struct {
	entity.Appointment `bson:",inline"`
	Date               string `bson:"date,omitempty"`
	Time               string `bson:"time,omitempty"`
}

func newAppointmentDoc(a entity.Appointment) appointmentDoc {
	return appointmentDoc{Appointment: a, Date: a.PreferredDate, Time: a.PreferredTime}
}

func (d appointmentDoc) appointment() entity.Appointment {
	a := d.Appointment
	if a.PreferredDate == "" {
		a.PreferredDate = d.Date
	}
	if a.PreferredTime == "" {
		a.PreferredTime = d.Time
	}
	return a
}

type roomDoc struct {
	ID           string            `bson:"_id"`
	UserID       string            `bson:"user_id"`
	BusinessID   string            `bson:"business_id"`
	Status       entity.RoomStatus `bson:"status"`
	Messages     []entity.Message  `bson:"messages"`
	Appointments []appointmentDoc  `bson:"appointments"`
	LastActivity time.Time         `bson:"last_activity"`
	CreatedAt    time.Time         `bson:"created_at"`
}

func newRoomDoc(r *entity.ChatRoom) roomDoc {
	d := roomDoc{
		ID:           r.ID,
		UserID:       r.UserID,
		BusinessID:   r.BusinessID,
		Status:       r.Status,
		Messages:     r.Messages,
		Appointments: make([]appointmentDoc, 0, len(r.Appointments)),
		LastActivity: r.LastActivity,
		CreatedAt:    r.CreatedAt,
	}
	if d.Messages == nil {
		d.Messages = []entity.Message{}
	}
	for _, a := range r.Appointments {
		d.Appointments = append(d.Appointments, newAppointmentDoc(a))
	}
	return d
}

func (d roomDoc) room() *entity.ChatRoom {
	r := &entity.ChatRoom{
		ID:           d.ID,
		UserID:       d.UserID,
		BusinessID:   d.BusinessID,
		Status:       d.Status,
		Messages:     d.Messages,
		Appointments: make([]entity.Appointment, 0, len(d.Appointments)),
		LastActivity: d.LastActivity,
		CreatedAt:    d.CreatedAt,
	}
	for _, a := range d.Appointments {
		r.Appointments = append(r.Appointments, a.appointment())
	}
	r.Normalize()
	return r
}

func pairFilter(userID, businessID string) bson.D {
	return bson.D{{Key: "user_id", Value: userID}, {Key: "business_id", Value: businessID}}
}

// FindRoomByParties returns nil, nil when no room exists for the pair.
func (m *MongoDB) FindRoomByParties(ctx context.Context, userID, businessID string) (*entity.ChatRoom, error) {
	var doc roomDoc
	err := m.collection(roomsCollection).FindOne(ctx, pairFilter(userID, businessID)).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, infraError(err, "find room by parties")
	}
	return doc.room(), nil
}

// CreateRoomIfAbsent upserts the room keyed by its party pair. If another
// writer created the pair first, that room is returned instead.
func (m *MongoDB) CreateRoomIfAbsent(ctx context.Context, room *entity.ChatRoom) (*entity.ChatRoom, error) {
	collection := m.collection(roomsCollection)

	update := bson.D{{Key: "$setOnInsert", Value: newRoomDoc(room)}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc roomDoc
	err := collection.FindOneAndUpdate(ctx, pairFilter(room.UserID, room.BusinessID), update, opts).Decode(&doc)
	if err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return nil, infraError(err, "upsert room")
		}
		// lost the upsert race on the unique pair index
		m.log.Debug("room created concurrently",
			slog.String("user_id", room.UserID),
			slog.String("business_id", room.BusinessID),
		)
		existing, err := m.FindRoomByParties(ctx, room.UserID, room.BusinessID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, infraError(mongo.ErrNoDocuments, "reload room after duplicate key")
		}
		return existing, nil
	}
	return doc.room(), nil
}

func (m *MongoDB) GetRoom(ctx context.Context, roomID string) (*entity.ChatRoom, error) {
	var doc roomDoc
	err := m.collection(roomsCollection).FindOne(ctx, bson.D{{Key: "_id", Value: roomID}}).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, entity.NotFound("room %s not found", roomID)
		}
		return nil, infraError(err, "get room")
	}
	return doc.room(), nil
}

// roomSummaryPipeline lists the party's rooms newest first, computing unread
// and open appointment counts from the embedded arrays on the server.
func roomSummaryPipeline(party entity.Party) mongo.Pipeline {
	partyField := "user_id"
	if party.Type == entity.SenderBusiness {
		partyField = "business_id"
	}
	open := bson.A{
		string(entity.StatusPending),
		string(entity.StatusRescheduleRequested),
		string(entity.StatusConfirmed),
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: partyField, Value: party.ID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "last_activity", Value: -1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "user_id", Value: 1},
			{Key: "business_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "last_activity", Value: 1},
			{Key: "last_message", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$messages", -1}}}},
			{Key: "unread_count", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$messages", bson.A{}}}}},
				{Key: "as", Value: "m"},
				{Key: "cond", Value: bson.D{{Key: "$and", Value: bson.A{
					bson.D{{Key: "$ne", Value: bson.A{"$$m.sender_type", string(party.Type)}}},
					bson.D{{Key: "$eq", Value: bson.A{"$$m.read", false}}},
				}}}},
			}}}}}},
			{Key: "open_appointments", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$appointments", bson.A{}}}}},
				{Key: "as", Value: "a"},
				{Key: "cond", Value: bson.D{{Key: "$in", Value: bson.A{"$$a.status", open}}}},
			}}}}}},
		}}},
	}
}

func (m *MongoDB) ListRooms(ctx context.Context, party entity.Party) ([]entity.RoomSummary, error) {
	cursor, err := m.collection(roomsCollection).Aggregate(ctx, roomSummaryPipeline(party))
	if err != nil {
		return nil, infraError(err, "aggregate room summaries")
	}
	defer cursor.Close(ctx)

	summaries := make([]entity.RoomSummary, 0)
	if err = cursor.All(ctx, &summaries); err != nil {
		return nil, infraError(err, "decode room summaries")
	}
	for i := range summaries {
		if summaries[i].Status == "" {
			summaries[i].Status = entity.RoomActive
		}
	}
	return summaries, nil
}

func pushUpdate(field string, value interface{}, at time.Time) bson.D {
	return bson.D{
		{Key: "$push", Value: bson.D{{Key: field, Value: value}}},
		{Key: "$set", Value: bson.D{{Key: "last_activity", Value: at}}},
	}
}

// AppendMessage pushes msg onto the room's message list in one update.
func (m *MongoDB) AppendMessage(ctx context.Context, roomID string, msg entity.Message) error {
	result, err := m.collection(roomsCollection).UpdateOne(ctx, bson.D{{Key: "_id", Value: roomID}}, pushUpdate("messages", msg, msg.CreatedAt))
	if err != nil {
		return infraError(err, "push message")
	}
	if result.MatchedCount == 0 {
		return entity.NotFound("room %s not found", roomID)
	}
	return nil
}

func (m *MongoDB) AppendAppointment(ctx context.Context, roomID string, appt entity.Appointment) error {
	result, err := m.collection(roomsCollection).UpdateOne(ctx, bson.D{{Key: "_id", Value: roomID}}, pushUpdate("appointments", newAppointmentDoc(appt), appt.CreatedAt))
	if err != nil {
		return infraError(err, "push appointment")
	}
	if result.MatchedCount == 0 {
		return entity.NotFound("room %s not found", roomID)
	}
	return nil
}

// appointmentFilter matches the room only while the element is still at
// revision expect.
func appointmentFilter(roomID, appointmentID string, expect entity.Revision) bson.D {
	return bson.D{
		{Key: "_id", Value: roomID},
		{Key: "appointments", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
			{Key: "id", Value: appointmentID},
			{Key: "status", Value: string(expect.Status)},
			{Key: "updated_at", Value: expect.UpdatedAt},
		}}}},
	}
}

// appointmentUpdate translates the patch into positional operators on the
// element matched by appointmentFilter.
func appointmentUpdate(u entity.AppointmentUpdate) bson.D {
	set := bson.D{
		{Key: "appointments.$.status", Value: string(u.Status)},
		{Key: "appointments.$.updated_at", Value: u.UpdatedAt},
		{Key: "last_activity", Value: u.UpdatedAt},
	}
	if u.SuggestedTime != nil {
		set = append(set, bson.E{Key: "appointments.$.suggested_time", Value: u.SuggestedTime})
	}
	if u.PreferredDate != "" {
		set = append(set,
			bson.E{Key: "appointments.$.preferred_date", Value: u.PreferredDate},
			bson.E{Key: "appointments.$.date", Value: u.PreferredDate},
		)
	}
	if u.PreferredTime != "" {
		set = append(set,
			bson.E{Key: "appointments.$.preferred_time", Value: u.PreferredTime},
			bson.E{Key: "appointments.$.time", Value: u.PreferredTime},
		)
	}

	update := bson.D{{Key: "$set", Value: set}}
	if u.SuggestedTime == nil && u.ClearSuggested {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "appointments.$.suggested_time", Value: ""}}})
	}
	return update
}

// UpdateAppointment applies the patch only if the appointment is still at
// revision expect, returning nil, nil when nothing matched.
func (m *MongoDB) UpdateAppointment(ctx context.Context, roomID, appointmentID string, expect entity.Revision, update entity.AppointmentUpdate) (*entity.Appointment, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: "appointments", Value: bson.D{{Key: "$elemMatch", Value: bson.D{{Key: "id", Value: appointmentID}}}}}})

	var doc struct {
		Appointments []appointmentDoc `bson:"appointments"`
	}
	err := m.collection(roomsCollection).
		FindOneAndUpdate(ctx, appointmentFilter(roomID, appointmentID, expect), appointmentUpdate(update), opts).
		Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, infraError(err, "update appointment")
	}
	if len(doc.Appointments) == 0 {
		return nil, nil
	}
	appt := doc.Appointments[0].appointment()
	return &appt, nil
}

func unreadArrayFilter(sender entity.SenderType) options.ArrayFilters {
	return options.ArrayFilters{Filters: []interface{}{
		bson.D{{Key: "m.sender_type", Value: string(sender)}, {Key: "m.read", Value: false}},
	}}
}

func countUnreadFrom(messages []entity.Message, sender entity.SenderType) int {
	n := 0
	for _, msg := range messages {
		if msg.SenderType == sender && !msg.Read {
			n++
		}
	}
	return n
}

// MarkRead flips every unread message from sender in a single filtered
// update. The pre-image tells exactly how many elements the filter hit.
func (m *MongoDB) MarkRead(ctx context.Context, roomID string, sender entity.SenderType, at time.Time) (int, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "messages.$[m].read", Value: true},
		{Key: "messages.$[m].updated_at", Value: at},
	}}}
	opts := options.FindOneAndUpdate().
		SetArrayFilters(unreadArrayFilter(sender)).
		SetReturnDocument(options.Before).
		SetProjection(bson.D{{Key: "messages.sender_type", Value: 1}, {Key: "messages.read", Value: 1}})

	var doc struct {
		Messages []entity.Message `bson:"messages"`
	}
	err := m.collection(roomsCollection).FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: roomID}}, update, opts).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return 0, entity.NotFound("room %s not found", roomID)
		}
		return 0, infraError(err, "mark messages read")
	}
	return countUnreadFrom(doc.Messages, sender), nil
}

func (m *MongoDB) SetRoomStatus(ctx context.Context, roomID string, status entity.RoomStatus, at time.Time) error {
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: string(status)}, {Key: "last_activity", Value: at}}}}
	result, err := m.collection(roomsCollection).UpdateOne(ctx, bson.D{{Key: "_id", Value: roomID}}, update)
	if err != nil {
		return infraError(err, "set room status")
	}
	if result.MatchedCount == 0 {
		return entity.NotFound("room %s not found", roomID)
	}
	return nil
}
