package repository

import (
	"MarketChat/entity"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetBusinessSettings returns nil, nil when the business never stored settings.
func (m *MongoDB) GetBusinessSettings(ctx context.Context, businessID string) (*entity.BusinessSettings, error) {
	var settings entity.BusinessSettings
	err := m.collection(settingsCollection).FindOne(ctx, bson.D{{Key: "business_id", Value: businessID}}).Decode(&settings)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, infraError(err, "get business settings")
	}
	return &settings, nil
}

func (m *MongoDB) SetAIEnabled(ctx context.Context, businessID string, enabled bool) error {
	filter := bson.D{{Key: "business_id", Value: businessID}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "ai_enabled", Value: enabled},
		{Key: "updated_at", Value: time.Now()},
	}}}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection(settingsCollection).UpdateOne(ctx, filter, update, opts); err != nil {
		return infraError(err, "set ai toggle")
	}
	return nil
}
