package oclient

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ TokenVault = &MongoVault{}

// MongoVault is a MongoDB-backed implementation of TokenVault.
type MongoVault struct {
	tokens *mongo.Collection
}

// NewMongoVault creates a new vault backed by the given DB.
func NewMongoVault(db *mongo.Database) *MongoVault {
	return &MongoVault{
		tokens: db.Collection("oauth_tokens"),
	}
}

// StoreTokens upserts a provider's token pair.
func (s *MongoVault) StoreTokens(ctx context.Context, provider string, t TokenPair) error {
	if t.IssuedAt.IsZero() {
		t.IssuedAt = time.Now().UTC()
	}
	filter := bson.M{"provider": provider}
	upd := bson.M{"$set": bson.M{
		"access_token":  t.AccessToken,
		"refresh_token": t.RefreshToken,
		"expires_at":    t.ExpiresAt,
		"issued_at":     t.IssuedAt,
	}}
	opts := options.Update().SetUpsert(true)
	_, err := s.tokens.UpdateOne(ctx, filter, upd, opts)
	return err
}

// GetTokens retrieves stored tokens.
func (s *MongoVault) GetTokens(ctx context.Context, provider string) (TokenPair, error) {
	var doc struct {
		AccessToken  string    `bson:"access_token"`
		RefreshToken string    `bson:"refresh_token"`
		ExpiresAt    time.Time `bson:"expires_at"`
		IssuedAt     time.Time `bson:"issued_at"`
	}
	err := s.tokens.FindOne(ctx, bson.M{"provider": provider}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return TokenPair{}, ErrTokensNotFound
		}
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  doc.AccessToken,
		RefreshToken: doc.RefreshToken,
		ExpiresAt:    doc.ExpiresAt,
		IssuedAt:     doc.IssuedAt,
	}, nil
}

// DeleteTokens removes stored tokens.
func (s *MongoVault) DeleteTokens(ctx context.Context, provider string) error {
	_, err := s.tokens.DeleteOne(ctx, bson.M{"provider": provider})
	return err
}
