// Package mongostore is the MongoDB durable invoice store, selected with LEDGER_DRIVER=mongo.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	colInvoices = "invoices"
	pingTimeout = 2 * time.Second
)

var _ domain.Store = (*Store)(nil)

type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect creates a client for uri. The driver dials lazily, so an unreachable
// server surfaces on Ping rather than here.
func Connect(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(pingTimeout))
	if err != nil {
		return nil, fmt.Errorf("invoice/mongo: connect: %w", err)
	}
	return client, nil
}

func New(client *mongo.Client, database string) *Store {
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(colInvoices),
	}
}

// Migrate creates the owner scoped indexes.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "invoice_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("invoice/mongo: migrate indexes: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) List(ctx context.Context, owner string) ([]domain.Invoice, error) {
	cursor, err := s.coll.Find(ctx,
		bson.M{"owner_id": owner},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("invoice/mongo: list: %w", err)
	}

	var models []invoiceModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("invoice/mongo: list decode: %w", err)
	}

	out := make([]domain.Invoice, 0, len(models))
	for i := range models {
		inv, err := fromModel(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, owner, id string) (*domain.Invoice, error) {
	var m invoiceModel
	if err := s.coll.FindOne(ctx, ownerFilter(owner, id)).Decode(&m); err != nil {
		return nil, mapErr("get", err)
	}
	inv, err := fromModel(&m)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *Store) Insert(ctx context.Context, inv *domain.Invoice) error {
	m, err := toModel(*inv)
	if err != nil {
		return err
	}
	if _, err := s.coll.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("invoice/mongo: insert %s: %w", inv.InvoiceNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("invoice/mongo: insert: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, owner, id string, patch domain.Patch) (*domain.Invoice, error) {
	current, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(current)

	m, err := toModel(*current)
	if err != nil {
		return nil, err
	}
	res, err := s.coll.ReplaceOne(ctx, ownerFilter(owner, id), m)
	if err != nil {
		return nil, fmt.Errorf("invoice/mongo: update: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrInvoiceNotFound
	}
	return current, nil
}

func (s *Store) Delete(ctx context.Context, owner, id string) (*domain.Invoice, error) {
	var m invoiceModel
	if err := s.coll.FindOneAndDelete(ctx, ownerFilter(owner, id)).Decode(&m); err != nil {
		return nil, mapErr("delete", err)
	}
	inv, err := fromModel(&m)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func ownerFilter(owner, id string) bson.M {
	return bson.M{"_id": id, "owner_id": owner}
}

func mapErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrInvoiceNotFound
	}
	return fmt.Errorf("invoice/mongo: %s: %w", op, err)
}
