package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/coursehub/marketplace/internal/core/domain"
)

const (
	collectionAdmins = "admins"
	collectionUsers  = "users"
)

// PrincipalRepository stores admins and users in separate collections.
type PrincipalRepository struct {
	cols map[domain.PrincipalType]*mongo.Collection
}

func NewPrincipalRepository(db *mongo.Database) *PrincipalRepository {
	return &PrincipalRepository{cols: map[domain.PrincipalType]*mongo.Collection{
		domain.PrincipalAdmin: db.Collection(collectionAdmins),
		domain.PrincipalUser:  db.Collection(collectionUsers),
	}}
}

type mongoPrincipal struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	FirstName    string             `bson:"first_name"`
	LastName     string             `bson:"last_name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (m mongoPrincipal) toDomain(t domain.PrincipalType) *domain.Principal {
	return &domain.Principal{
		ID:           m.ID.Hex(),
		Type:         t,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

func (r *PrincipalRepository) collection(t domain.PrincipalType) (*mongo.Collection, error) {
	col, ok := r.cols[t]
	if !ok {
		return nil, fmt.Errorf("unknown principal type %q", t)
	}
	return col, nil
}

func (r *PrincipalRepository) Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error) {
	col, err := r.collection(p.Type)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoPrincipal{
		ID:           primitive.NewObjectID(),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		CreatedAt:    p.CreatedAt,
	}
	if _, err := col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert %s: %w", p.Type, err)
	}
	return doc.toDomain(p.Type), nil
}

func (r *PrincipalRepository) FindByEmail(ctx context.Context, t domain.PrincipalType, email string) (*domain.Principal, error) {
	col, err := r.collection(t)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoPrincipal
	if err := col.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("find %s: %w", t, err)
	}
	return doc.toDomain(t), nil
}

// EnsureIndexes makes email unique within each principal collection.
func (r *PrincipalRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for t, col := range r.cols {
		_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("%s email index: %w", t, err)
		}
	}
	return nil
}
