package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const guildCollection = "guilds"

// MongoStore keeps one document per guild in a MongoDB collection.
// Per-guild locking lives in the process, matching the other backends;
// the module is single-process so no cross-process coordination is needed.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	locks      *guildLocks
}

// NewMongoStore connects to MongoDB and verifies the connection
func NewMongoStore(ctx context.Context, mongoURL, dbName string) (*MongoStore, error) {
	logger.System("Intentando conectar a la base de datos...", "MongoStore")

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(mongoURL).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		logger.Critical("Fallo al conectar con la base de datos.", "MongoStore")
		return nil, err
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		logger.Critical("Fallo al verificar conexión con la base de datos.", "MongoStore")
		return nil, err
	}

	logger.Success("Conectado exitosamente a la base de datos.", "MongoStore")

	return &MongoStore{
		client:     client,
		collection: client.Database(dbName).Collection(guildCollection),
		locks:      newGuildLocks(),
	}, nil
}

func (s *MongoStore) load(ctx context.Context, guildID string) (*models.GuildRecord, bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rec models.GuildRecord
	err := s.collection.FindOne(opCtx, bson.M{"guildId": guildID}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading guild %s: %w", guildID, err)
	}
	return &rec, true, nil
}

func (s *MongoStore) save(ctx context.Context, guildID string, record *models.GuildRecord) error {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(opCtx, bson.M{"guildId": guildID}, record, opts); err != nil {
		return fmt.Errorf("writing guild %s: %w", guildID, err)
	}
	return nil
}

// Get returns the guild's record, creating the default one on first access
func (s *MongoStore) Get(ctx context.Context, guildID string) (*models.GuildRecord, error) {
	unlock := s.locks.lock(guildID)
	defer unlock()

	rec, found, err := s.load(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if found {
		return rec, nil
	}

	rec = models.NewGuildRecord(guildID)
	if err := s.save(ctx, guildID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Create inserts the default record, failing if the guild is already present
func (s *MongoStore) Create(ctx context.Context, guildID string) (*models.GuildRecord, error) {
	unlock := s.locks.lock(guildID)
	defer unlock()

	_, found, err := s.load(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, fmt.Errorf("%w: %s", ErrGuildExists, guildID)
	}

	rec := models.NewGuildRecord(guildID)
	if err := s.save(ctx, guildID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Put overwrites the stored record, last writer wins
func (s *MongoStore) Put(ctx context.Context, guildID string, record *models.GuildRecord) error {
	unlock := s.locks.lock(guildID)
	defer unlock()
	return s.save(ctx, guildID, record)
}

// Update runs fn over a fresh copy of the record with the guild's lock held
// for the whole read-modify-write cycle. Nothing is persisted when fn fails.
func (s *MongoStore) Update(ctx context.Context, guildID string, fn func(*models.GuildRecord) error) (*models.GuildRecord, error) {
	unlock := s.locks.lock(guildID)
	defer unlock()

	rec, found, err := s.load(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !found {
		rec = models.NewGuildRecord(guildID)
	}

	if err := fn(rec); err != nil {
		return nil, err
	}
	if err := s.save(ctx, guildID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GuildIDs lists every guild present in the collection
func (s *MongoStore) GuildIDs(ctx context.Context) ([]string, error) {
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	raw, err := s.collection.Distinct(opCtx, "guildId", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("listing guilds: %w", err)
	}

	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Close disconnects from MongoDB
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.client.Disconnect(ctx); err != nil {
		return err
	}
	logger.Warn("La base de datos ha sido desconectada", "MongoStore")
	return nil
}
