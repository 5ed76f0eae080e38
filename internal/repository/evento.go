package repository

import (
	"context"
	"fmt"
	"time"

	"facturacion/internal/config"
	"facturacion/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type mongoEventoRepository struct {
	coll *mongo.Collection
}

func NewEventoRepository(coll *mongo.Collection) *mongoEventoRepository {
	return &mongoEventoRepository{coll: coll}
}

// ConnectMongo creates the process-wide client. The caller disconnects it at
// shutdown.
func ConnectMongo(ctx context.Context, cfg config.Mongo) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	log.WithField("database", cfg.Database).Info("Successfully connected to MongoDB.")
	return client, nil
}

// EnsureIndexes creates the lookup indexes used by the queries below.
func (r *mongoEventoRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: domain.FieldEntidadID, Value: 1}, {Key: domain.FieldTimestamp, Value: -1}}},
		{Keys: bson.D{{Key: domain.FieldTimestamp, Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create eventos indexes: %w", err)
	}
	return nil
}

func (r *mongoEventoRepository) Insert(ctx context.Context, fields domain.EventFields) (*domain.AuditEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	doc := make(bson.M, len(fields))
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		doc[k] = v
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		log.WithError(err).WithField("entidad_id", fields[domain.FieldEntidadID]).Error("Failed to insert audit event")
		return nil, fmt.Errorf("failed to insert audit event: %w", err)
	}
	doc["_id"] = res.InsertedID

	return toAuditEvent(doc), nil
}

func (r *mongoEventoRepository) FindByEntidadID(ctx context.Context, entidadID string) ([]domain.AuditEvent, error) {
	return r.find(ctx, bson.M{domain.FieldEntidadID: entidadID})
}

func (r *mongoEventoRepository) FindAll(ctx context.Context) ([]domain.AuditEvent, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoEventoRepository) find(ctx context.Context, filter bson.M) ([]domain.AuditEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: domain.FieldTimestamp, Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		log.WithError(err).Error("Failed to query audit events")
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode audit events: %w", err)
	}

	eventos := make([]domain.AuditEvent, 0, len(docs))
	for _, doc := range docs {
		eventos = append(eventos, *toAuditEvent(doc))
	}
	return eventos, nil
}

func toAuditEvent(doc bson.M) *domain.AuditEvent {
	ev := &domain.AuditEvent{
		Servicio:      stringField(doc, domain.FieldServicio),
		Entidad:       stringField(doc, domain.FieldEntidad),
		EntidadID:     stringField(doc, domain.FieldEntidadID),
		Accion:        stringField(doc, domain.FieldAccion),
		Timestamp:     timeField(doc, domain.FieldTimestamp),
		FechaCreacion: timeField(doc, domain.FieldFechaCreacion),
		Detalles:      plainValue(doc[domain.FieldDetalles]),
	}
	switch id := doc["_id"].(type) {
	case primitive.ObjectID:
		ev.ID = id.Hex()
	case nil:
	default:
		ev.ID = domain.CoerceString(id)
	}
	return ev
}

func stringField(doc bson.M, key string) string {
	return domain.CoerceString(doc[key])
}

func timeField(doc bson.M, key string) time.Time {
	switch t := doc[key].(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	default:
		return time.Time{}
	}
}

// plainValue turns nested BSON documents and arrays into maps and slices so
// they render as JSON objects and arrays.
func plainValue(v any) any {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = plainValue(e.Value)
		}
		return m
	case bson.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = plainValue(e)
		}
		return m
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	default:
		return v
	}
}
