// Package mongostore implements the kiosk stores on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/observability"
	"github.com/Numffy/jumping-park-app-sub000/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// consentSequence is the counters document holding the consecutivo
const consentSequence = "consent_consecutivo"

// Collections names the collections the store works on
type Collections struct {
	Visitors  string
	Otps      string
	Consents  string
	Counters  string
	AuditLogs string
}

// Store implements IdentityStore, ConsentStore, SequenceAllocator and the
// audit trail writer on a single database. Codes live in Otps.
type Store struct {
	visitors  *mongo.Collection
	consents  *mongo.Collection
	counters  *mongo.Collection
	auditLogs *mongo.Collection
	otps      *Otps
}

// Otps implements OtpStore
type Otps struct {
	otps *mongo.Collection
}

// New creates a Store on db
func New(db *mongo.Database, names Collections) *Store {
	return &Store{
		visitors:  db.Collection(names.Visitors),
		consents:  db.Collection(names.Consents),
		counters:  db.Collection(names.Counters),
		auditLogs: db.Collection(names.AuditLogs),
		otps:      &Otps{otps: db.Collection(names.Otps)},
	}
}

// Otps returns the code store sharing this database
func (s *Store) Otps() *Otps {
	return s.otps
}

// track records the outcome of a store operation
func track(operation string, err error) {
	status := "success"
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		status = "error"
	}
	observability.DatabaseOperations.WithLabelValues(operation, status).Inc()
}

// FindByCedula loads a visitor profile
func (s *Store) FindByCedula(ctx context.Context, cedula string) (*models.VisitorProfile, error) {
	ctx, span, end := utils.TraceDatabaseOperation(ctx, "find_visitor", s.visitors.Name())
	defer end()

	var profile models.VisitorProfile
	err := s.visitors.FindOne(ctx, bson.M{"cedula": cedula}).Decode(&profile)
	track("find_visitor", err)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		utils.RecordErrorInSpan(span, err)
		return nil, fmt.Errorf("failed to find visitor: %w", err)
	}
	return &profile, nil
}

// UpsertVisitor merges the submitted fields into the visitor document.
// created_at is only written when the document is inserted.
func (s *Store) UpsertVisitor(ctx context.Context, upsert models.VisitorUpsert, now time.Time) (*models.VisitorProfile, error) {
	ctx, span, end := utils.TraceDatabaseOperation(ctx, "upsert_visitor", s.visitors.Name())
	defer end()

	minors := upsert.Minors
	if minors == nil {
		minors = []models.MinorRecord{}
	}
	set := bson.M{
		"full_name":  upsert.FullName,
		"email":      upsert.Email,
		"phone":      upsert.Phone,
		"minors":     minors,
		"updated_at": now,
	}
	if upsert.Address != "" {
		set["address"] = upsert.Address
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var profile models.VisitorProfile
	err := s.visitors.FindOneAndUpdate(ctx, bson.M{"cedula": upsert.Cedula}, update, opts).Decode(&profile)
	track("upsert_visitor", err)
	if err != nil {
		utils.RecordErrorInSpan(span, err)
		return nil, fmt.Errorf("failed to upsert visitor: %w", err)
	}
	return &profile, nil
}

// Put replaces the code record for record.Email
func (s *Otps) Put(ctx context.Context, record *models.OtpRecord) error {
	ctx, span, end := utils.TraceDatabaseOperation(ctx, "put_otp", s.otps.Name())
	defer end()

	doc := *record
	doc.ID = primitive.NilObjectID
	_, err := s.otps.ReplaceOne(ctx, bson.M{"email": record.Email}, doc, options.Replace().SetUpsert(true))
	track("put_otp", err)
	if err != nil {
		utils.RecordErrorInSpan(span, err)
		return fmt.Errorf("failed to store code: %w", err)
	}
	return nil
}

func (s *Otps) findOtp(ctx context.Context, operation string, filter bson.M, opts ...*options.FindOneOptions) (*models.OtpRecord, error) {
	ctx, span, end := utils.TraceDatabaseOperation(ctx, operation, s.otps.Name())
	defer end()

	var record models.OtpRecord
	err := s.otps.FindOne(ctx, filter, opts...).Decode(&record)
	track(operation, err)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		utils.RecordErrorInSpan(span, err)
		return nil, fmt.Errorf("failed to find code: %w", err)
	}
	return &record, nil
}

// Get loads the code record for email
func (s *Otps) Get(ctx context.Context, email string) (*models.OtpRecord, error) {
	return s.findOtp(ctx, "get_otp", bson.M{"email": email})
}

// FindByCedula returns the newest code record issued for cedula
func (s *Otps) FindByCedula(ctx context.Context, cedula string) (*models.OtpRecord, error) {
	return s.findOtp(ctx, "find_otp_by_cedula", bson.M{"cedula": cedula},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

// IncrementAttempts bumps the attempt counter of an existing record
func (s *Otps) IncrementAttempts(ctx context.Context, email string) (int, error) {
	ctx, span, end := utils.TraceDatabaseOperation(ctx, "increment_otp_attempts", s.otps.Name())
	defer end()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var record models.OtpRecord
	err := s.otps.FindOneAndUpdate(ctx, bson.M{"email": email}, bson.M{"$inc": bson.M{"attempts": 1}}, opts).Decode(&record)
	track("increment_otp_attempts", err)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, models.ErrNotFound
		}
		utils.RecordErrorInSpan(span, err)
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}
	return record.Attempts, nil
}

// Consume deletes the record only while it still holds code
func (s *Otps) Consume(ctx context.Context, email, code string) (bool, error) {
	ctx, span, end := utils.TraceDatabaseOperation(ctx, "consume_otp", s.otps.Name())
	defer end()

	res, err := s.otps.DeleteOne(ctx, bson.M{"email": email, "code": code})
	track("consume_otp", err)
	if err != nil {
		utils.RecordErrorInSpan(span, err)
		return false, fmt.Errorf("failed to consume code: %w", err)
	}
	return res.DeletedCount == 1, nil
}

// Delete removes the record for email, if any
func (s *Otps) Delete(ctx context.Context, email string) error {
	ctx, span, end := utils.TraceDatabaseOperation(ctx, "delete_otp", s.otps.Name())
	defer end()

	_, err := s.otps.DeleteOne(ctx, bson.M{"email": email})
	track("delete_otp", err)
	if err != nil {
		utils.RecordErrorInSpan(span, err)
		return fmt.Errorf("failed to delete code: %w", err)
	}
	return nil
}

// NextConsecutivo atomically increments the consent counter
func (s *Store) NextConsecutivo(ctx context.Context) (int64, error) {
	ctx, span, end := utils.TraceDatabaseOperation(ctx, "next_consecutivo", s.counters.Name())
	defer end()

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter struct {
		Value int64 `bson:"value"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": consentSequence},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		opts,
	).Decode(&counter)
	track("next_consecutivo", err)
	if err != nil {
		utils.RecordErrorInSpan(span, err)
		return 0, fmt.Errorf("failed to allocate consecutivo: %w", err)
	}
	return counter.Value, nil
}

// InsertConsent writes the consent in a single document insert and sets its ID
func (s *Store) InsertConsent(ctx context.Context, consent *models.Consent) error {
	ctx, span, end := utils.TraceDatabaseOperation(ctx, "insert_consent", s.consents.Name())
	defer end()

	doc := *consent
	doc.ID = primitive.NewObjectID()
	_, err := s.consents.InsertOne(ctx, doc)
	track("insert_consent", err)
	if err != nil {
		utils.RecordErrorInSpan(span, err)
		return fmt.Errorf("failed to insert consent: %w", err)
	}
	consent.ID = doc.ID
	return nil
}

// FindConsent loads a consent by its hex ID
func (s *Store) FindConsent(ctx context.Context, id string) (*models.Consent, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	ctx, span, end := utils.TraceDatabaseOperation(ctx, "find_consent", s.consents.Name())
	defer end()

	var consent models.Consent
	err = s.consents.FindOne(ctx, bson.M{"_id": oid}).Decode(&consent)
	track("find_consent", err)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		utils.RecordErrorInSpan(span, err)
		return nil, fmt.Errorf("failed to find consent: %w", err)
	}
	return &consent, nil
}

// InsertAuditLogs writes a batch of audit entries
func (s *Store) InsertAuditLogs(ctx context.Context, logs []models.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}
	ctx, span, end := utils.TraceDatabaseOperation(ctx, "insert_audit_logs", s.auditLogs.Name())
	defer end()

	writes := make([]mongo.WriteModel, 0, len(logs))
	for _, entry := range logs {
		writes = append(writes, mongo.NewInsertOneModel().SetDocument(entry))
	}
	_, err := s.auditLogs.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	track("insert_audit_logs", err)
	if err != nil {
		utils.RecordErrorInSpan(span, err)
		return fmt.Errorf("failed to insert audit logs: %w", err)
	}
	return nil
}

// Ping checks the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.visitors.Database().Client().Ping(ctx, nil)
}
