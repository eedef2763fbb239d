// Package mongo provides a MongoDB-backed implementation of store.Store.
// Money amounts are stored as decimal strings, matching the durable schema.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"splittracker/internal/core"
	"splittracker/internal/store"
)

// Ensure Store implements store.Store
var _ store.Store = (*Store)(nil)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

type personDoc struct {
	ID       bson.ObjectID `bson:"_id,omitempty"`
	Name     string        `bson:"name"`
	Initials string        `bson:"initials"`
	Color    string        `bson:"color"`
	Avatar   string        `bson:"avatar,omitempty"`
}

type expenseDoc struct {
	ID              bson.ObjectID `bson:"_id,omitempty"`
	AmountPaidFor   string        `bson:"amountPaidFor"`
	PaidForPersonID string        `bson:"paidForPersonId"`
	Category        string        `bson:"category"`
	PaymentMethod   string        `bson:"paymentMethod"`
	BankApp         *string       `bson:"bankApp,omitempty"`
	Notes           *string       `bson:"notes,omitempty"`
	IsPaid          bool          `bson:"isPaid"`
	AmountPaid      string        `bson:"amountPaid"`
	CreatedAt       time.Time     `bson:"createdAt"`
	PaidAt          *time.Time    `bson:"paidAt,omitempty"`
}

type paymentDoc struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	ExpenseID   string        `bson:"expenseId"`
	Amount      string        `bson:"amount"`
	PaymentType string        `bson:"paymentType"`
	Notes       *string       `bson:"notes,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt"`
}

// New connects to MongoDB, seeds sample data when the people collection is
// empty, and backfills a default avatar on legacy documents without one.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	s := &Store{client: client, db: client.Database(dbName)}
	if err := s.initSampleData(ctx); err != nil {
		slog.WarnContext(ctx, "Sample data initialization failed", "error", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *Store) people() *mongo.Collection   { return s.db.Collection("people") }
func (s *Store) expenses() *mongo.Collection { return s.db.Collection("expenses") }
func (s *Store) payments() *mongo.Collection { return s.db.Collection("payments") }

func (s *Store) initSampleData(ctx context.Context) error {
	count, err := s.people().CountDocuments(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("count people: %w", err)
	}
	if count > 0 {
		// Backfill legacy people created before avatars existed.
		_, err := s.people().UpdateMany(ctx,
			bson.M{"avatar": bson.M{"$exists": false}},
			bson.M{"$set": bson.M{"avatar": "👤"}})
		return err
	}

	seedPeople := []any{
		personDoc{Name: "John Smith", Initials: "JS", Color: "#00D4AA", Avatar: "🧑‍💻"},
		personDoc{Name: "Emily Rodriguez", Initials: "EM", Color: "#FF6B6B", Avatar: "👩‍🎨"},
		personDoc{Name: "Mike Johnson", Initials: "MJ", Color: "#F39C12", Avatar: "🧑‍🍳"},
	}
	res, err := s.people().InsertMany(ctx, seedPeople)
	if err != nil {
		return fmt.Errorf("seed people: %w", err)
	}

	now := time.Now().UTC()
	gpay := "gpay"
	lunch := "Lunch at restaurant"
	movies := "Movie tickets"
	first := res.InsertedIDs[0].(bson.ObjectID).Hex()
	second := res.InsertedIDs[1].(bson.ObjectID).Hex()
	seedExpenses := []any{
		expenseDoc{
			AmountPaidFor:   "45.50",
			PaidForPersonID: first,
			Category:        "food",
			PaymentMethod:   "upi",
			BankApp:         &gpay,
			Notes:           &lunch,
			AmountPaid:      "0",
			CreatedAt:       now,
		},
		expenseDoc{
			AmountPaidFor:   "32.00",
			PaidForPersonID: second,
			Category:        "other",
			PaymentMethod:   "credit_card",
			Notes:           &movies,
			IsPaid:          true,
			AmountPaid:      "32.00",
			CreatedAt:       now,
			PaidAt:          &now,
		},
	}
	if _, err := s.expenses().InsertMany(ctx, seedExpenses); err != nil {
		return fmt.Errorf("seed expenses: %w", err)
	}
	slog.InfoContext(ctx, "Seeded sample data", "people", len(seedPeople), "expenses", len(seedExpenses))
	return nil
}

func (s *Store) ListPeople(ctx context.Context) ([]core.Person, error) {
	cur, err := s.people().Find(ctx, bson.D{})
	if err != nil {
		return nil, unavailable("list people", err)
	}
	defer cur.Close(ctx)

	var docs []personDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("decode people", err)
	}
	out := make([]core.Person, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toPerson())
	}
	return out, nil
}

func (s *Store) GetPerson(ctx context.Context, id string) (*core.Person, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, core.ErrNotFound
	}
	var d personDoc
	err = s.people().FindOne(ctx, bson.M{"_id": oid}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get person", err)
	}
	p := d.toPerson()
	return &p, nil
}

func (s *Store) CreatePerson(ctx context.Context, np core.NewPerson) (*core.Person, error) {
	doc := personDoc{
		Name:     np.Name,
		Initials: np.Initials,
		Color:    np.Color,
		Avatar:   np.Avatar,
	}
	res, err := s.people().InsertOne(ctx, doc)
	if err != nil {
		return nil, unavailable("insert person", err)
	}
	doc.ID = res.InsertedID.(bson.ObjectID)
	p := doc.toPerson()
	return &p, nil
}

func (s *Store) DeletePerson(ctx context.Context, id string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := s.people().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, unavailable("delete person", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) ListExpenses(ctx context.Context) ([]core.ExpenseWithPerson, error) {
	people, err := s.peopleByID(ctx)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.expenses().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, unavailable("list expenses", err)
	}
	defer cur.Close(ctx)

	var docs []expenseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("decode expenses", err)
	}

	var out []core.ExpenseWithPerson
	for _, d := range docs {
		person, ok := people[d.PaidForPersonID]
		if !ok {
			continue // orphaned, drop from reads
		}
		e, err := d.toExpense()
		if err != nil {
			return nil, err
		}
		out = append(out, core.ExpenseWithPerson{Expense: e, Person: person})
	}
	return out, nil
}

func (s *Store) GetExpense(ctx context.Context, id string) (*core.ExpenseWithPerson, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, core.ErrNotFound
	}
	var d expenseDoc
	err = s.expenses().FindOne(ctx, bson.M{"_id": oid}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get expense", err)
	}

	person, err := s.GetPerson(ctx, d.PaidForPersonID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.ErrNotFound // orphaned
	}
	if err != nil {
		return nil, err
	}

	e, err := d.toExpense()
	if err != nil {
		return nil, err
	}
	return &core.ExpenseWithPerson{Expense: e, Person: *person}, nil
}

func (s *Store) CreateExpense(ctx context.Context, ne core.NewExpense) (*core.Expense, error) {
	doc := expenseDoc{
		AmountPaidFor:   core.FormatAmount(ne.AmountPaidFor),
		PaidForPersonID: ne.PaidForPersonID,
		Category:        ne.Category,
		PaymentMethod:   ne.PaymentMethod,
		BankApp:         ne.BankApp,
		Notes:           ne.Notes,
		IsPaid:          ne.IsPaid,
		AmountPaid:      core.FormatAmount(ne.AmountPaid),
		CreatedAt:       time.Now().UTC(),
	}
	res, err := s.expenses().InsertOne(ctx, doc)
	if err != nil {
		return nil, unavailable("insert expense", err)
	}
	doc.ID = res.InsertedID.(bson.ObjectID)
	e, err := doc.toExpense()
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, id string, u core.ExpenseUpdate) (*core.Expense, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, core.ErrNotFound
	}

	set := bson.M{}
	if u.AmountPaid != nil {
		set["amountPaid"] = core.FormatAmount(*u.AmountPaid)
	}
	if u.IsPaid != nil {
		set["isPaid"] = *u.IsPaid
	}
	if u.PaidAt != nil {
		set["paidAt"] = *u.PaidAt
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.PaymentMethod != nil {
		set["paymentMethod"] = *u.PaymentMethod
	}
	if u.BankApp != nil {
		set["bankApp"] = *u.BankApp
	}
	if u.Notes != nil {
		set["notes"] = *u.Notes
	}

	var d expenseDoc
	if len(set) == 0 {
		// Nothing to change; an empty $set is rejected by the server.
		err = s.expenses().FindOne(ctx, bson.M{"_id": oid}).Decode(&d)
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = s.expenses().FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&d)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("update expense", err)
	}
	e, err := d.toExpense()
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) ListPayments(ctx context.Context, expenseID string) ([]core.Payment, error) {
	cur, err := s.payments().Find(ctx, bson.M{"expenseId": expenseID})
	if err != nil {
		return nil, unavailable("list payments", err)
	}
	defer cur.Close(ctx)

	var docs []paymentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("decode payments", err)
	}
	var out []core.Payment
	for _, d := range docs {
		p, err := d.toPayment()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) CreatePayment(ctx context.Context, np core.NewPayment) (*core.Payment, error) {
	doc := paymentDoc{
		ExpenseID:   np.ExpenseID,
		Amount:      core.FormatAmount(np.Amount),
		PaymentType: string(np.PaymentType),
		Notes:       np.Notes,
		CreatedAt:   time.Now().UTC(),
	}
	res, err := s.payments().InsertOne(ctx, doc)
	if err != nil {
		return nil, unavailable("insert payment", err)
	}
	doc.ID = res.InsertedID.(bson.ObjectID)
	p, err := doc.toPayment()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) peopleByID(ctx context.Context) (map[string]core.Person, error) {
	people, err := s.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]core.Person, len(people))
	for _, p := range people {
		byID[p.ID] = p
	}
	return byID, nil
}

func (d personDoc) toPerson() core.Person {
	return core.Person{
		ID:       d.ID.Hex(),
		Name:     d.Name,
		Initials: d.Initials,
		Color:    d.Color,
		Avatar:   d.Avatar,
	}
}

func (d expenseDoc) toExpense() (core.Expense, error) {
	amountPaidFor, err := decimal.NewFromString(d.AmountPaidFor)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse amountPaidFor %q: %w", d.AmountPaidFor, err)
	}
	amountPaid, err := core.ParsePaidAmount(d.AmountPaid)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse amountPaid %q: %w", d.AmountPaid, err)
	}
	return core.Expense{
		ID:              d.ID.Hex(),
		AmountPaidFor:   amountPaidFor,
		PaidForPersonID: d.PaidForPersonID,
		Category:        d.Category,
		PaymentMethod:   d.PaymentMethod,
		BankApp:         d.BankApp,
		Notes:           d.Notes,
		IsPaid:          d.IsPaid,
		AmountPaid:      amountPaid,
		CreatedAt:       d.CreatedAt,
		PaidAt:          d.PaidAt,
	}, nil
}

func (d paymentDoc) toPayment() (core.Payment, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return core.Payment{}, fmt.Errorf("parse payment amount %q: %w", d.Amount, err)
	}
	return core.Payment{
		ID:          d.ID.Hex(),
		ExpenseID:   d.ExpenseID,
		Amount:      amount,
		PaymentType: core.PaymentType(d.PaymentType),
		Notes:       d.Notes,
		CreatedAt:   d.CreatedAt,
	}, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, core.ErrUnavailable, err)
}
