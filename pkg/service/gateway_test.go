package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/docgate/pkg/connection"
	"github.com/adfharrison1/docgate/pkg/domain"
	"github.com/adfharrison1/docgate/pkg/query"
	"github.com/adfharrison1/docgate/pkg/repository"
	"github.com/adfharrison1/docgate/pkg/storage/embedded"
)

func newTestGateway(t *testing.T) (*Gateway, *embedded.Engine) {
	t.Helper()
	engine := embedded.NewEngine("test")
	manager := connection.NewManager(embedded.NewDialer(engine))
	t.Cleanup(func() { manager.Close() })
	return NewGateway(repository.New(manager), query.NewComposer(manager)), engine
}

func TestCustomerLifecycle(t *testing.T) {
	gw, _ := newTestGateway(t)
	ctx := context.Background()

	customer, err := gw.CreateCustomer(ctx, domain.Customer{Firstname: "Ada", Lastname: "Lovelace"})
	require.NoError(t, err)
	assert.NotEmpty(t, customer.ID())
	assert.Equal(t, domain.Document{
		"id":        customer.ID(),
		"firstname": "Ada",
		"lastname":  "Lovelace",
		"type":      "customer",
	}, customer)

	card, err := gw.AddCreditCard(ctx, customer.ID(), domain.CreditCard{
		Provider: "Visa", Number: "4111111111111111", Expiration: "12/30",
	})
	require.NoError(t, err)
	expected := map[string]interface{}{"provider": "Visa", "number": "4111111111111111", "expiration": "12/30"}
	assert.Equal(t, expected, card)

	cards, err := gw.ListCreditCards(ctx, customer.ID())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{expected}, cards)

	fetched, err := gw.GetCustomer(ctx, customer.ID())
	require.NoError(t, err)
	assert.Equal(t, "Ada", fetched["firstname"])
	assert.Len(t, fetched[domain.FieldCreditCards], 1)

	customers, err := gw.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, customer.ID(), customers[0].ID())
}

func TestAddCreditCardUnknownCustomer(t *testing.T) {
	gw, _ := newTestGateway(t)

	_, err := gw.AddCreditCard(context.Background(), "missing", domain.CreditCard{Provider: "Visa"})
	assert.True(t, domain.IsNotFound(err))

	_, err = gw.AddCreditCard(context.Background(), "", domain.CreditCard{Provider: "Visa"})
	assert.True(t, domain.IsValidation(err))
}

func TestGetWrongType(t *testing.T) {
	gw, _ := newTestGateway(t)
	ctx := context.Background()

	product, err := gw.CreateProduct(ctx, domain.Product{Name: "Pen", Price: 1.5})
	require.NoError(t, err)

	_, err = gw.GetCustomer(ctx, product.ID())
	assert.True(t, domain.IsNotFound(err))

	got, err := gw.GetProduct(ctx, product.ID())
	require.NoError(t, err)
	assert.Equal(t, 1.5, got["price"])

	_, err = gw.GetProduct(ctx, "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestCreateReceipt(t *testing.T) {
	gw, engine := newTestGateway(t)
	ctx := context.Background()

	customer, err := gw.CreateCustomer(ctx, domain.Customer{Firstname: "Ada", Lastname: "Lovelace"})
	require.NoError(t, err)
	p1, err := gw.CreateProduct(ctx, domain.Product{Name: "Pen", Price: 1.5})
	require.NoError(t, err)

	receipt, err := gw.CreateReceipt(ctx, customer.ID(), []string{p1.ID(), "p2-does-not-exist"})
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.ID())
	assert.Equal(t, domain.TypeReceipt, receipt.Type())

	embeddedCustomer, ok := domain.AsDocument(receipt[domain.FieldCustomer])
	require.True(t, ok)
	assert.Equal(t, customer.ID(), embeddedCustomer.ID())

	products := domain.AsDocuments(receipt[domain.FieldProducts])
	require.Len(t, products, 1)
	assert.Equal(t, p1.ID(), products[0].ID())
	assert.Equal(t, "Pen", products[0]["name"])

	receipts, err := gw.ListReceipts(ctx)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, receipt.ID(), receipts[0].ID())
	assert.Equal(t, 3, engine.Len())
}

func TestCreateReceiptSnapshot(t *testing.T) {
	gw, _ := newTestGateway(t)
	ctx := context.Background()

	customer, err := gw.CreateCustomer(ctx, domain.Customer{Firstname: "Ada", Lastname: "Lovelace"})
	require.NoError(t, err)
	receipt, err := gw.CreateReceipt(ctx, customer.ID(), nil)
	require.NoError(t, err)
	assert.Empty(t, domain.AsDocuments(receipt[domain.FieldProducts]))

	// a later change to the customer does not reach the stored receipt
	_, err = gw.AddCreditCard(ctx, customer.ID(), domain.CreditCard{Provider: "Visa"})
	require.NoError(t, err)

	receipts, err := gw.ListReceipts(ctx)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	stored, ok := domain.AsDocument(receipts[0][domain.FieldCustomer])
	require.True(t, ok)
	_, hasCards := stored[domain.FieldCreditCards]
	assert.False(t, hasCards)
}

func TestCreateReceiptUnknownCustomer(t *testing.T) {
	gw, engine := newTestGateway(t)
	ctx := context.Background()

	p1, err := gw.CreateProduct(ctx, domain.Product{Name: "Pen", Price: 1.5})
	require.NoError(t, err)

	_, err = gw.CreateReceipt(ctx, "nobody", []string{p1.ID()})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, 1, engine.Len())

	_, err = gw.CreateReceipt(ctx, "", []string{p1.ID()})
	assert.True(t, domain.IsValidation(err))
}

type failingQueries struct{ err error }

func (f failingQueries) ListByType(context.Context, string) ([]domain.Document, error) {
	return nil, f.err
}

func (f failingQueries) FetchJoinedByKeys(context.Context, string, []string) (query.JoinResult, error) {
	return query.JoinResult{}, f.err
}

type recordingDocuments struct {
	Documents
	inserts int
}

func (r *recordingDocuments) Insert(context.Context, string, domain.Document) (domain.Document, error) {
	r.inserts++
	return domain.Document{}, nil
}

func TestCreateReceiptJoinFailure(t *testing.T) {
	docs := &recordingDocuments{}
	storeErr := domain.NewStoreError("fetch joined", errors.New("query service unavailable"))
	gw := NewGateway(docs, failingQueries{err: storeErr})

	_, err := gw.CreateReceipt(context.Background(), "c1", []string{"p1"})
	assert.ErrorIs(t, err, storeErr)
	assert.Zero(t, docs.inserts)

	_, err = gw.ListProducts(context.Background())
	assert.True(t, domain.IsStoreError(err))
}
