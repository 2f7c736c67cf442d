package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basho/internal/domain/entity"
	"basho/internal/domain/service"
	"basho/pkg/errors"
)

const paymentTestSecret = "test-secret"

type orderFixture struct {
	uc       *CustomOrderUseCase
	orders   *memOrderRepo
	users    *memUserRepo
	mailer   *fakeMailer
	uploader *fakeUploader
	verifier *service.SignatureVerifier
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	users := newMemUserRepo(
		&entity.User{ID: "uid-asha", Email: "asha@x.com", Name: "Asha", Role: "customer"},
		&entity.User{ID: "uid-bob", Email: "bob@x.com", Name: "Bob", Role: "customer"},
		&entity.User{ID: "uid-admin", Email: "studio@basho.example", Name: "Shivangi", Role: "admin"},
	)

	f := &orderFixture{
		orders:   newMemOrderRepo(),
		users:    users,
		mailer:   &fakeMailer{},
		uploader: &fakeUploader{},
		verifier: service.NewSignatureVerifier(paymentTestSecret),
	}
	f.uc = NewCustomOrderUseCase(f.orders, f.users, f.uploader, f.mailer, f.verifier, "studio@basho.example")
	return f
}

func (f *orderFixture) createOrder(t *testing.T) *entity.CustomOrder {
	t.Helper()

	order, err := f.uc.Create(context.Background(), "uid-asha", CreateCustomOrderInput{
		Name:        "Asha",
		Email:       "asha@x.com",
		Phone:       "999",
		Description: "vase",
	})
	require.NoError(t, err)
	return order
}

func TestCreateCustomOrder(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.uc.Create(context.Background(), "uid-asha", CreateCustomOrderInput{
		Name:        "  Asha ",
		Email:       "Asha@X.com",
		Phone:       "999",
		Description: "a tall blue vase",
		Notes:       "matte glaze",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, entity.OrderStatusRequested, order.Status)
	assert.Equal(t, "Asha", order.Name)
	assert.Equal(t, "asha@x.com", order.Email)
	assert.Nil(t, order.QuotedPrice)
	assert.Nil(t, order.PaidAt)
	assert.False(t, order.CreatedAt.IsZero())

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, service.MailOrderSubmitted, f.mailer.sent[0].kind)
	assert.ElementsMatch(t, []string{"asha@x.com", "studio@basho.example"}, f.mailer.sent[0].to)
}

func TestCreateCustomOrderValidation(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.uc.Create(context.Background(), "uid-asha", CreateCustomOrderInput{
		Name:  "  ",
		Email: "asha@x.com",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ElementsMatch(t, []string{"name", "phone", "description"}, appErr.Details)
}

func TestCreateCustomOrderIdentityMismatch(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.uc.Create(context.Background(), "uid-asha", CreateCustomOrderInput{
		Name:        "Bob",
		Email:       "bob@x.com",
		Phone:       "111",
		Description: "a bowl",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "IDENTITY_MISMATCH"))
}

func TestCreateCustomOrderUploadsDataURIs(t *testing.T) {
	f := newOrderFixture(t)

	// "hi" base64-encoded
	dataURI := "data:image/png;base64,aGk="

	order, err := f.uc.Create(context.Background(), "uid-asha", CreateCustomOrderInput{
		Name:            "Asha",
		Email:           "asha@x.com",
		Phone:           "999",
		Description:     "vase",
		ReferenceImages: []string{dataURI, "https://example.com/ref.jpg"},
	})
	require.NoError(t, err)

	require.Len(t, order.ReferenceImages, 2)
	assert.Contains(t, order.ReferenceImages[0], "https://storage.example.com/custom-orders/")
	assert.Equal(t, "https://example.com/ref.jpg", order.ReferenceImages[1])
}

func TestCreateCustomOrderUploadFailureFallsBack(t *testing.T) {
	f := newOrderFixture(t)
	f.uploader.failAll = true

	dataURI := "data:image/png;base64,aGk="

	order, err := f.uc.Create(context.Background(), "uid-asha", CreateCustomOrderInput{
		Name:            "Asha",
		Email:           "asha@x.com",
		Phone:           "999",
		Description:     "vase",
		ReferenceImages: []string{dataURI},
	})
	require.NoError(t, err, "order creation must survive a storage outage")
	require.Len(t, order.ReferenceImages, 1)
	assert.Equal(t, dataURI, order.ReferenceImages[0])
}

func TestCreateCustomOrderMailFailureIsSwallowed(t *testing.T) {
	f := newOrderFixture(t)
	f.mailer.failAll = true

	order, err := f.uc.Create(context.Background(), "uid-asha", CreateCustomOrderInput{
		Name:        "Asha",
		Email:       "asha@x.com",
		Phone:       "999",
		Description: "vase",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusRequested, order.Status)
}

func TestAssignQuote(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	quoted, err := f.uc.AssignQuote(context.Background(), "uid-admin", order.ID, 3500)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusQuoted, quoted.Status)
	require.NotNil(t, quoted.QuotedPrice)
	assert.Equal(t, int64(3500), *quoted.QuotedPrice)

	assert.Contains(t, f.mailer.sentKinds(), service.MailOrderQuoted)
}

func TestAssignQuoteRequiresAdmin(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.uc.AssignQuote(context.Background(), "uid-asha", order.ID, 3500)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusRequested, stored.Status)
	assert.Nil(t, stored.QuotedPrice)
}

func TestAssignQuoteCannotRequote(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.uc.AssignQuote(context.Background(), "uid-admin", order.ID, 3500)
	require.NoError(t, err)

	_, err = f.uc.AssignQuote(context.Background(), "uid-admin", order.ID, 9999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "INVALID_TRANSITION"))

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.QuotedPrice)
	assert.Equal(t, int64(3500), *stored.QuotedPrice, "rejected re-quote must not overwrite the price")
}

func TestAssignQuoteUnknownOrder(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.uc.AssignQuote(context.Background(), "uid-admin", "missing", 3500)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestConfirmPayment(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.uc.AssignQuote(context.Background(), "uid-admin", order.ID, 3500)
	require.NoError(t, err)

	sig := f.verifier.Sign("order_1", "pay_1")

	paid, err := f.uc.ConfirmPayment(context.Background(), order.ID, "order_1", "pay_1", sig)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusPaid, paid.Status)
	assert.Equal(t, "pay_1", paid.PaymentID)
	assert.Equal(t, "order_1", paid.GatewayOrderRef)
	require.NotNil(t, paid.PaidAt)
	require.NotNil(t, paid.QuotedPrice)

	assert.Contains(t, f.mailer.sentKinds(), service.MailOrderPaid)
}

func TestConfirmPaymentBadSignature(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.uc.AssignQuote(context.Background(), "uid-admin", order.ID, 3500)
	require.NoError(t, err)

	_, err = f.uc.ConfirmPayment(context.Background(), order.ID, "order_1", "pay_1", "deadbeef")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "PAYMENT_VERIFICATION_FAILED"))

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusQuoted, stored.Status)
	assert.Empty(t, stored.PaymentID)
	assert.Nil(t, stored.PaidAt)
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.uc.AssignQuote(context.Background(), "uid-admin", order.ID, 3500)
	require.NoError(t, err)

	sig := f.verifier.Sign("order_1", "pay_1")

	first, err := f.uc.ConfirmPayment(context.Background(), order.ID, "order_1", "pay_1", sig)
	require.NoError(t, err)

	second, err := f.uc.ConfirmPayment(context.Background(), order.ID, "order_1", "pay_1", sig)
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.PaymentID, second.PaymentID)
	assert.Equal(t, first.PaidAt.Unix(), second.PaidAt.Unix())

	paidMails := 0
	for _, kind := range f.mailer.sentKinds() {
		if kind == service.MailOrderPaid {
			paidMails++
		}
	}
	assert.Equal(t, 1, paidMails, "duplicate webhook must not re-send the confirmation email")
}

func TestConfirmPaymentBeforeQuote(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	sig := f.verifier.Sign("order_1", "pay_1")

	_, err := f.uc.ConfirmPayment(context.Background(), order.ID, "order_1", "pay_1", sig)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "INVALID_TRANSITION"))
}

func TestAdvanceWorkflow(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.uc.AssignQuote(context.Background(), "uid-admin", order.ID, 3500)
	require.NoError(t, err)
	_, err = f.uc.ConfirmPayment(context.Background(), order.ID, "order_1", "pay_1", f.verifier.Sign("order_1", "pay_1"))
	require.NoError(t, err)

	inProgress, err := f.uc.AdvanceWorkflow(context.Background(), "uid-admin", order.ID, entity.OrderStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusInProgress, inProgress.Status)

	completed, err := f.uc.AdvanceWorkflow(context.Background(), "uid-admin", order.ID, entity.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, completed.Status)

	// QuotedPrice and payment fields survive every later transition.
	require.NotNil(t, completed.QuotedPrice)
	assert.Equal(t, "pay_1", completed.PaymentID)
	require.NotNil(t, completed.PaidAt)
}

func TestAdvanceWorkflowRejectsSkipsAndBackward(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.uc.AssignQuote(context.Background(), "uid-admin", order.ID, 3500)
	require.NoError(t, err)
	_, err = f.uc.ConfirmPayment(context.Background(), order.ID, "order_1", "pay_1", f.verifier.Sign("order_1", "pay_1"))
	require.NoError(t, err)

	// Skipping paid -> completed.
	_, err = f.uc.AdvanceWorkflow(context.Background(), "uid-admin", order.ID, entity.OrderStatusCompleted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "INVALID_TRANSITION"))

	_, err = f.uc.AdvanceWorkflow(context.Background(), "uid-admin", order.ID, entity.OrderStatusInProgress)
	require.NoError(t, err)

	// Going backward.
	_, err = f.uc.AdvanceWorkflow(context.Background(), "uid-admin", order.ID, entity.OrderStatusInProgress)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "INVALID_TRANSITION"))
}

func TestAdvanceWorkflowRequiresAdmin(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.uc.AdvanceWorkflow(context.Background(), "uid-asha", order.ID, entity.OrderStatusInProgress)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestGetByIDGuard(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	got, err := f.uc.GetByID(context.Background(), "uid-asha", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	got, err = f.uc.GetByID(context.Background(), "uid-admin", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.uc.GetByID(context.Background(), "uid-bob", order.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestFullLifecycle(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.uc.Create(context.Background(), "uid-asha", CreateCustomOrderInput{
		Name:        "Asha",
		Email:       "asha@x.com",
		Phone:       "999",
		Description: "vase",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusRequested, order.Status)
	assert.Nil(t, order.QuotedPrice)

	order, err = f.uc.AssignQuote(context.Background(), "uid-admin", order.ID, 3500)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusQuoted, order.Status)
	assert.Equal(t, int64(3500), *order.QuotedPrice)

	order, err = f.uc.ConfirmPayment(context.Background(), order.ID, "order_1", "pay_1", f.verifier.Sign("order_1", "pay_1"))
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, order.Status)
	assert.Equal(t, "pay_1", order.PaymentID)

	order, err = f.uc.AdvanceWorkflow(context.Background(), "uid-admin", order.ID, entity.OrderStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusInProgress, order.Status)

	order, err = f.uc.AdvanceWorkflow(context.Background(), "uid-admin", order.ID, entity.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, order.Status)
}

func TestCreateCustomOrderRateLimited(t *testing.T) {
	f := newOrderFixture(t)

	input := CreateCustomOrderInput{
		Name:        "Asha",
		Email:       "asha@x.com",
		Phone:       "999",
		Description: "vase",
	}

	var limited bool
	for i := 0; i < 6; i++ {
		_, err := f.uc.Create(context.Background(), "uid-asha", input)
		if err != nil {
			require.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
			limited = true
			break
		}
	}
	assert.True(t, limited, "the 6th submission inside an hour should be throttled")
}

func TestDeleteRequiresAdmin(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	err := f.uc.Delete(context.Background(), "uid-asha", order.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	err = f.uc.Delete(context.Background(), "uid-admin", order.ID)
	require.NoError(t, err)

	_, err = f.orders.GetByID(context.Background(), order.ID)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}
