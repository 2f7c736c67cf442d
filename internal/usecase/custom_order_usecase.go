package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"time"

	"basho/internal/domain/entity"
	"basho/internal/domain/repository"
	"basho/internal/domain/service"
	"basho/internal/infrastructure/ratelimit"
	"basho/pkg/errors"
	"basho/pkg/logger"
)

type CustomOrderUseCase struct {
	orderRepo        repository.CustomOrderRepository
	userRepo         repository.UserRepository
	fileService      service.FileUploadService
	mailer           service.Mailer
	verifier         *service.SignatureVerifier
	rateLimiter      *ratelimit.RateLimiter
	adminNotifyEmail string
}

func NewCustomOrderUseCase(
	orderRepo repository.CustomOrderRepository,
	userRepo repository.UserRepository,
	fileService service.FileUploadService,
	mailer service.Mailer,
	verifier *service.SignatureVerifier,
	adminNotifyEmail string,
) *CustomOrderUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &CustomOrderUseCase{
		orderRepo:        orderRepo,
		userRepo:         userRepo,
		fileService:      fileService,
		mailer:           mailer,
		verifier:         verifier,
		rateLimiter:      rateLimiter,
		adminNotifyEmail: adminNotifyEmail,
	}
}

type CreateCustomOrderInput struct {
	Name            string
	Email           string
	Phone           string
	Description     string
	ReferenceImages []string
	Notes           string
}

// Create files a new custom order on behalf of the authenticated
// customer. The requester can only file under their own email address.
func (uc *CustomOrderUseCase) Create(ctx context.Context, userID string, input CreateCustomOrderInput) (*entity.CustomOrder, error) {
	allowed, _ := uc.rateLimiter.Allow(userID, "create_order")
	if !allowed {
		return nil, errors.TooManyRequests("Too many custom order submissions. Please try again later")
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	phone := strings.TrimSpace(input.Phone)
	description := strings.TrimSpace(input.Description)

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if phone == "" {
		missing = append(missing, "phone")
	}
	if description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, errors.Validation("Missing required fields", missing)
	}

	if !strings.EqualFold(user.Email, email) {
		return nil, errors.IdentityMismatch("Custom orders can only be submitted under your own email address")
	}

	order := &entity.CustomOrder{
		Name:            name,
		Email:           strings.ToLower(email),
		Phone:           phone,
		Description:     description,
		ReferenceImages: uc.resolveReferenceImages(ctx, input.ReferenceImages),
		Notes:           strings.TrimSpace(input.Notes),
		Status:          entity.OrderStatusRequested,
	}

	if err := uc.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	uc.notify(ctx, service.MailOrderSubmitted, []string{order.Email, uc.adminNotifyEmail}, order, map[string]string{
		"name":        order.Name,
		"description": order.Description,
	})

	return order, nil
}

// AssignQuote moves a requested order to quoted with the given price in
// minor units. A quote is issued at most once; re-quoting is a business
// decision that would need its own transition.
func (uc *CustomOrderUseCase) AssignQuote(ctx context.Context, userID, orderID string, price int64) (*entity.CustomOrder, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, errors.Forbidden("Only admins can assign quotes", nil)
	}

	if price <= 0 {
		return nil, errors.Validation("Quoted price must be positive", []string{"price"})
	}

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != entity.OrderStatusRequested {
		return nil, errors.InvalidTransition(fmt.Sprintf("Cannot quote an order in status %q", order.Status))
	}

	order.QuotedPrice = &price
	order.Status = entity.OrderStatusQuoted

	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	uc.notify(ctx, service.MailOrderQuoted, []string{order.Email}, order, map[string]string{
		"name":  order.Name,
		"price": strconv.FormatInt(price, 10),
	})

	return order, nil
}

// ConfirmPayment is the webhook-driven quoted->paid transition. The
// gateway signature is the sole authentication; a duplicate delivery on
// an already-paid order short-circuits to success without a second
// email.
func (uc *CustomOrderUseCase) ConfirmPayment(ctx context.Context, orderID, gatewayOrderRef, gatewayPaymentRef, signature string) (*entity.CustomOrder, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !uc.verifier.Verify(gatewayOrderRef, gatewayPaymentRef, signature) {
		return nil, errors.PaymentVerificationFailed("Payment signature verification failed")
	}

	if order.Status.AtLeastPaid() {
		return order, nil
	}

	if order.Status != entity.OrderStatusQuoted {
		return nil, errors.InvalidTransition(fmt.Sprintf("Cannot confirm payment for an order in status %q", order.Status))
	}

	now := time.Now()
	order.Status = entity.OrderStatusPaid
	order.PaymentID = gatewayPaymentRef
	order.GatewayOrderRef = gatewayOrderRef
	order.PaidAt = &now

	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	uc.notify(ctx, service.MailOrderPaid, []string{order.Email}, order, map[string]string{
		"name":       order.Name,
		"payment_id": order.PaymentID,
	})

	return order, nil
}

// AdvanceWorkflow handles the two admin fulfillment transitions:
// paid->in-progress and in-progress->completed.
func (uc *CustomOrderUseCase) AdvanceWorkflow(ctx context.Context, userID, orderID string, target entity.OrderStatus) (*entity.CustomOrder, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, errors.Forbidden("Only admins can advance the order workflow", nil)
	}

	if !target.Valid() {
		return nil, errors.Validation("Unknown order status", []string{"status"})
	}

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Quoting and payment have their own entry points; this one only
	// walks the fulfillment tail of the lifecycle.
	if target != entity.OrderStatusInProgress && target != entity.OrderStatusCompleted {
		return nil, errors.InvalidTransition(fmt.Sprintf("Status %q is not reachable through the workflow", target))
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, errors.InvalidTransition(fmt.Sprintf("Cannot move order from %q to %q", order.Status, target))
	}

	order.Status = target

	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// GetByID returns a single order, gated by the access guard.
func (uc *CustomOrderUseCase) GetByID(ctx context.Context, userID, orderID string) (*entity.CustomOrder, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !canAccessOrder(order, user) {
		return nil, errors.Forbidden("You do not have access to this order", nil)
	}

	return order, nil
}

// ListMine returns the requester's own orders, newest first.
func (uc *CustomOrderUseCase) ListMine(ctx context.Context, userID string, limit, offset int) ([]*entity.CustomOrder, int64, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return uc.orderRepo.ListByEmail(ctx, user.Email, limit, offset)
}

// List returns all orders for the admin console.
func (uc *CustomOrderUseCase) List(ctx context.Context, userID string, limit, offset int) ([]*entity.CustomOrder, int64, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if !user.IsAdmin() {
		return nil, 0, errors.Forbidden("Only admins can list all orders", nil)
	}

	return uc.orderRepo.List(ctx, limit, offset)
}

// Delete is the admin escape hatch; normal flow never removes orders.
func (uc *CustomOrderUseCase) Delete(ctx context.Context, userID, orderID string) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsAdmin() {
		return errors.Forbidden("Only admins can delete orders", nil)
	}

	if _, err := uc.orderRepo.GetByID(ctx, orderID); err != nil {
		return err
	}

	return uc.orderRepo.Delete(ctx, orderID)
}

// resolveReferenceImages uploads inline data-URI images to durable
// storage and swaps in the retrieval URL. Upload failures fall back to
// the supplied value; order creation never aborts over an image.
func (uc *CustomOrderUseCase) resolveReferenceImages(ctx context.Context, images []string) []string {
	if len(images) == 0 {
		return nil
	}

	resolved := make([]string, 0, len(images))
	for _, img := range images {
		img = strings.TrimSpace(img)
		if img == "" {
			continue
		}

		if uc.fileService == nil || !strings.HasPrefix(img, "data:") {
			resolved = append(resolved, img)
			continue
		}

		mimeType, data, err := decodeDataURI(img)
		if err != nil {
			logger.Warn("Failed to decode reference image data URI: %v", err)
			resolved = append(resolved, img)
			continue
		}

		url, err := uc.fileService.UploadFile(ctx, bytes.NewReader(data), mimeType, "custom-orders", true)
		if err != nil {
			logger.Warn("Failed to upload reference image: %v", err)
			resolved = append(resolved, img)
			continue
		}

		resolved = append(resolved, url)
	}

	return resolved
}

func decodeDataURI(uri string) (string, []byte, error) {
	rest := strings.TrimPrefix(uri, "data:")
	idx := strings.Index(rest, ";base64,")
	if idx < 0 {
		return "", nil, fmt.Errorf("unsupported data URI encoding")
	}

	mimeType := rest[:idx]
	data, err := base64.StdEncoding.DecodeString(rest[idx+len(";base64,"):])
	if err != nil {
		return "", nil, err
	}

	return mimeType, data, nil
}

// notify sends a lifecycle email. Failures are logged and swallowed;
// the state transition has already committed by the time this runs.
func (uc *CustomOrderUseCase) notify(ctx context.Context, kind string, recipients []string, order *entity.CustomOrder, data map[string]string) {
	if uc.mailer == nil {
		return
	}

	to := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r != "" {
			to = append(to, r)
		}
	}
	if len(to) == 0 {
		return
	}

	if data == nil {
		data = map[string]string{}
	}
	data["order_id"] = order.ID

	if err := uc.mailer.Send(ctx, kind, to, data); err != nil {
		logger.LogNotificationError(kind, order.ID, err)
	}
}
