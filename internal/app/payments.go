package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/observability"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
)

// PaymentService validates push-payment requests and hands them to the
// provider client. It keeps no record of the attempt; the booking flow
// owns paid/unpaid state and learns the outcome via the provider callback.
type PaymentService struct {
	client domain.PaymentClient // nil when provider credentials are not configured
}

func NewPaymentService(client domain.PaymentClient) *PaymentService {
	return &PaymentService{client: client}
}

// InitiatePush requests a payment prompt on the customer's phone. Input and
// configuration problems fail before any outbound call is made.
func (s *PaymentService) InitiatePush(ctx context.Context, req domain.STKRequest) (domain.STKResult, error) {
	if strings.TrimSpace(req.PhoneNumber) == "" || req.Amount <= 0 {
		return domain.STKResult{}, fmt.Errorf("%w: phoneNumber and amount are required", domain.ErrInvalidInput)
	}
	if s.client == nil {
		return domain.STKResult{}, domain.ErrMissingCredentials
	}

	res, err := s.client.InitiateSTKPush(ctx, req.PhoneNumber, req.Amount)
	switch {
	case err != nil:
		observability.ObservePayment("error")
	case res.Acknowledged:
		observability.ObservePayment("acknowledged")
	default:
		observability.ObservePayment("rejected")
	}
	return res, err
}
