// Package payment talks to the card processor.
package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/SAP-F-2025/lms-service/internal/config"
	"github.com/SAP-F-2025/lms-service/internal/observability"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const statusSucceeded = "succeeded"

var ErrChargeDeclined = errors.New("charge was not successful")

type ChargeRequest struct {
	Amount      float64 // major currency units
	Source      string
	Description string
	UserID      uint
	CourseID    uint
}

type Charge struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// GatewayClient posts charges to a Stripe-compatible /v1/charges endpoint.
type GatewayClient struct {
	client   *resty.Client
	currency string
}

func NewGatewayClient(cfg config.PaymentConfig) *GatewayClient {
	client := resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.APIKey, "")
	return &GatewayClient{client: client, currency: cfg.Currency}
}

// ToCents converts a price to the smallest currency unit.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (g *GatewayClient) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	ctx, span := observability.Tracer().Start(ctx, "payment.charge",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int64("payment.amount_cents", ToCents(req.Amount)),
			attribute.String("payment.currency", g.currency),
			attribute.Int("lms.course_id", int(req.CourseID)),
		))
	defer span.End()

	charge, err := g.charge(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "charge failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("payment.charge_id", charge.ID))
	return charge, nil
}

func (g *GatewayClient) charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	var charge Charge
	var failure apiError

	resp, err := g.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"amount":             strconv.FormatInt(ToCents(req.Amount), 10),
			"currency":           g.currency,
			"description":        req.Description,
			"source":             req.Source,
			"metadata[user_id]":  strconv.FormatUint(uint64(req.UserID), 10),
			"metadata[curso_id]": strconv.FormatUint(uint64(req.CourseID), 10),
		}).
		SetResult(&charge).
		SetError(&failure).
		Post("/v1/charges")
	if err != nil {
		return nil, fmt.Errorf("failed to reach payment gateway: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d: %s", ErrChargeDeclined, resp.StatusCode(), failure.Error.Message)
	}
	if charge.Status != statusSucceeded {
		return nil, fmt.Errorf("%w: status %q", ErrChargeDeclined, charge.Status)
	}
	return &charge, nil
}
