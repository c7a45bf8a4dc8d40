package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/KaramelBytes/fluidreport/internal/delivery"
)

// ErrDeliverySkipped is returned by Deliver when there is no recipient or no
// sender configured.
var ErrDeliverySkipped = errors.New("delivery skipped")

// Deliver mails a saved report to params.Recipient. The outcome is logged and
// returned; it never affects the report already on disk.
func (p *Pipeline) Deliver(ctx context.Context, sender delivery.Sender, params Parameters, path string) error {
	if sender == nil || params.Recipient == "" {
		p.logger.InfoContext(ctx, "delivery skipped",
			slog.Bool("sender_configured", sender != nil),
			slog.Bool("recipient_given", params.Recipient != ""))
		return ErrDeliverySkipped
	}
	ctx, span := p.tracer.Start(ctx, "pipeline.deliver", trace.WithAttributes(attribute.String("fluidreport.recipient", params.Recipient)))
	defer span.End()

	msg := delivery.LabReport(params.Name, params.Supervisor, params.Recipient, path)
	if err := sender.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.WarnContext(ctx, "delivery failed",
			slog.String("to", params.Recipient),
			slog.String("error", err.Error()))
		return err
	}
	p.logger.InfoContext(ctx, "delivery succeeded", slog.String("to", params.Recipient))
	return nil
}
