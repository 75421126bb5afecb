package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const SalaryPaidEventType = "salary.paid"

type SalaryPaidEvent struct {
	RecordID         string          `json:"record_id"`
	CompanyID        string          `json:"company_id"`
	EmployeeID       string          `json:"employee_id"`
	Period           string          `json:"period"`
	NetSalary        decimal.Decimal `json:"net_salary"`
	PaidOn           string          `json:"paid_on"`
	PaymentMethod    *string         `json:"payment_method,omitempty"`
	PaymentReference *string         `json:"payment_reference,omitempty"`
	PaidBy           string          `json:"paid_by"`
	PaidAt           time.Time       `json:"paid_at"`
}

func NewSalaryPaidEvent(r payroll.SalaryRecord) SalaryPaidEvent {
	e := SalaryPaidEvent{
		RecordID:         r.ID,
		CompanyID:        r.CompanyID,
		EmployeeID:       r.EmployeeID,
		Period:           r.Period.Code(),
		NetSalary:        r.NetSalary,
		PaymentMethod:    r.PaymentMethod,
		PaymentReference: r.PaymentReference,
	}
	if r.PaidOn != nil {
		e.PaidOn = r.PaidOn.Format(time.DateOnly)
	}
	if r.PaidBy != nil {
		e.PaidBy = *r.PaidBy
	}
	if r.PaidAt != nil {
		e.PaidAt = *r.PaidAt
	}
	return e
}

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type kafkaPublisher struct {
	writer MessageWriter
	topic  string
}

// NewKafkaPublisher publishes salary events keyed by company so a tenant's events stay ordered.
func NewKafkaPublisher(writer MessageWriter, topic string) payroll.EventPublisher {
	return &kafkaPublisher{writer: writer, topic: topic}
}

// NewKafkaWriter builds the writer used in production. The topic is set per message.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
}

func (p *kafkaPublisher) PublishSalaryPaid(ctx context.Context, record payroll.SalaryRecord) error {
	payload, err := json.Marshal(NewSalaryPaidEvent(record))
	if err != nil {
		return fmt.Errorf("marshal salary paid event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(record.CompanyID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(SalaryPaidEventType)},
			{Key: "aggregate_type", Value: []byte("salary_record")},
		},
	})
}

type noopPublisher struct{}

// NewNoopPublisher is used when no brokers are configured.
func NewNoopPublisher() payroll.EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) PublishSalaryPaid(context.Context, payroll.SalaryRecord) error {
	return nil
}
