package invoicing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prem-quety/brokerband-middleware/internal/domain"
	"github.com/prem-quety/brokerband-middleware/internal/infrastructure/books"
	"github.com/prem-quety/brokerband-middleware/internal/repository/failure_repo"
	"github.com/prem-quety/brokerband-middleware/internal/repository/mapping_repo"
	"github.com/prem-quety/brokerband-middleware/internal/util"
)

// AccountingClient is the slice of the books client the invoicing flow uses.
type AccountingClient interface {
	CreateContact(ctx context.Context, input books.ContactInput) (*books.Contact, error)
	FindContactByEmail(ctx context.Context, email string) (*books.Contact, error)
	FindContactByName(ctx context.Context, name string) (*books.Contact, error)
	FindItemBySKU(ctx context.Context, sku string) (*books.Item, error)
	CreateInvoice(ctx context.Context, input books.InvoiceInput) (*books.Invoice, error)
	EmailInvoice(ctx context.Context, invoiceID, toEmail, subject, body string) error
}

// CurrencyResolver maps an order currency code to an accounting currency.
type CurrencyResolver interface {
	Resolve(ctx context.Context, code string) (books.Currency, error)
}

// Service creates and emails accounting invoices for orders the distributor
// accepted. Invoicing runs after the money-moving step of the pipeline, so
// every failure here is absorbed: it is written to the failure log and never
// propagated to the caller.
type Service struct {
	accounting AccountingClient
	currencies CurrencyResolver
	mappings   mapping_repo.MappingRepository
	failures   failure_repo.FailureRepository
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(
	accounting AccountingClient,
	currencies CurrencyResolver,
	mappings mapping_repo.MappingRepository,
	failures failure_repo.FailureRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		accounting: accounting,
		currencies: currencies,
		mappings:   mappings,
		failures:   failures,
		logger:     logger,
		now:        time.Now,
	}
}

// InvoiceOrder resolves the customer, currency and line items, creates the
// invoice, then emails it. It records at most one failure entry per attempt
// and never returns an error; the fulfillment outcome is already decided by
// the time invoicing runs.
func (s *Service) InvoiceOrder(ctx context.Context, order *domain.OrderSnapshot, submission *domain.SubmissionResult) {
	log := s.logger.With(zap.String("order_id", order.OrderID))

	contact, err := s.resolveContact(ctx, order)
	if err != nil {
		s.recordFailure(ctx, log, order.OrderID, domain.FailureCategoryResolution,
			fmt.Errorf("resolving customer contact: %w", err))
		return
	}

	currency, err := s.currencies.Resolve(ctx, order.Currency)
	if err != nil {
		s.recordFailure(ctx, log, order.OrderID, domain.FailureCategoryResolution,
			fmt.Errorf("resolving currency %q: %w", order.Currency, err))
		return
	}

	lines, err := s.buildLineItems(ctx, order)
	if err != nil {
		s.recordFailure(ctx, log, order.OrderID, domain.FailureCategoryResolution, err)
		return
	}

	invoice, err := s.accounting.CreateInvoice(ctx, books.InvoiceInput{
		CustomerID:      contact.ContactID,
		CurrencyID:      currency.CurrencyID,
		Date:            s.now().Format("2006-01-02"),
		ReferenceNumber: submission.PONumber,
		LineItems:       lines,
	})
	if err != nil {
		s.recordFailure(ctx, log, order.OrderID, domain.FailureCategoryResolution,
			fmt.Errorf("creating invoice: %w", err))
		return
	}

	log.Info("Invoice created",
		zap.String("invoice_id", invoice.InvoiceID),
		zap.String("invoice_number", invoice.InvoiceNumber))

	if order.Email == "" {
		s.recordFailure(ctx, log, order.OrderID, domain.FailureCategoryEmail,
			errors.New("order has no customer email to deliver invoice to"))
		return
	}

	subject := fmt.Sprintf("Invoice %s for order #%d", invoice.InvoiceNumber, order.OrderNumber)
	body := fmt.Sprintf("Thank you for your order. Invoice %s is attached.", invoice.InvoiceNumber)
	if err := s.accounting.EmailInvoice(ctx, invoice.InvoiceID, order.Email, subject, body); err != nil {
		// The invoice exists and stays; only the delivery needs follow-up.
		s.recordFailure(ctx, log, order.OrderID, domain.FailureCategoryEmail,
			fmt.Errorf("emailing invoice %s: %w", invoice.InvoiceID, err))
		return
	}

	log.Info("Invoice emailed", zap.String("invoice_id", invoice.InvoiceID), zap.String("to", order.Email))
}

// resolveContact finds or creates the accounting contact for the order's
// customer. Creation is attempted first with the unique-email guard; a
// duplicate-name rejection falls back to lookup by email, then by name.
func (s *Service) resolveContact(ctx context.Context, order *domain.OrderSnapshot) (*books.Contact, error) {
	name := contactName(order)
	if name == "" {
		return nil, errors.New("order has no customer name")
	}

	input := books.ContactInput{
		ContactName: name,
		ContactType: "customer",
		Email:       order.Email,
	}
	if order.Customer != nil {
		input.CompanyName = order.Customer.Company
	}
	if addr := order.BillingAddress; addr != nil {
		input.BillingAddress = &books.BillingAddress{
			Attention: addr.Name,
			Address:   addr.Address1,
			City:      addr.City,
			State:     addr.Province,
			Zip:       addr.Zip,
			Country:   addr.Country,
			Phone:     addr.Phone,
		}
	}

	contact, err := s.accounting.CreateContact(ctx, input)
	if err == nil {
		return contact, nil
	}
	if !errors.Is(err, books.ErrDuplicateContactName) {
		return nil, err
	}

	// The name is taken. The same person usually owns it, so prefer the
	// email identity before matching on the bare name.
	if order.Email != "" {
		contact, err := s.accounting.FindContactByEmail(ctx, order.Email)
		if err != nil {
			return nil, err
		}
		if contact != nil {
			return contact, nil
		}
	}
	contact, err = s.accounting.FindContactByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, fmt.Errorf("contact name %q taken but no matching contact found", name)
	}
	return contact, nil
}

// buildLineItems maps every order line to an accounting item through the
// catalog mapping table. A single unmapped line fails the whole invoice;
// partial invoices are never created.
func (s *Service) buildLineItems(ctx context.Context, order *domain.OrderSnapshot) ([]books.InvoiceLineItem, error) {
	lines := make([]books.InvoiceLineItem, 0, len(order.LineItems))
	for _, line := range order.LineItems {
		mapping, err := s.mappings.GetByVariantID(ctx, line.VariantID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("loading item mapping for variant %s: %w", line.VariantID, err)
		}
		if mapping == nil || mapping.AccountingItemID == "" {
			return nil, fmt.Errorf("no accounting item mapped for variant %s (sku %q)", line.VariantID, line.SKU)
		}
		rate, _ := line.Price.Float64()
		lines = append(lines, books.InvoiceLineItem{
			ItemID:   mapping.AccountingItemID,
			Rate:     rate,
			Quantity: line.Quantity,
		})
	}
	return lines, nil
}

func (s *Service) recordFailure(ctx context.Context, log *zap.Logger, orderID, category string, cause error) {
	log.Error("Invoicing failed", zap.String("category", category), zap.Error(cause))
	failure := &domain.InvoiceFailure{
		ID:         util.GenerateUUID(),
		OrderID:    orderID,
		Category:   category,
		Message:    cause.Error(),
		RetryCount: 1,
		TriedAt:    s.now(),
	}
	if err := s.failures.Append(ctx, failure); err != nil {
		// Last resort: the failure log itself is down. Invoicing still must
		// not surface an error, so the log line is the only trace left.
		log.Error("Failed to record invoice failure", zap.Error(err))
	}
}

func contactName(order *domain.OrderSnapshot) string {
	if order.Customer != nil {
		name := strings.TrimSpace(order.Customer.FirstName + " " + order.Customer.LastName)
		if name != "" {
			return name
		}
	}
	if order.BillingAddress != nil && order.BillingAddress.Name != "" {
		return order.BillingAddress.Name
	}
	if order.ShippingAddress != nil && order.ShippingAddress.Name != "" {
		return order.ShippingAddress.Name
	}
	return ""
}
