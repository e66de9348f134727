package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/internal/domain/repository"
	"github.com/sangkips/optica-api/pkg/localtime"
	"github.com/sangkips/optica-api/pkg/printer"
)

const currency = "DH"

// ShopInfo is the default ticket header when the owner has not set one
type ShopInfo struct {
	Name    string
	Address string
	Phone   string
}

// PrinterService renders receipts as ESC/POS tickets and sends them to the printer
type PrinterService struct {
	printer  printer.Printer
	receipts *ReceiptService
	userRepo repository.UserRepository
	shop     ShopInfo
	loc      *time.Location
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	receipts *ReceiptService,
	userRepo repository.UserRepository,
	shop ShopInfo,
	loc *time.Location,
) *PrinterService {
	return &PrinterService{printer: p, receipts: receipts, userRepo: userRepo, shop: shop, loc: loc}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// TicketLine is one printed item
type TicketLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Total    string `json:"total"`
}

// Ticket is a receipt flattened to the strings that get printed
type Ticket struct {
	ShopName      string       `json:"shop_name"`
	ShopAddress   string       `json:"shop_address,omitempty"`
	ShopPhone     string       `json:"shop_phone,omitempty"`
	ReceiptNo     string       `json:"receipt_no"`
	Date          string       `json:"date"`
	ClientName    string       `json:"client_name"`
	ClientPhone   string       `json:"client_phone,omitempty"`
	Prescription  [][]string   `json:"prescription,omitempty"`
	Lines         []TicketLine `json:"lines"`
	Subtotal      string       `json:"subtotal"`
	Tax           string       `json:"tax"`
	Discount      string       `json:"discount,omitempty"`
	Total         string       `json:"total"`
	Advance       string       `json:"advance"`
	Balance       string       `json:"balance"`
	PaymentStatus string       `json:"payment_status"`
	Printed       bool         `json:"printed"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	kind := s.printer.Kind()
	return &PrinterStatus{
		Configured: kind != printer.KindNone,
		Connected:  s.printer.IsConnected(ctx),
		Type:       string(kind),
	}
}

// PrintReceipt builds the ticket for a receipt and prints it when a printer
// is configured. The ticket is returned either way for on-screen preview.
func (s *PrinterService) PrintReceipt(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	receipt, err := s.receipts.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}

	shop := s.shop
	if owner, err := s.userRepo.GetByID(ctx, receipt.UserID); err == nil && owner != nil {
		shop = shopOf(owner, shop)
	}

	ticket := BuildTicket(receipt, shop, s.loc)
	if s.printer.Kind() == printer.KindNone {
		return ticket, nil
	}

	if err := s.printer.Print(ctx, FormatTicket(ticket)); err != nil {
		log.Error().Err(err).Str("receipt_id", id.String()).Msg("Printer error")
		return ticket, fmt.Errorf("failed to print receipt: %w", err)
	}

	ticket.Printed = true
	return ticket, nil
}

func shopOf(u *entity.User, fallback ShopInfo) ShopInfo {
	shop := fallback
	if u.ShopName != nil && *u.ShopName != "" {
		shop.Name = *u.ShopName
	}
	if u.ShopAddress != nil && *u.ShopAddress != "" {
		shop.Address = *u.ShopAddress
	}
	if u.ShopPhone != nil && *u.ShopPhone != "" {
		shop.Phone = *u.ShopPhone
	}
	return shop
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func measure(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(2)
}

// BuildTicket flattens a receipt into printable strings
func BuildTicket(r *entity.Receipt, shop ShopInfo, loc *time.Location) *Ticket {
	t := &Ticket{
		ShopName:      shop.Name,
		ShopAddress:   shop.Address,
		ShopPhone:     shop.Phone,
		ReceiptNo:     r.ReceiptNo,
		Date:          localtime.FormatDateTime(r.CreatedAt, loc),
		Subtotal:      money(r.Subtotal),
		Tax:           money(r.Tax),
		Total:         money(r.Total),
		Advance:       money(r.AdvancePayment),
		Balance:       money(r.Balance),
		PaymentStatus: r.PaymentStatus().String(),
	}
	if r.Client != nil {
		t.ClientName = r.Client.Name
		t.ClientPhone = r.Client.Phone
	}
	if d := r.Discount(); !d.IsZero() {
		t.Discount = money(d)
	}

	p := r.Prescription
	if p != (entity.Prescription{}) {
		t.Prescription = [][]string{
			{"", "SPH", "CYL", "AXE"},
			{"OD", measure(p.RightEyeSph), measure(p.RightEyeCyl), measure(p.RightEyeAxe)},
			{"OG", measure(p.LeftEyeSph), measure(p.LeftEyeCyl), measure(p.LeftEyeAxe)},
		}
		if p.AddValue != nil {
			t.Prescription = append(t.Prescription, []string{"ADD", measure(p.AddValue)})
		}
	}

	for i := range r.Items {
		item := &r.Items[i]
		t.Lines = append(t.Lines, TicketLine{
			Name:     item.DisplayName(),
			Quantity: item.Quantity,
			Price:    money(item.Price),
			Total:    money(item.LineTotal()),
		})
	}
	return t
}

// FormatTicket converts a Ticket into ESC/POS bytes for 58mm paper.
func FormatTicket(t *Ticket) []byte {
	doc := printer.NewDocument(printer.Width58mm)

	doc.Align(printer.AlignCenter).
		Bold(true).
		Size(printer.FontDouble).
		Line(t.ShopName).
		Size(printer.FontNormal).
		Bold(false)
	if t.ShopAddress != "" {
		doc.Line(t.ShopAddress)
	}
	if t.ShopPhone != "" {
		doc.Line(t.ShopPhone)
	}

	doc.Align(printer.AlignLeft).
		Rule('-').
		Pair("Receipt:", t.ReceiptNo).
		Pair("Date:", t.Date).
		Pair("Client:", t.ClientName)
	if t.ClientPhone != "" {
		doc.Pair("Phone:", t.ClientPhone)
	}

	if len(t.Prescription) > 0 {
		doc.Rule('-')
		for _, row := range t.Prescription {
			doc.Columns(row[0], 5, row[1:]...)
		}
	}

	doc.Rule('-')
	for _, line := range t.Lines {
		doc.Item(line.Quantity, line.Name, line.Total)
		if line.Quantity > 1 {
			doc.Linef("  @ %s each", line.Price)
		}
	}

	doc.Rule('-').
		Pair("Subtotal:", t.Subtotal+" "+currency).
		Pair("Assurance tax:", t.Tax+" "+currency)
	if t.Discount != "" {
		doc.Pair("Discount:", "-"+t.Discount+" "+currency)
	}
	doc.Bold(true).
		Pair("TOTAL:", t.Total+" "+currency).
		Bold(false).
		Pair("Advance:", t.Advance+" "+currency).
		Pair("Balance:", t.Balance+" "+currency).
		Pair("Status:", t.PaymentStatus)

	doc.Rule('-').
		Align(printer.AlignCenter).
		Feed(1).
		Line("Thank you for your visit!").
		Align(printer.AlignLeft).
		Cut()

	return doc.Bytes()
}
