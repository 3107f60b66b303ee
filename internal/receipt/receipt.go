// Package receipt renders settled transactions and purchase records into
// printable documents and hands them to a delivery target. Settlement is
// already complete when this package runs, so delivery failures are
// reported back but never unwind a sale.
package receipt

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"gamestore_pos/internal/models"
)

// Document is a fully rendered receipt, ready for any delivery channel.
type Document struct {
	Title string
	Body  string
}

// Deliverer pushes a rendered document to a target such as a printer queue
// or an email address.
type Deliverer interface {
	Deliver(doc Document, target string) error
}

var hundred = decimal.NewFromInt(100)

// RenderTransaction formats a sales receipt with one line per cart entry,
// the VAT split between new and used goods, and the payment breakdown.
func RenderTransaction(t models.Transaction) Document {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticket %s — %s\n", t.ID, t.Date.Format("02/01/2006 15:04"))
	if t.Customer != nil {
		fmt.Fprintf(&b, "Client: %s %s\n", t.Customer.FirstName, t.Customer.LastName)
	}
	b.WriteString("\n")

	vatByRate := map[string]decimal.Decimal{}
	for _, line := range t.Lines {
		lineTotal := line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		fmt.Fprintf(&b, "%-40s %2d x %8s = %9s\n",
			line.Product.Name+" ("+line.Product.Condition.Label()+")",
			line.Quantity,
			line.Product.Price.StringFixed(2),
			lineTotal.StringFixed(2))

		rate := line.Product.VAT.StringFixed(0)
		// VAT is included in the price; extract the tax share per rate.
		tax := lineTotal.Sub(lineTotal.Div(decimal.NewFromInt(1).Add(line.Product.VAT.Div(hundred)))).Round(2)
		vatByRate[rate] = vatByRate[rate].Add(tax)
	}

	b.WriteString("\n")
	for _, rate := range []string{"20", "0"} {
		if tax, ok := vatByRate[rate]; ok {
			fmt.Fprintf(&b, "TVA %s%%: %s\n", rate, tax.StringFixed(2))
		}
	}
	fmt.Fprintf(&b, "Total: %s\n\n", t.Total.StringFixed(2))

	for _, p := range t.Payments {
		fmt.Fprintf(&b, "Paiement %-6s %9s\n", p.Method, p.Amount.StringFixed(2))
	}

	return Document{
		Title: fmt.Sprintf("Ticket de caisse %s", t.ID),
		Body:  b.String(),
	}
}

// RenderPurchase formats the intake receipt handed to the seller, including
// the identity capture required for the used-goods register.
func RenderPurchase(p models.Purchase) Document {
	var b strings.Builder
	fmt.Fprintf(&b, "Bon d'achat %s — %s\n", p.ID, p.Date.Format("02/01/2006 15:04"))
	fmt.Fprintf(&b, "Vendeur: %s %s\n", p.Seller.FirstName, p.Seller.LastName)
	fmt.Fprintf(&b, "Pièce: %s n°%s\n\n", p.Seller.DocumentType, p.Seller.DocumentNumber)

	for _, line := range p.Lines {
		fmt.Fprintf(&b, "%-40s %2d x %8s = %9s\n",
			line.Name+" ("+line.Condition.Label()+")",
			line.Quantity,
			line.PurchasePrice.StringFixed(2),
			line.PurchasePrice.Mul(decimal.NewFromInt(int64(line.Quantity))).StringFixed(2))
		if line.SerialNumber != "" {
			fmt.Fprintf(&b, "    n° série: %s\n", line.SerialNumber)
		}
	}

	fmt.Fprintf(&b, "\nTotal versé (%s): %s\n", p.PaymentMethod, p.TotalAmount.StringFixed(2))

	return Document{
		Title: fmt.Sprintf("Bon d'achat %s", p.ID),
		Body:  b.String(),
	}
}

// PrintDeliverer writes documents to an output stream standing in for the
// receipt printer.
type PrintDeliverer struct {
	Out io.Writer
}

func (d PrintDeliverer) Deliver(doc Document, target string) error {
	if d.Out == nil {
		return fmt.Errorf("no printer output configured")
	}
	if _, err := fmt.Fprintf(d.Out, "%s\n%s\n", doc.Title, doc.Body); err != nil {
		return fmt.Errorf("failed to print document: %w", err)
	}
	return nil
}

// EmailDeliverer logs the outgoing email. Wiring a real SMTP relay is a
// deployment concern; the service only needs the failure signal.
type EmailDeliverer struct {
	Logger *log.Logger
}

func (d EmailDeliverer) Deliver(doc Document, target string) error {
	if target == "" {
		return fmt.Errorf("no recipient address for document %q", doc.Title)
	}
	if d.Logger != nil {
		d.Logger.Printf("Emailing %q to %s", doc.Title, target)
	}
	return nil
}
