package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/nidys-catering/api/internal/session"

	"github.com/shopspring/decimal"
)

var quoteTmpl = template.Must(template.New("quote").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return "A$" + d.StringFixed(2) },
}).Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <h2>{{.Title}}: Quote Request</h2>
  <p>Dear {{or .Quote.Customer.Name "Customer"}},</p>
  <p>Thank you for your enquiry. Here is a summary of your requested order.</p>

  <h3>Customer Details</h3>
  <ul>
    {{if .Quote.Customer.Name}}<li><strong>Name:</strong> {{.Quote.Customer.Name}}</li>{{end}}
    {{if .Quote.Customer.Email}}<li><strong>Email:</strong> {{.Quote.Customer.Email}}</li>{{end}}
    {{if .Quote.Customer.Business}}<li><strong>Business:</strong> {{.Quote.Customer.Business}}</li>{{end}}
    {{if .Quote.Customer.ContactNumber}}<li><strong>Contact:</strong> {{.Quote.Customer.ContactNumber}}</li>{{end}}
    {{if .Quote.Customer.Address}}<li><strong>Address:</strong> {{.Quote.Customer.Address}}</li>{{end}}
    <li><strong>Attendees:</strong> {{.Quote.Pricing.Attendees}}</li>
    <li><strong>Service:</strong> {{.Quote.Customer.ServiceType}}</li>
    <li><strong>Equipment:</strong> {{.Quote.Customer.EquipmentType}}</li>
  </ul>

  {{range .Quote.Pricing.Days}}
  <h3>{{.Label}}</h3>
  {{if .Event}}<p><strong>Event:</strong> {{.Event}}</p>{{end}}
  {{if .DayDate}}<p><strong>Date:</strong> {{.DayDate}}{{if .DropTime}} at {{.DropTime}}{{end}}</p>{{end}}
  {{if .Notes}}<p><em>{{.Notes}}</em></p>{{end}}
  <table cellpadding="6" cellspacing="0" border="0" width="100%" style="border-collapse: collapse;">
    <tr style="background: #f3f4f6;">
      <th align="left">Item</th><th align="right">Unit</th><th align="right">Qty</th><th align="right">Total</th>
    </tr>
    {{range .Lines}}
    <tr>
      <td>{{.Name}} <span style="color:#6b7280;">({{.CategoryTitle}})</span></td>
      <td align="right">{{money .UnitPrice}}</td>
      <td align="right">{{.Quantity}}</td>
      <td align="right">{{money .LineTotal}}</td>
    </tr>
    {{end}}
    <tr>
      <td colspan="3" align="right"><strong>Day subtotal</strong></td>
      <td align="right"><strong>{{money .Subtotal}}</strong></td>
    </tr>
  </table>
  {{end}}

  <h3>Totals</h3>
  <table cellpadding="6" cellspacing="0" border="0">
    <tr><td>Subtotal</td><td align="right">{{money .Quote.Pricing.Subtotal}}</td></tr>
    <tr><td>Service Fee ({{.Quote.Customer.ServiceType}})</td><td align="right">{{money .Quote.Pricing.ServiceFee}}</td></tr>
    <tr><td>GST (10%)</td><td align="right">{{money .Quote.Pricing.GST}}</td></tr>
    <tr><td><strong>TOTAL</strong></td><td align="right"><strong>{{money .Quote.Pricing.Total}}</strong></td></tr>
    <tr><td>Per head ({{.Quote.Pricing.Attendees}})</td><td align="right">{{money .Quote.Pricing.PerHead}}</td></tr>
  </table>

  {{if .Quote.Customer.Notes}}<p><strong>Notes:</strong> {{.Quote.Customer.Notes}}</p>{{end}}
  <p>Best regards,<br>{{.Title}}</p>
</body>
</html>`))

// RenderQuote renders the quote view into the HTML email body.
func RenderQuote(title string, quote session.Quote) (string, error) {
	var buf bytes.Buffer
	err := quoteTmpl.Execute(&buf, struct {
		Title string
		Quote session.Quote
	}{Title: title, Quote: quote})
	if err != nil {
		return "", fmt.Errorf("render quote: %w", err)
	}
	return buf.String(), nil
}
