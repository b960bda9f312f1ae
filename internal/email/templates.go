package email

import (
	"fmt"
	"strings"
)

// OrderLine is one order line as shown in the confirmation email. Price
// is in minor currency units.
type OrderLine struct {
	ProductID string
	Name      string
	Quantity  int
	Price     int
}

// BuildOrderConfirmationBody builds the HTML body for the order
// confirmation email.
func BuildOrderConfirmationBody(name, orderID string, total int, lines []OrderLine) string {
	var rows strings.Builder
	for _, line := range lines {
		label := line.Name
		if label == "" {
			label = line.ProductID
		}
		rows.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			label,
			line.Quantity,
			formatAmount(line.Price),
			formatAmount(line.Price*line.Quantity),
		))
	}

	greeting := "Thank you for your order"
	if name != "" {
		greeting = fmt.Sprintf("Thank you for your order, %s", name)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #1a1a2e; padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">%s</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Your order has been received and is now being processed.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
		</div>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left; font-weight: 600;">Item</th>
					<th style="padding: 12px; text-align: center; font-weight: 600;">Qty</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Unit price</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Subtotal</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;">
			<span style="font-size: 14px; color: #666;">Total</span>
			<span style="font-size: 24px; font-weight: bold; margin-left: 10px;">%s</span>
		</div>

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			This is an automated message. If anything looks wrong, please contact support.
		</p>
	</div>
</body>
</html>`, greeting, orderID, rows.String(), formatAmount(total))
}

// formatAmount renders minor currency units as a dollar string, e.g.
// 123456 -> "$1,234.56".
func formatAmount(minor int) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	dollars := minor / 100
	cents := minor % 100

	str := fmt.Sprintf("%d", dollars)
	var grouped strings.Builder
	remainder := len(str) % 3
	if remainder > 0 {
		grouped.WriteString(str[:remainder])
		if len(str) > remainder {
			grouped.WriteString(",")
		}
	}
	for i := remainder; i < len(str); i += 3 {
		grouped.WriteString(str[i : i+3])
		if i+3 < len(str) {
			grouped.WriteString(",")
		}
	}

	return fmt.Sprintf("%s$%s.%02d", sign, grouped.String(), cents)
}
