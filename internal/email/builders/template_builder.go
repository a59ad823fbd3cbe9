package builders

import (
	"fmt"
	"html"
	"strings"
)

// Detail is one labelled row in a details table.
type Detail struct {
	Label string
	Value string
}

// EmailBuilder assembles the HTML body of a reminder email. Text passed to the
// Add* methods is escaped; markup comes only from the builder itself.
type EmailBuilder struct {
	header     string
	content    []string
	footer     string
	brandName  string
	brandColor string
}

func NewEmailBuilder(brandName, brandColor string) *EmailBuilder {
	if brandName == "" {
		brandName = "AyurCare"
	}
	if brandColor == "" {
		brandColor = "#2F855A"
	}

	return &EmailBuilder{
		brandName:  brandName,
		brandColor: brandColor,
	}
}

func (b *EmailBuilder) SetHeader(title, subtitle string) *EmailBuilder {
	sub := ""
	if subtitle != "" {
		sub = fmt.Sprintf(`<p style="margin: 10px 0 0 0; font-size: 16px; opacity: 0.95;">%s</p>`, html.EscapeString(subtitle))
	}
	b.header = fmt.Sprintf(`
		<div class="header">
			<h1 style="margin: 0; font-size: 26px;">%s</h1>
			%s
		</div>
	`, html.EscapeString(title), sub)
	return b
}

// AddInfoBox adds a highlighted box; boxType is one of info, warning or success.
func (b *EmailBuilder) AddInfoBox(text, boxType string) *EmailBuilder {
	bgColor, borderColor := "#F3F4F6", "#6B7280"
	switch boxType {
	case "success":
		bgColor, borderColor = "#DEF7EC", "#03543F"
	case "warning":
		bgColor, borderColor = "#FEF3C7", "#92400E"
	case "info":
		bgColor, borderColor = "#E6FFFA", "#285E61"
	}

	b.content = append(b.content, fmt.Sprintf(`
		<div style="background-color: %s; border-left: 4px solid %s; padding: 15px; margin: 20px 0; border-radius: 4px;">
			%s
		</div>
	`, bgColor, borderColor, html.EscapeString(text)))
	return b
}

// AddDetailsList adds a two-column table, rows in the order given.
func (b *EmailBuilder) AddDetailsList(details []Detail) *EmailBuilder {
	rows := make([]string, 0, len(details))
	for _, d := range details {
		if d.Value == "" {
			continue
		}
		rows = append(rows, fmt.Sprintf(`
			<tr>
				<td style="padding: 8px 12px; font-weight: bold; color: #4B5563;">%s:</td>
				<td style="padding: 8px 12px; color: #1F2937;">%s</td>
			</tr>
		`, html.EscapeString(d.Label), html.EscapeString(d.Value)))
	}
	if len(rows) == 0 {
		return b
	}

	b.content = append(b.content, fmt.Sprintf(`
		<table style="width: 100%%; border-collapse: collapse; margin: 15px 0;">
			%s
		</table>
	`, strings.Join(rows, "")))
	return b
}

func (b *EmailBuilder) AddDivider() *EmailBuilder {
	b.content = append(b.content, `<hr style="border: none; border-top: 1px solid #E5E7EB; margin: 30px 0;">`)
	return b
}

func (b *EmailBuilder) AddParagraph(text string) *EmailBuilder {
	b.content = append(b.content, fmt.Sprintf(`<p style="line-height: 1.6; color: #4B5563; margin: 15px 0;">%s</p>`, html.EscapeString(text)))
	return b
}

// SetFooter replaces the default footer text.
func (b *EmailBuilder) SetFooter(text string) *EmailBuilder {
	b.footer = fmt.Sprintf(`<div class="footer"><p>%s</p></div>`, html.EscapeString(text))
	return b
}

func (b *EmailBuilder) Build() string {
	footer := b.footer
	if footer == "" {
		footer = fmt.Sprintf(`
			<div class="footer">
				<p>You are receiving this because reminders are enabled on your %s account.</p>
				<p style="font-size: 11px; color: #9CA3AF; margin-top: 10px;">
					This is an automated email. Please do not reply to this message.
				</p>
			</div>
		`, html.EscapeString(b.brandName))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>%s</title>
	<style>%s</style>
</head>
<body>
	<div class="container">
		%s
		<div class="content">
			%s
		</div>
		%s
	</div>
</body>
</html>
	`, html.EscapeString(b.brandName), b.styles(), b.header, strings.Join(b.content, "\n"), footer)
}

func (b *EmailBuilder) styles() string {
	return `
		body {
			font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
			line-height: 1.6;
			color: #1F2937;
			background-color: #F9FAFB;
			margin: 0;
			padding: 0;
		}
		.container {
			max-width: 600px;
			margin: 20px auto;
			background-color: #FFFFFF;
			border-radius: 8px;
			box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);
			overflow: hidden;
		}
		.header {
			background: linear-gradient(135deg, ` + b.brandColor + ` 0%, ` + darkenColor(b.brandColor) + ` 100%);
			color: white;
			padding: 30px 20px;
			text-align: center;
		}
		.content {
			padding: 30px 20px;
		}
		.footer {
			text-align: center;
			padding: 20px;
			border-top: 1px solid #E5E7EB;
			color: #6B7280;
			font-size: 14px;
			background-color: #F9FAFB;
		}
	`
}

// darkenColor maps the palette colours to a darker shade for the header gradient.
func darkenColor(color string) string {
	darker := map[string]string{
		"#2F855A": "#276749",
		"#38A169": "#2F855A",
		"#D69E2E": "#B7791F",
	}
	if d, ok := darker[color]; ok {
		return d
	}
	return color
}
