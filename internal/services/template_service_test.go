package services_test

import (
	"strings"
	"testing"

	"invoice-backend/internal/models"
	"invoice-backend/internal/services"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name   string
		tmpl   string
		values map[string]string
		want   string
	}{
		{
			name:   "simple replacement",
			tmpl:   "Hello {{name}}!",
			values: map[string]string{"name": "World"},
			want:   "Hello World!",
		},
		{
			name:   "repeated placeholder",
			tmpl:   "{{x}} and {{x}}",
			values: map[string]string{"x": "1"},
			want:   "1 and 1",
		},
		{
			name:   "unknown placeholder left untouched",
			tmpl:   "{{known}} {{unknown_key}}",
			values: map[string]string{"known": "v"},
			want:   "v {{unknown_key}}",
		},
		{
			name:   "key absent from template is a no-op",
			tmpl:   "plain text",
			values: map[string]string{"name": "v"},
			want:   "plain text",
		},
		{
			name:   "case sensitive",
			tmpl:   "{{Name}}",
			values: map[string]string{"name": "v"},
			want:   "{{Name}}",
		},
		{
			name:   "value is not escaped",
			tmpl:   "{{addr}}",
			values: map[string]string{"addr": "a<br>b"},
			want:   "a<br>b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Substitute(tt.tmpl, tt.values); got != tt.want {
				t.Errorf("Substitute() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPopulateTemplate(t *testing.T) {
	tmpl := `<h1>{{company_name}}</h1>
<p>{{company_address}}</p>
<p>Invoice {{invoice_number}} dated {{invoice_date}}, due {{due_date}}</p>
<p>{{bill_to_name}} - {{bill_to_address}}</p>
<table>{{items}}</table>
<p>Subtotal {{subtotal}} Tax {{tax}} Total {{grand_total}}</p>`

	details := models.PartyInfo{
		CompanyName:    "Acme Traders",
		CompanyAddress: "1 Market Rd\nPune",
		InvoiceNumber:  "INV-042",
		InvoiceDate:    "2026-08-29",
		DueDate:        "2026-09-12",
		BillToName:     "Globex",
		BillToAddress:  "9 Docks\nMumbai",
	}
	items := []models.LineItem{
		item("Service 1", 1, "1000.00"),
		item("Service 2", 2, "2000.00"),
	}

	got := services.PopulateTemplate(tmpl, details, items)

	for _, want := range []string{
		"<h1>Acme Traders</h1>",
		"1 Market Rd<br>Pune",
		"Invoice INV-042 dated 29-08-2026, due 12-09-2026",
		"Globex - 9 Docks<br>Mumbai",
		"Subtotal ₹5,000.00 Tax ₹900.00 Total ₹5,900.00",
		"<td>Service 1</td>",
		"<td>Service 2</td>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("populated template missing %q\n%s", want, got)
		}
	}
	if strings.Contains(got, "{{") {
		t.Errorf("populated template still contains placeholders:\n%s", got)
	}
}

func TestPopulateTemplate_NoPlaceholders(t *testing.T) {
	tmpl := "<html><body>static</body></html>"
	got := services.PopulateTemplate(tmpl, models.PartyInfo{}, nil)
	if got != tmpl {
		t.Errorf("template without placeholders changed: %q", got)
	}
}

func TestItemRows(t *testing.T) {
	rows := services.ItemRows([]models.LineItem{
		item("Consulting", 2, "150.00"),
		item("Hosting", 1, "500.00"),
	})

	for _, want := range []string{
		"<td>1</td>",
		"<td>2</td>",
		"<td>Consulting</td>",
		"<td>Hosting</td>",
		`<td class="text-right">₹150.00</td>`, // unit price
		`<td class="text-right">₹300.00</td>`, // line total
		`<td class="text-right">₹54.00</td>`,  // 18% of 300
		`<td class="text-right">₹354.00</td>`,
		`<td class="text-right">₹590.00</td>`,
	} {
		if !strings.Contains(rows, want) {
			t.Errorf("rows missing %q\n%s", want, rows)
		}
	}

	if services.ItemRows(nil) != "" {
		t.Error("ItemRows(nil) should be empty")
	}
}

func TestItemRows_EscapesDescription(t *testing.T) {
	rows := services.ItemRows([]models.LineItem{
		item("Repairs <b>& parts</b>", 1, "10.00"),
	})
	if !strings.Contains(rows, "Repairs &lt;b&gt;&amp; parts&lt;/b&gt;") {
		t.Errorf("description not escaped:\n%s", rows)
	}
}

func TestNewTemplateService(t *testing.T) {
	svc, err := services.NewTemplateService()
	if err != nil {
		t.Fatalf("NewTemplateService failed: %v", err)
	}
	if !svc.HasItemsPlaceholder() {
		t.Error("embedded template lost its {{items}} marker")
	}

	html := svc.Populate(models.PartyInfo{}, []models.LineItem{item("Service 1", 1, "1000.00")})
	if !strings.Contains(html, "₹1,000.00") {
		t.Error("populated document missing formatted line total")
	}
	if strings.Contains(html, "{{items}}") {
		t.Error("populated document still contains the row marker")
	}
}
