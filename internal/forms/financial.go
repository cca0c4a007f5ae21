package forms

import (
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"fraud-dashboard/internal/models"
)

// Field is one numeric input of the financial data form.
type Field struct {
	Name  string // json name, also the input name
	Label string
}

// FieldGroup is a fieldset of the financial data form.
type FieldGroup struct {
	Title  string
	Fields []Field
}

// numericFields maps json names to the *float64 field index of
// models.FinancialData.
var numericFields = indexNumericFields()

func indexNumericFields() map[string][]int {
	t := reflect.TypeOf(models.FinancialData{})
	ptr := reflect.TypeOf((*float64)(nil))
	out := map[string][]int{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type != ptr {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		out[name] = f.Index
	}
	return out
}

var groupOrder = []struct {
	title string
	names []string
}{
	{"Income Statement", []string{
		"revenue", "costOfSales", "grossProfit", "operatingExpenses", "administrativeExpenses",
		"sellingExpenses", "depreciationAmortization", "operatingIncome", "interestExpense",
		"otherIncome", "earningsBeforeTax", "incomeTax", "netIncome",
	}},
	{"Balance Sheet", []string{
		"cash", "shortTermInvestments", "accountsReceivable", "inventory", "otherCurrentAssets",
		"totalCurrentAssets", "propertyPlantEquipment", "accumulatedDepreciation", "intangibleAssets",
		"longTermInvestments", "otherNonCurrentAssets", "totalNonCurrentAssets", "totalAssets",
		"accountsPayable", "shortTermDebt", "otherCurrentLiabilities", "totalCurrentLiabilities",
		"longTermDebt", "otherNonCurrentLiabilities", "totalNonCurrentLiabilities", "totalLiabilities",
		"shareCapital", "retainedEarnings", "totalEquity",
	}},
	{"Cash Flow", []string{
		"operatingCashFlow", "capitalExpenditures", "investingCashFlow", "financingCashFlow", "dividendsPaid",
	}},
	{"Market Data", []string{"sharesOutstanding", "marketPrice", "marketCap"}},
}

// FinancialGroups returns the fieldsets of the financial data form.
func FinancialGroups() []FieldGroup {
	groups := make([]FieldGroup, 0, len(groupOrder))
	for _, g := range groupOrder {
		fg := FieldGroup{Title: g.title}
		for _, n := range g.names {
			fg.Fields = append(fg.Fields, Field{Name: n, Label: label(n)})
		}
		groups = append(groups, fg)
	}
	return groups
}

// label turns "propertyPlantEquipment" into "Property Plant Equipment".
func label(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FinancialDataForm holds the raw inputs so a rejected form can be shown
// again exactly as typed.
type FinancialDataForm struct {
	ID          string
	StatementID string
	Values      map[string]string
}

// FinancialDataFormFrom reads every known numeric field from a POST body.
func FinancialDataFormFrom(v url.Values) FinancialDataForm {
	f := FinancialDataForm{
		ID:          strings.TrimSpace(v.Get("id")),
		StatementID: strings.TrimSpace(v.Get("statementId")),
		Values:      map[string]string{},
	}
	for name := range numericFields {
		if s := strings.TrimSpace(v.Get(name)); s != "" {
			f.Values[name] = s
		}
	}
	return f
}

// FinancialDataFormOf prefills the form from saved figures.
func FinancialDataFormOf(statementID string, d *models.FinancialData) FinancialDataForm {
	f := FinancialDataForm{StatementID: statementID, Values: map[string]string{}}
	if d == nil {
		return f
	}
	f.ID = d.ID
	rv := reflect.ValueOf(d).Elem()
	for name, idx := range numericFields {
		p := rv.FieldByIndex(idx)
		if !p.IsNil() {
			f.Values[name] = strconv.FormatFloat(p.Elem().Float(), 'f', -1, 64)
		}
	}
	return f
}

// Value returns the raw input of a field.
func (f FinancialDataForm) Value(name string) string { return f.Values[name] }

// Parse coerces every input to a number, or to null when left empty.
// Thousands separators are accepted.
func (f FinancialDataForm) Parse() (models.FinancialData, Errors) {
	data := models.FinancialData{ID: f.ID, StatementID: f.StatementID}
	errs := Errors{}
	if f.StatementID == "" {
		errs["statementId"] = "Statement is required"
	}

	rv := reflect.ValueOf(&data).Elem()
	for name, raw := range f.Values {
		idx, ok := numericFields[name]
		if !ok {
			continue
		}
		v, ok := parseNumber(raw)
		if !ok {
			errs[name] = label(name) + " must be a number"
			continue
		}
		if v == nil {
			continue
		}
		rv.FieldByIndex(idx).Set(reflect.ValueOf(v))
	}
	return data, errs
}

// parseNumber returns nil for blank input.
func parseNumber(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return &v, true
}
