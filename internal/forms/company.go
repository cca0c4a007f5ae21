package forms

import (
	"net/url"
	"strings"

	"fraud-dashboard/internal/models"
)

// CompanyForm is the create/edit company form.
type CompanyForm struct {
	Name        string `form:"name" validate:"required,min=2,max=100"`
	StockCode   string `form:"stockCode" validate:"required,alphanum,max=10"`
	Sector      string `form:"sector" validate:"required"`
	ListingDate string `form:"listingDate" validate:"omitempty,datetime=2006-01-02"`
	Description string `form:"description" validate:"max=1000"`
}

var companyLabels = map[string]string{
	"name":        "Company name",
	"stockCode":   "Stock code",
	"sector":      "Sector",
	"listingDate": "Listing date",
	"description": "Description",
}

// Sectors offered by the company form.
var Sectors = []string{
	"Technology",
	"Finance",
	"Healthcare",
	"Energy",
	"Consumer Goods",
	"Industrials",
	"Real Estate",
	"Telecommunications",
	"Utilities",
	"Materials",
}

// CompanyFormFrom reads the form from a POST body.
func CompanyFormFrom(v url.Values) CompanyForm {
	return CompanyForm{
		Name:        strings.TrimSpace(v.Get("name")),
		StockCode:   strings.ToUpper(strings.TrimSpace(v.Get("stockCode"))),
		Sector:      strings.TrimSpace(v.Get("sector")),
		ListingDate: strings.TrimSpace(v.Get("listingDate")),
		Description: strings.TrimSpace(v.Get("description")),
	}
}

// CompanyFormOf prefills the form from an existing company.
func CompanyFormOf(c *models.Company) CompanyForm {
	f := CompanyForm{Name: c.Name, StockCode: c.StockCode, Sector: c.Sector}
	if c.ListingDate != nil {
		f.ListingDate = *c.ListingDate
	}
	if c.Description != nil {
		f.Description = *c.Description
	}
	return f
}

// Validate checks the form.
func (f CompanyForm) Validate() Errors {
	return check(f, companyLabels)
}

// Request converts the form into the backend body. Empty optional fields
// are sent as null.
func (f CompanyForm) Request() models.CompanyRequest {
	r := models.CompanyRequest{Name: f.Name, StockCode: f.StockCode, Sector: f.Sector}
	if f.ListingDate != "" {
		d := f.ListingDate
		r.ListingDate = &d
	}
	if f.Description != "" {
		d := f.Description
		r.Description = &d
	}
	return r
}
