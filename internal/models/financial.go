package models

// FinancialData holds the raw figures of one statement. Every field is
// optional; derived values are computed by the backend after save.
type FinancialData struct {
	ID          string `json:"id,omitempty"`
	StatementID string `json:"statementId"`

	// Income statement
	Revenue                  *float64 `json:"revenue"`
	CostOfSales              *float64 `json:"costOfSales"`
	GrossProfit              *float64 `json:"grossProfit"`
	OperatingExpenses        *float64 `json:"operatingExpenses"`
	AdministrativeExpenses   *float64 `json:"administrativeExpenses"`
	SellingExpenses          *float64 `json:"sellingExpenses"`
	DepreciationAmortization *float64 `json:"depreciationAmortization"`
	OperatingIncome          *float64 `json:"operatingIncome"`
	InterestExpense          *float64 `json:"interestExpense"`
	OtherIncome              *float64 `json:"otherIncome"`
	EarningsBeforeTax        *float64 `json:"earningsBeforeTax"`
	IncomeTax                *float64 `json:"incomeTax"`
	NetIncome                *float64 `json:"netIncome"`

	// Balance sheet
	Cash                       *float64 `json:"cash"`
	ShortTermInvestments       *float64 `json:"shortTermInvestments"`
	AccountsReceivable         *float64 `json:"accountsReceivable"`
	Inventory                  *float64 `json:"inventory"`
	OtherCurrentAssets         *float64 `json:"otherCurrentAssets"`
	TotalCurrentAssets         *float64 `json:"totalCurrentAssets"`
	PropertyPlantEquipment     *float64 `json:"propertyPlantEquipment"`
	AccumulatedDepreciation    *float64 `json:"accumulatedDepreciation"`
	IntangibleAssets           *float64 `json:"intangibleAssets"`
	LongTermInvestments        *float64 `json:"longTermInvestments"`
	OtherNonCurrentAssets      *float64 `json:"otherNonCurrentAssets"`
	TotalNonCurrentAssets      *float64 `json:"totalNonCurrentAssets"`
	TotalAssets                *float64 `json:"totalAssets"`
	AccountsPayable            *float64 `json:"accountsPayable"`
	ShortTermDebt              *float64 `json:"shortTermDebt"`
	OtherCurrentLiabilities    *float64 `json:"otherCurrentLiabilities"`
	TotalCurrentLiabilities    *float64 `json:"totalCurrentLiabilities"`
	LongTermDebt               *float64 `json:"longTermDebt"`
	OtherNonCurrentLiabilities *float64 `json:"otherNonCurrentLiabilities"`
	TotalNonCurrentLiabilities *float64 `json:"totalNonCurrentLiabilities"`
	TotalLiabilities           *float64 `json:"totalLiabilities"`
	ShareCapital               *float64 `json:"shareCapital"`
	RetainedEarnings           *float64 `json:"retainedEarnings"`
	TotalEquity                *float64 `json:"totalEquity"`

	// Cash flow
	OperatingCashFlow   *float64 `json:"operatingCashFlow"`
	CapitalExpenditures *float64 `json:"capitalExpenditures"`
	InvestingCashFlow   *float64 `json:"investingCashFlow"`
	FinancingCashFlow   *float64 `json:"financingCashFlow"`
	DividendsPaid       *float64 `json:"dividendsPaid"`

	// Market data
	SharesOutstanding *float64 `json:"sharesOutstanding"`
	MarketPrice       *float64 `json:"marketPrice"`
	MarketCap         *float64 `json:"marketCap"`
}
