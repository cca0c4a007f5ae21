package models

// ZScore is the Altman Z-Score artifact of a statement.
type ZScore struct {
	StatementID                      string   `json:"statementId"`
	ZScore                           *float64 `json:"zScore"`
	WorkingCapitalToTotalAssets      *float64 `json:"workingCapitalToTotalAssets"`
	RetainedEarningsToTotalAssets    *float64 `json:"retainedEarningsToTotalAssets"`
	EbitToTotalAssets                *float64 `json:"ebitToTotalAssets"`
	MarketValueEquityToBookValueDebt *float64 `json:"marketValueEquityToBookValueDebt"`
	SalesToTotalAssets               *float64 `json:"salesToTotalAssets"`
	RiskCategory                     string   `json:"riskCategory"` // SAFE | GREY | DISTRESS
}

// MScore is the Beneish M-Score artifact of a statement.
type MScore struct {
	StatementID             string   `json:"statementId"`
	MScore                  *float64 `json:"mScore"`
	DSRI                    *float64 `json:"dsri"`                    // days sales in receivables index
	GMI                     *float64 `json:"gmi"`                     // gross margin index
	AQI                     *float64 `json:"aqi"`                     // asset quality index
	SGI                     *float64 `json:"sgi"`                     // sales growth index
	DEPI                    *float64 `json:"depi"`                    // depreciation index
	SGAI                    *float64 `json:"sgai"`                    // SG&A index
	LVGI                    *float64 `json:"lvgi"`                    // leverage index
	TATA                    *float64 `json:"tata"`                    // total accruals to total assets
	ManipulationProbability string   `json:"manipulationProbability"` // LOW | MEDIUM | HIGH
}

// FScore is the Piotroski F-Score artifact of a statement.
type FScore struct {
	StatementID               string `json:"statementId"`
	FScore                    *int   `json:"fScore"`
	PositiveNetIncome         *bool  `json:"positiveNetIncome"`
	PositiveOperatingCashFlow *bool  `json:"positiveOperatingCashFlow"`
	IncreasingROA             *bool  `json:"increasingRoa"`
	CashFlowGreaterThanIncome *bool  `json:"cashFlowGreaterThanIncome"`
	DecreasingLeverage        *bool  `json:"decreasingLeverage"`
	IncreasingCurrentRatio    *bool  `json:"increasingCurrentRatio"`
	NoNewShares               *bool  `json:"noNewShares"`
	IncreasingGrossMargin     *bool  `json:"increasingGrossMargin"`
	IncreasingAssetTurnover   *bool  `json:"increasingAssetTurnover"`
	FinancialStrength         string `json:"financialStrength"` // STRONG | MODERATE | WEAK
}

// FinancialRatios are the classical ratios computed for a statement.
type FinancialRatios struct {
	StatementID         string   `json:"statementId"`
	CurrentRatio        *float64 `json:"currentRatio"`
	QuickRatio          *float64 `json:"quickRatio"`
	CashRatio           *float64 `json:"cashRatio"`
	GrossMargin         *float64 `json:"grossMargin"`
	OperatingMargin     *float64 `json:"operatingMargin"`
	NetProfitMargin     *float64 `json:"netProfitMargin"`
	ReturnOnAssets      *float64 `json:"returnOnAssets"`
	ReturnOnEquity      *float64 `json:"returnOnEquity"`
	DebtToEquity        *float64 `json:"debtToEquity"`
	DebtRatio           *float64 `json:"debtRatio"`
	InterestCoverage    *float64 `json:"interestCoverage"`
	AssetTurnover       *float64 `json:"assetTurnover"`
	InventoryTurnover   *float64 `json:"inventoryTurnover"`
	ReceivablesTurnover *float64 `json:"receivablesTurnover"`
}

// AnalysisResult is returned by the calculate endpoint.
type AnalysisResult struct {
	StatementID string  `json:"statementId"`
	ZScore      *ZScore `json:"zScore,omitempty"`
	MScore      *MScore `json:"mScore,omitempty"`
	FScore      *FScore `json:"fScore,omitempty"`
}
