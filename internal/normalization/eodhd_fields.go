package normalization

// fieldAliases maps a canonical concept to provider keys, first present wins.
type fieldAliases struct {
	Concept string
	Keys    []string
}

// statementFields lists the concepts read from one EODHD financial statement.
type statementFields struct {
	Statement string
	Fields    []fieldAliases
}

// EODHDStatementFields is the default concept table per statement.
var EODHDStatementFields = []statementFields{
	{Statement: "Balance_Sheet", Fields: []fieldAliases{
		{"AssetsCurrent", []string{"totalCurrentAssets"}},
		{"LiabilitiesCurrent", []string{"totalCurrentLiabilities"}},
		{"Assets", []string{"totalAssets"}},
		{"Liabilities", []string{"totalLiabilities", "totalLiab"}},
		{"StockholdersEquity", []string{"totalStockholderEquity", "totalShareholderEquity"}},
		{"CommonStockholdersEquity", []string{"commonStockTotalEquity"}},
		{"PreferredStock", []string{"preferredStockTotalEquity", "preferredStockRedeemable", "preferredStock", "capitalStock"}},
		{"Goodwill", []string{"goodWill", "goodwill"}},
		{"IntangibleAssetsNet", []string{"intangibleAssets"}},
		{"NetTangibleAssets", []string{"netTangibleAssets"}},
		{"NoncontrollingInterestInConsolidatedEntity", []string{"noncontrollingInterestInConsolidatedEntity"}},
		{"CashAndShortTermInvestments", []string{"cashAndShortTermInvestments"}},
		{"CashAndCashEquivalents", []string{"cashAndEquivalents", "cash"}},
		{"ShortTermInvestments", []string{"shortTermInvestments"}},
		{"ShortTermDebt", []string{"shortTermDebt", "shortLongTermDebt"}},
		{"LongTermDebtNoncurrent", []string{"longTermDebtNoncurrent", "longTermDebtTotal", "longTermDebt"}},
		{"LongTermDebt", []string{"longTermDebtTotal", "longTermDebt", "longTermDebtNoncurrent"}},
		{"PropertyPlantAndEquipmentNet", []string{
			"propertyPlantAndEquipmentNet", "propertyPlantEquipment", "netPropertyPlantAndEquipment", "propertyPlantAndEquipment",
		}},
		{"CommonStockSharesOutstanding", []string{"shareIssued", "commonStockSharesOutstanding"}},
		{"EntityCommonStockSharesOutstanding", []string{"shareIssued", "commonStockSharesOutstanding"}},
	}},
	{Statement: "Income_Statement", Fields: []fieldAliases{
		{"EBITDA", []string{"ebitda", "EBITDA"}},
		{"DepreciationDepletionAndAmortization", []string{"depreciationAndAmortization", "reconciledDepreciation"}},
		{"IncomeTaxExpense", []string{"incomeTaxExpense"}},
		{"InterestExpense", []string{"interestExpense"}},
		{"NetIncomeLoss", []string{"netIncome", "netIncomeFromContinuingOps"}},
		{"NetIncomeLossAvailableToCommonStockholdersBasic", []string{"netIncomeApplicableToCommonShares"}},
		{"PreferredStockDividendsAndOtherAdjustments", []string{"preferredStockAndOtherAdjustments"}},
		{"OperatingIncomeLoss", []string{"operatingIncome", "ebit"}},
		{"IncomeBeforeIncomeTaxes", []string{"incomeBeforeTax"}},
		{"Revenues", []string{"totalRevenue", "revenue"}},
		{"EarningsPerShareDiluted", epsDilutedKeys},
		{"EarningsPerShareBasic", []string{"eps", "epsBasic"}},
		{"WeightedAverageNumberOfDilutedSharesOutstanding", []string{"weightedAverageShsOutDil", "weightedAverageShsOutDiluted"}},
		{"WeightedAverageNumberOfSharesOutstandingBasic", []string{"weightedAverageShsOut", "weightedAverageShsOutBasic"}},
	}},
	{Statement: "Cash_Flow", Fields: []fieldAliases{
		{"NetCashProvidedByUsedInOperatingActivities", []string{"totalCashFromOperatingActivities"}},
		{"CapitalExpenditures", []string{"capitalExpenditures", "capex"}},
		{"DepreciationFromCashFlow", []string{"depreciation"}},
	}},
}

var epsDilutedKeys = []string{"epsDiluted", "epsdiluted", "epsDilluted"}

// epsStatementKeys mark an income statement entry as carrying EPS.
var epsStatementKeys = append(append([]string{}, epsDilutedKeys...), "eps", "epsBasic")

// shareCountConcepts are counts, not amounts: no currency, no pence scaling.
var shareCountConcepts = map[string]bool{
	"CommonStockSharesOutstanding":                    true,
	"EntityCommonStockSharesOutstanding":              true,
	"WeightedAverageNumberOfDilutedSharesOutstanding": true,
	"WeightedAverageNumberOfSharesOutstandingBasic":   true,
}

const shareUnit = "shares"

// EODHDTargetConcepts lists every concept the statement tables can emit.
func EODHDTargetConcepts() []string {
	var out []string
	seen := make(map[string]bool)
	for _, st := range EODHDStatementFields {
		for _, f := range st.Fields {
			if !seen[f.Concept] {
				seen[f.Concept] = true
				out = append(out, f.Concept)
			}
		}
	}
	return out
}

// eodhdAliasRules run after the statement, share and earnings records.
var eodhdAliasRules = []aliasRule{
	{Target: "EarningsPerShare", Fallbacks: []string{"EarningsPerShareDiluted", "EarningsPerShareBasic"}},
	{Target: "IntangibleAssetsNetExcludingGoodwill", Fallbacks: []string{"IntangibleAssetsNet"}},
}
