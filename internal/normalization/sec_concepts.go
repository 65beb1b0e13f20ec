package normalization

// SECTargetConcepts is the default allow-list of us-gaap and dei tags the
// SEC normalizer emits: the canonical concepts plus the synonyms their
// derivations read.
var SECTargetConcepts = []string{
	// Balance sheet / leverage
	"LongTermDebtNoncurrent",
	"LongTermDebt",
	"LongTermDebtCurrent",
	"LongTermLineOfCredit",
	"CommercialPaperNoncurrent",
	"ConstructionLoanNoncurrent",
	"SecuredLongTermDebt",
	"UnsecuredLongTermDebt",
	"SubordinatedLongTermDebt",
	"ConvertibleDebtNoncurrent",
	"ConvertibleSubordinatedDebtNoncurrent",
	"LongTermNotesAndLoans",
	"LongtermFederalHomeLoanBankAdvancesNoncurrent",
	"OtherLongTermDebtNoncurrent",
	"OtherLongTermDebt",
	"LongTermNotesPayable",
	"NotesPayable",
	"LongTermDebtAndCapitalLeaseObligations",
	"LongTermDebtAndCapitalLeaseObligationsCurrent",
	"LongTermDebtAndCapitalLeaseObligationsNoncurrent",
	"LongTermDebtAndCapitalLeaseObligationsIncludingCurrentMaturities",
	"OtherLiabilitiesNoncurrent",
	"AssetsCurrent",
	"AccountsPayableCurrent",
	"AccruedLiabilitiesCurrent",
	"EmployeeRelatedLiabilitiesCurrent",
	"TaxesPayableCurrent",
	"InterestPayableCurrent",
	"DeferredRevenueCurrent",
	"ShortTermBorrowings",
	"CommercialPaper",
	"FinanceLeaseLiabilityCurrent",
	"OperatingLeaseLiabilityCurrent",
	"OperatingLeaseLiabilityNoncurrent",
	"OtherLiabilitiesCurrent",
	"TradeAndOtherCurrentPayables",
	"CurrentTradePayables",
	"OtherCurrentPayables",
	"CurrentTaxLiabilities",
	"CurrentProvisions",
	"CurrentFinancialLiabilities",
	"CurrentBorrowings",
	"CurrentPortionOfNoncurrentBorrowings",
	"OtherCurrentFinancialLiabilities",
	"OtherCurrentNonfinancialLiabilities",
	"CashAndCashEquivalentsAtCarryingValue",
	"CashAndCashEquivalents",
	"ShortTermInvestments",
	"MarketableSecuritiesCurrent",
	"AvailableForSaleSecuritiesDebtSecuritiesCurrent",
	"HeldToMaturitySecuritiesCurrent",
	"AccountsReceivableNetCurrent",
	"LoansAndLeasesReceivableNetCurrent",
	"InventoryNet",
	"Inventories",
	"PrepaidExpenseAndOtherAssetsCurrent",
	"PrepaidExpenseCurrent",
	"DeferredTaxAssetsNetCurrent",
	"OtherAssetsCurrent",
	"OtherShortTermFinancialAssets",
	"CurrentFinancialAssetsOtherThanCashAndCashEquivalents",
	"TradeAndOtherCurrentReceivables",
	"CurrentTradeReceivables",
	"OtherCurrentReceivables",
	"CurrentTaxAssets",
	"OtherCurrentNonfinancialAssets",
	"LiabilitiesCurrent",
	"Assets",
	"Liabilities",
	"StockholdersEquity",
	"StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest",
	"CommonStockholdersEquity",
	"PreferredStock",

	// Income statement
	"NetIncomeLoss",
	"NetIncomeLossAvailableToCommonStockholdersBasic",
	"NetIncomeLossAvailableToCommonStockholdersDiluted",
	"PreferredStockDividendsAndOtherAdjustments",
	"PreferredStockDividends",
	"DividendsPreferredStock",
	"PreferredStockDividendsIncomeStatementImpact",
	"OperatingIncomeLoss",
	"IncomeFromOperations",
	"OperatingProfitLoss",
	"IncomeBeforeIncomeTaxes",
	"Revenues",
	"RevenueFromContractWithCustomerExcludingAssessedTax",
	"SalesRevenueNet",
	"EarningsPerShare",
	"EarningsPerShareDiluted",
	"DilutedEPS",
	"EarningsPerShareBasic",
	"EarningsPerShareBasicAndDiluted",

	// Cash flow / FCF
	"NetCashProvidedByUsedInOperatingActivities",
	"NetCashProvidedByUsedInOperatingActivitiesContinuingOperations",
	"CapitalExpenditures",
	"PaymentsToAcquirePropertyPlantAndEquipment",
	"PaymentsToAcquireOtherPropertyPlantAndEquipment",
	"PaymentsToAcquireOtherProductiveAssets",
	"PaymentsToAcquireBuildings",
	"PaymentsToAcquireEquipmentOnLease",
	"PaymentsToAcquireOilAndGasProperty",
	"PaymentsToAcquireAndDevelopRealEstate",
	"PaymentsToAcquireMachineryAndEquipment",
	"PurchaseOfPropertyPlantAndEquipment",
	"PropertyPlantAndEquipmentAdditions",
	"PaymentsToAcquireProductiveAssets",
	"PurchaseOfFixedAssets",

	// Dividends
	"DividendsPerShareCommonStockDeclared",
	"CommonStockDividendsPerShareCashPaid",
	"CommonStockDividendsPerShareDeclared",

	// Shares / valuation
	"CommonStockSharesOutstanding",
	"EntityCommonStockSharesOutstanding",
	"SharesOutstanding",
	"CommonStockDividendsPaid",
	"WeightedAverageNumberOfDilutedSharesOutstanding",
	"WeightedAverageDilutedSharesOutstanding",
	"WeightedAverageNumberOfSharesOutstandingBasic",

	// Operating assets
	"PropertyPlantAndEquipmentNet",
	"NetPropertyPlantAndEquipment",
	"GrossPropertyPlantAndEquipment",
	"PropertyPlantAndEquipmentAndFinanceLeaseRightOfUseAssetAfterAccumulatedDepreciationAndAmortization",
	"Goodwill",
	"IntangibleAssetsNetExcludingGoodwill",
	"IntangibleAssetsNet",
	"FiniteLivedIntangibleAssetsNet",
	"IndefiniteLivedIntangibleAssetsExcludingGoodwill",

	// Supplementary inputs
	"AccountsPayableAndAccruedLiabilitiesCurrentAndNoncurrent",
	"EmployeeRelatedLiabilitiesCurrentAndNoncurrent",
	"DebtCurrent",
	"DepreciationDepletionAndAmortization",
	"DepreciationAndAmortization",
	"InterestExpense",
	"IncomeTaxExpenseBenefit",
	"IncomeLossFromContinuingOperationsBeforeIncomeTaxesExtraordinaryItemsNoncontrollingInterest",
}

var secAssetsCurrentComponents = []string{
	"CashAndCashEquivalentsAtCarryingValue",
	"CashAndCashEquivalents",
	"ShortTermInvestments",
	"MarketableSecuritiesCurrent",
	"AvailableForSaleSecuritiesDebtSecuritiesCurrent",
	"HeldToMaturitySecuritiesCurrent",
	"AccountsReceivableNetCurrent",
	"LoansAndLeasesReceivableNetCurrent",
	"InventoryNet",
	"Inventories",
	"PrepaidExpenseAndOtherAssetsCurrent",
	"PrepaidExpenseCurrent",
	"DeferredTaxAssetsNetCurrent",
	"OtherAssetsCurrent",
	"OtherShortTermFinancialAssets",
	"CurrentFinancialAssetsOtherThanCashAndCashEquivalents",
	"TradeAndOtherCurrentReceivables",
	"CurrentTradeReceivables",
	"OtherCurrentReceivables",
	"CurrentTaxAssets",
	"OtherCurrentNonfinancialAssets",
}

var secLiabilitiesCurrentComponents = []string{
	"AccountsPayableCurrent",
	"AccruedLiabilitiesCurrent",
	"EmployeeRelatedLiabilitiesCurrent",
	"TaxesPayableCurrent",
	"InterestPayableCurrent",
	"DeferredRevenueCurrent",
	"ShortTermBorrowings",
	"CommercialPaper",
	"LongTermDebtCurrent",
	"FinanceLeaseLiabilityCurrent",
	"OperatingLeaseLiabilityCurrent",
	"OtherLiabilitiesCurrent",
	"TradeAndOtherCurrentPayables",
	"CurrentTradePayables",
	"OtherCurrentPayables",
	"CurrentTaxLiabilities",
	"CurrentProvisions",
	"CurrentFinancialLiabilities",
	"CurrentBorrowings",
	"CurrentPortionOfNoncurrentBorrowings",
	"OtherCurrentFinancialLiabilities",
	"OtherCurrentNonfinancialLiabilities",
}

// Combined payables tags, used only when no current component exists.
var secLiabilitiesCurrentCombined = []string{
	"AccountsPayableAndAccruedLiabilitiesCurrentAndNoncurrent",
	"EmployeeRelatedLiabilitiesCurrentAndNoncurrent",
}

var secLongTermDebtNoncurrentComponents = []string{
	"LongTermLineOfCredit",
	"CommercialPaperNoncurrent",
	"ConstructionLoanNoncurrent",
	"SecuredLongTermDebt",
	"UnsecuredLongTermDebt",
	"SubordinatedLongTermDebt",
	"ConvertibleDebtNoncurrent",
	"ConvertibleSubordinatedDebtNoncurrent",
	"LongTermNotesAndLoans",
	"LongtermFederalHomeLoanBankAdvancesNoncurrent",
	"OtherLongTermDebtNoncurrent",
}

var secPreferredDividendConcepts = []string{
	"PreferredStockDividendsIncomeStatementImpact",
	"DividendsPreferredStock",
	"PreferredStockDividendsAndOtherAdjustments",
	"PreferredStockDividends",
}

var secIntangibleComponents = []string{
	"FiniteLivedIntangibleAssetsNet",
	"IndefiniteLivedIntangibleAssetsExcludingGoodwill",
}

// secAliasRules run in order after the sum and debt derivations.
var secAliasRules = []aliasRule{
	{Target: "EarningsPerShare", Fallbacks: []string{
		"EarningsPerShareDiluted", "DilutedEPS", "EarningsPerShareBasicAndDiluted", "EarningsPerShareBasic",
	}},
	{Target: "StockholdersEquity", Fallbacks: []string{
		"StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest", "CommonStockholdersEquity",
	}},
	{Target: "CommonStockSharesOutstanding", Fallbacks: []string{
		"EntityCommonStockSharesOutstanding", "SharesOutstanding",
	}},
	{Target: "NetCashProvidedByUsedInOperatingActivities", Fallbacks: []string{
		"NetCashProvidedByUsedInOperatingActivitiesContinuingOperations",
	}},
	{Target: "CapitalExpenditures", Fallbacks: []string{
		"PaymentsToAcquirePropertyPlantAndEquipment",
		"PurchaseOfPropertyPlantAndEquipment",
		"PropertyPlantAndEquipmentAdditions",
		"PaymentsToAcquireProductiveAssets",
		"PurchaseOfFixedAssets",
		"PaymentsToAcquireOtherPropertyPlantAndEquipment",
		"PaymentsToAcquireOtherProductiveAssets",
		"PaymentsToAcquireBuildings",
		"PaymentsToAcquireEquipmentOnLease",
		"PaymentsToAcquireOilAndGasProperty",
		"PaymentsToAcquireAndDevelopRealEstate",
		"PaymentsToAcquireMachineryAndEquipment",
	}},
	{Target: "OperatingIncomeLoss", Fallbacks: []string{"IncomeFromOperations", "OperatingProfitLoss"}},
	{Target: "PropertyPlantAndEquipmentNet", Fallbacks: []string{
		"NetPropertyPlantAndEquipment",
		"PropertyPlantAndEquipmentAndFinanceLeaseRightOfUseAssetAfterAccumulatedDepreciationAndAmortization",
	}},
	{Target: "ShortTermDebt", Fallbacks: []string{"DebtCurrent", "ShortTermBorrowings"}},
	{Target: "DepreciationDepletionAndAmortization", Fallbacks: []string{"DepreciationAndAmortization"}},
	{Target: "IncomeTaxExpense", Fallbacks: []string{"IncomeTaxExpenseBenefit"}},
	{Target: "IncomeBeforeIncomeTaxes", Fallbacks: []string{
		"IncomeLossFromContinuingOperationsBeforeIncomeTaxesExtraordinaryItemsNoncontrollingInterest",
	}},
}
