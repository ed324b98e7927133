package features

// bankruptcyFeatures is the column order of the company bankruptcy model.
// The misspelled "working_capitcal_turnover_rate" matches the training data and must stay.
var bankruptcyFeatures = []string{
	"roa_c_before_interest_and_depreciation_before_interest",
	"roa_a_before_interest_and_after_tax",
	"roa_b_before_interest_and_depreciation_after_tax",
	"operating_gross_margin",
	"realized_sales_gross_margin",
	"operating_profit_rate",
	"pre_tax_net_interest_rate",
	"after_tax_net_interest_rate",
	"non_industry_income_and_expenditure_revenue",
	"continuous_interest_rate_after_tax",
	"operating_expense_rate",
	"research_and_development_expense_rate",
	"cash_flow_rate",
	"interest_bearing_debt_interest_rate",
	"tax_rate_a",
	"net_value_per_share_b",
	"net_value_per_share_a",
	"net_value_per_share_c",
	"persistent_eps_in_the_last_four_seasons",
	"cash_flow_per_share",
	"revenue_per_share_yuan",
	"operating_profit_per_share_yuan",
	"per_share_net_profit_before_tax_yuan",
	"realized_sales_gross_profit_growth_rate",
	"operating_profit_growth_rate",
	"after_tax_net_profit_growth_rate",
	"regular_net_profit_growth_rate",
	"continuous_net_profit_growth_rate",
	"total_asset_growth_rate",
	"net_value_growth_rate",
	"total_asset_return_growth_rate_ratio",
	"cash_reinvestment",
	"current_ratio",
	"quick_ratio",
	"interest_expense_ratio",
	"total_debt_total_net_worth",
	"debt_ratio",
	"net_worth_assets",
	"long_term_fund_suitability_ratio_a",
	"borrowing_dependency",
	"contingent_liabilities_net_worth",
	"operating_profit_paid_in_capital",
	"net_profit_before_tax_paid_in_capital",
	"inventory_and_accounts_receivable_net_value",
	"total_asset_turnover",
	"accounts_receivable_turnover",
	"average_collection_days",
	"inventory_turnover_rate_times",
	"fixed_assets_turnover_frequency",
	"net_worth_turnover_rate_times",
	"revenue_per_person",
	"operating_profit_per_person",
	"allocation_rate_per_person",
	"working_capital_to_total_assets",
	"quick_assets_total_assets",
	"current_assets_total_assets",
	"cash_total_assets",
	"quick_assets_current_liability",
	"cash_current_liability",
	"current_liability_to_assets",
	"operating_funds_to_liability",
	"inventory_working_capital",
	"inventory_current_liability",
	"current_liabilities_liability",
	"working_capital_equity",
	"current_liabilities_equity",
	"long_term_liability_to_current_assets",
	"retained_earnings_to_total_assets",
	"total_income_total_expense",
	"total_expense_assets",
	"current_asset_turnover_rate",
	"quick_asset_turnover_rate",
	"working_capitcal_turnover_rate",
	"cash_turnover_rate",
	"cash_flow_to_sales",
	"fixed_assets_to_assets",
	"current_liability_to_liability",
	"current_liability_to_equity",
	"equity_to_long_term_liability",
	"cash_flow_to_total_assets",
	"cash_flow_to_liability",
	"cfo_to_assets",
	"cash_flow_to_equity",
	"current_liability_to_current_assets",
	"liability_assets_flag",
	"net_income_to_total_assets",
	"total_assets_to_gnp_price",
	"no_credit_interval",
	"gross_profit_to_sales",
	"net_income_to_stockholder_s_equity",
	"liability_to_equity",
	"degree_of_financial_leverage_dfl",
	"interest_coverage_ratio_interest_expense_to_ebit",
	"net_income_flag",
	"equity_to_liability",
}

var bankruptcySchema = MustSchema(bankruptcyFeatures)

// BankruptcySchema returns the built-in schema of the company bankruptcy model.
func BankruptcySchema() *Schema {
	return bankruptcySchema
}
