package flatten

// SchemaVersion identifies the flattened column layout. Bump it when
// fields are added or removed so downstream consumers can detect a
// schema change without diffing headers.
const SchemaVersion = 1

const (
	marketPrefix = "market_"
	eventPrefix  = "event_"
)

// marketFields are the market record keys projected into the market
// table, in output order. Keys absent from a record render as empty
// strings.
var marketFields = []string{
	"id", "question", "conditionId", "slug", "resolutionSource", "endDate", "category",
	"liquidity", "startDate", "image", "icon", "description", "outcomes", "outcomePrices",
	"volume", "active", "marketType", "closed", "marketMakerAddress", "createdAt", "updatedAt",
	"closedTime", "new", "featured", "archived", "restricted", "volumeNum", "liquidityNum",
	"endDateIso", "startDateIso", "hasReviewedDates", "volume24hr", "volume1wk", "volume1mo",
	"volume1yr", "clobTokenIds", "fpmmLive", "volumeClob", "liquidityClob", "creator",
	"ready", "funded", "cyom", "competitive", "approved", "rewardsMinSize", "rewardsMaxSpread",
	"spread", "oneDayPriceChange", "oneHourPriceChange", "oneWeekPriceChange", "oneMonthPriceChange",
	"oneYearPriceChange", "lastTradePrice", "bestBid", "bestAsk", "clearBookOnStart",
	"manualActivation", "negRiskOther", "umaResolutionStatuses", "pendingDeployment", "deploying",
	"enableOrderBook", "orderPriceMinTickSize", "orderMinSize", "acceptingOrders", "umaBond",
	"umaReward", "fee",
}

// eventFields are the event record keys projected into both the event
// table and the event half of the market table. Nested collections
// (markets, series, tags) are deliberately not listed.
var eventFields = []string{
	"id", "ticker", "slug", "title", "description", "resolutionSource", "startDate", "creationDate",
	"endDate", "image", "icon", "active", "closed", "archived", "new", "featured", "restricted",
	"liquidity", "volume", "openInterest", "sortBy", "category", "published_at", "createdAt",
	"updatedAt", "competitive", "volume24hr", "volume1wk", "volume1mo", "volume1yr",
	"enableOrderBook", "liquidityClob", "commentCount", "cyom", "closedTime", "showAllOutcomes",
	"showMarketImages", "enableNegRisk", "seriesSlug", "negRiskAugmented", "pendingDeployment",
	"deploying",
}

// Columns derived by the join rather than copied from a record.
const (
	colEventIDs        = "event_ids"
	colHasPriceHistory = "has_price_history"
)

// MarketTableHeader returns the market table column names in order:
// prefixed market fields, prefixed fields of the first linked event,
// then the derived columns.
func MarketTableHeader() []string {
	cols := make([]string, 0, len(marketFields)+len(eventFields)+2)
	for _, f := range marketFields {
		cols = append(cols, marketPrefix+f)
	}
	for _, f := range eventFields {
		cols = append(cols, eventPrefix+f)
	}
	cols = append(cols, colEventIDs, colHasPriceHistory)
	return cols
}

// EventTableHeader returns the event table column names in order.
func EventTableHeader() []string {
	cols := make([]string, 0, len(eventFields))
	for _, f := range eventFields {
		cols = append(cols, eventPrefix+f)
	}
	return cols
}
