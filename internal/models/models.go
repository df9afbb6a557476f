package models

// DashboardData is everything one dashboard view needs for a filter selection.
type DashboardData struct {
	Empty          bool               `json:"empty"`
	KPIs           KPIs               `json:"kpis"`
	MonthlySales   []MonthlyItem      `json:"monthly_sales"`
	Categories     []CategoryItem     `json:"categories"`
	Regions        []TotalItem        `json:"regions"`
	Segments       []TotalItem        `json:"segments"`
	TopProducts    []TopItem          `json:"top_products"`
	Customers      []CustomerItem     `json:"customers"`
	CustomerRegion []CountItem        `json:"customers_by_region"`
	OrderPatterns  []PatternItem      `json:"order_patterns"`
	CategoryTrends []CategoryTrendRow `json:"category_trends"`
}

// KPIs are the headline cards. AvgOrderValue is nil when no records match.
type KPIs struct {
	TotalSales      float64  `json:"total_sales"`
	TotalOrders     int      `json:"total_orders"`
	AvgOrderValue   *float64 `json:"avg_order_value"`
	UniqueCustomers int      `json:"unique_customers"`
	AvgShippingDays *float64 `json:"avg_shipping_days"`

	Display KPIDisplay `json:"display"`
}

// KPIDisplay holds the card strings, e.g. "$2,261,536.78".
type KPIDisplay struct {
	TotalSales      string `json:"total_sales"`
	TotalOrders     string `json:"total_orders"`
	AvgOrderValue   string `json:"avg_order_value"`
	UniqueCustomers string `json:"unique_customers"`
}

type MonthlyItem struct {
	Month string  `json:"month"`
	Sales float64 `json:"sales"`
}

type CategoryItem struct {
	Category    string  `json:"category"`
	SubCategory string  `json:"sub_category"`
	Sales       float64 `json:"sales"`
}

type TotalItem struct {
	Name  string  `json:"name"`
	Sales float64 `json:"sales"`
}

type TopItem struct {
	Name     string  `json:"product_name"`
	Sales    float64 `json:"sales"`
	Quantity int     `json:"quantity"`
}

type CustomerItem struct {
	CustomerID   string  `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	Segment      string  `json:"segment"`
	Sales        float64 `json:"sales"`
	Orders       int     `json:"orders"`
}

type CountItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type PatternItem struct {
	Month   string  `json:"month"`
	Weekday string  `json:"weekday"`
	Sales   float64 `json:"sales"`
}

type CategoryTrendRow struct {
	Month    string  `json:"month"`
	Category string  `json:"category"`
	Sales    float64 `json:"sales"`
}

// FilterOptions feeds the dashboard's dropdowns.
type FilterOptions struct {
	Categories []string `json:"categories"`
	Regions    []string `json:"regions"`
	Segments   []string `json:"segments"`
	Years      []int    `json:"years"`
}

// Page wraps a paginated listing.
type Page[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
