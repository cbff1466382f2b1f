package model

// Role is the closed set of authorization tiers. There is no hierarchy:
// an admin token never satisfies a user-only check or vice versa.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Page identifies a dashboard section that can carry a configured link.
type Page string

const (
	PageDashboard   Page = "dashboard"
	PagePerformance Page = "performance"
	PageRevenue     Page = "revenue"
)

func (p Page) IsValid() bool {
	switch p {
	case PageDashboard, PagePerformance, PageRevenue:
		return true
	}
	return false
}

// Pages lists every valid page, in display order.
func Pages() []Page {
	return []Page{PageDashboard, PagePerformance, PageRevenue}
}
