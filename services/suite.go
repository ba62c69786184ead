package services

// Suite wires every service over one set of dependencies.
type Suite struct {
	Sessions   *SessionRegistry
	Sweeper    *ExpirationSweeper
	Duplicates *DuplicateResolver
	Catalog    *CatalogResolver
	Orders     *OrderSubmission
	History    *OrderHistoryQuery
}

func NewSuite(deps Deps, cfg SessionRegistryConfig, pricing PricingPolicy) *Suite {
	deps = deps.withDefaults()
	dir := NewGormDirectory()
	sessions := NewSessionRegistry(deps, dir, cfg)
	catalog := NewCatalogResolver(deps.DB)
	return &Suite{
		Sessions:   sessions,
		Sweeper:    NewExpirationSweeper(deps),
		Duplicates: NewDuplicateResolver(deps),
		Catalog:    catalog,
		Orders:     NewOrderSubmission(deps, sessions, catalog, dir, pricing),
		History:    NewOrderHistoryQuery(deps.DB, sessions),
	}
}
