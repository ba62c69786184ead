package models

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Location{},
		&Zone{},
		&Table{},
		&User{},
		&TableSession{},
		&Product{},
		&OptionType{},
		&ProductOptionType{},
		&ProductOption{},
		&ProductLocation{},
		&OptionTypeLocation{},
		&OptionLocation{},
		&Order{},
		&OrderLineItem{},
		&OrderLineOption{},
	}
}
