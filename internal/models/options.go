package models

// Option is a reservation add-on from the fixed order-form catalog.
type Option struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// DefaultOptions returns the add-on catalog shown on the order form.
// All prices are currently zero; the pricing engine supports non-zero
// prices should the catalog change.
func DefaultOptions() []Option {
	return []Option{
		{Name: "1일차 점심 개별식사", Price: 0},
		{Name: "1일차 저녁 개별식사", Price: 0},
		{Name: "기타 옵션1", Price: 0},
		{Name: "기타 옵션2", Price: 0},
	}
}

// OptionSelection tracks which add-ons are toggled on, keyed by option name.
type OptionSelection map[string]bool

// Toggle flips the selection state of an option.
func (s OptionSelection) Toggle(name string) {
	s[name] = !s[name]
}

// Selected reports whether an option is toggled on.
func (s OptionSelection) Selected(name string) bool {
	return s[name]
}
