package services

const DefaultCategory = "Junior"

// CategoryPricing is the tariff of one room category, in pesos.
type CategoryPricing struct {
	H3          int64 `json:"h3"`
	H6          int64 `json:"h6"`
	H8          int64 `json:"h8"`
	H12         int64 `json:"h12"`
	ExtraHour   int64 `json:"extraHour"`
	ExtraPerson int64 `json:"extraPerson"`
	Included    int   `json:"included"`
}

// PricingTable is built once at startup and never mutated.
type PricingTable map[string]CategoryPricing

func DefaultPricing() PricingTable {
	return PricingTable{
		"Junior":         {H3: 60000, H6: 120000, H8: 160000, H12: 105000, ExtraHour: 20000, ExtraPerson: 20000, Included: 2},
		"Suite Jacuzzi":  {H3: 85000, H6: 170000, H8: 220000, H12: 130000, ExtraHour: 25000, ExtraPerson: 25000, Included: 2},
		"Presidencial":   {H3: 105000, H6: 210000, H8: 265000, H12: 145000, ExtraHour: 30000, ExtraPerson: 30000, Included: 2},
		"Suite Multiple": {H3: 135000, H6: 0, H8: 195000, H12: 235000, ExtraHour: 35000, ExtraPerson: 30000, Included: 4},
		"Suite Disco":    {H3: 180000, H6: 360000, H8: 430000, H12: 315000, ExtraHour: 35000, ExtraPerson: 30000, Included: 4},
	}
}

// For returns the category's tariff, or Junior's when the category is unknown.
func (t PricingTable) For(category string) CategoryPricing {
	if cfg, ok := t[category]; ok {
		return cfg
	}
	return t[DefaultCategory]
}

// CalcPrice returns the base price of a stay. Unsupported durations price at 0.
func CalcPrice(hours int, cfg CategoryPricing) int64 {
	switch hours {
	case 3:
		return cfg.H3
	case 6:
		return cfg.H6
	case 8:
		if cfg.H8 != 0 {
			return cfg.H8
		}
		return cfg.H6 + 2*cfg.ExtraHour
	case 12:
		return cfg.H12
	default:
		return 0
	}
}

func validStayDuration(hours int) bool {
	return hours == 3 || hours == 6 || hours == 8 || hours == 12
}

func validExtension(hours int) bool {
	return hours >= 1 && hours <= 6
}
