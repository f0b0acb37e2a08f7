package domain

const lowStockThreshold = 5

type Product struct {
	ID          int      `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Category    string   `json:"category" yaml:"category"`
	Price       int64    `json:"price" yaml:"price"`
	Stock       int      `json:"stock" yaml:"stock"`
	Description string   `json:"description" yaml:"description"`
	Image       string   `json:"image" yaml:"image"`
	Specs       []string `json:"specs,omitempty" yaml:"specs"`
}

func (p Product) InStock() bool { return p.Stock > 0 }

// LowStock marks products that are nearly sold out.
func (p Product) LowStock() bool { return p.Stock > 0 && p.Stock < lowStockThreshold }

// Known catalog categories.
const (
	CategorySmartphone  = "Smartphone"
	CategoryLaptop      = "Laptop"
	CategoryTV          = "TV"
	CategoryAudio       = "Audio"
	CategoryWearable    = "Wearable"
	CategoryTablet      = "Tablet"
	CategoryCamera      = "Camera"
	CategoryMonitor     = "Monitor"
	CategoryAccessories = "Accessories"
)

var Categories = []string{
	CategorySmartphone, CategoryLaptop, CategoryTV, CategoryAudio, CategoryWearable,
	CategoryTablet, CategoryCamera, CategoryMonitor, CategoryAccessories,
}

func IsCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}
