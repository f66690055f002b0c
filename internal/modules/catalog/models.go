package catalog

type Product struct {
	ID       string `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Price    int    `gorm:"not null" json:"price"`
	Currency string `gorm:"type:char(3);not null" json:"currency"`
}

func (Product) TableName() string { return "products" }
