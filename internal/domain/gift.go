package domain

// GiftItem Model. The catalog is fixed; claiming a gift routes the member to
// the support contact instead of charging the balance.
type GiftItem struct {
	ID    string `json:"id"`    // Gift id
	Name  string `json:"name"`  // Gift name
	Image string `json:"image"` // Image URL
	Price int64  `json:"price"` // Price in whole currency units (0 = membership reward)
}

// GiftCatalog returns the fixed gift catalog shown on the Gifts screen.
func GiftCatalog(imageBase string) []GiftItem {
	return []GiftItem{
		{ID: "1", Name: "Xe đạp gấp gọn j9", Image: imageBase + "diaper/300/300", Price: 0},
		{ID: "2", Name: "Sữa bột cao cấp cho bé", Image: imageBase + "milk/300/300", Price: 0},
		{ID: "3", Name: "Xe máy điện Vespa liền yên", Image: imageBase + "cloth/300/300", Price: 0},
		{ID: "4", Name: "Combo khăn ướt kháng khuẩn", Image: imageBase + "wipe/300/300", Price: 0},
		{ID: "5", Name: "Bàn học thông minh cho bé", Image: imageBase + "bottle/300/300", Price: 0},
	}
}
