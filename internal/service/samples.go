package service

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shivgems/internal/models"
)

var sampleNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://shivgems.com/sample-products"))

func sampleID(n int) uuid.UUID {
	return uuid.NewSHA1(sampleNamespace, []byte(strconv.Itoa(n)))
}

func sample(n int, name string, price int64, image, description string, stock int) models.Product {
	return models.Product{
		ID:          sampleID(n),
		Name:        name,
		Price:       decimal.NewFromInt(price),
		Description: description,
		Image:       "https://images.unsplash.com/" + image + "?auto=format&fit=crop&w=800&q=80",
		Stock:       stock,
	}
}

// SampleProducts is the demo catalog served when the store has nothing to show.
// Ids are stable so the same products can be seeded into the database.
func SampleProducts() []models.Product {
	return []models.Product{
		sample(1, "Princess Cut Diamond Ring", 3999, "photo-1605100804763-247f67b3557e",
			"1.5 Carat Princess Cut Diamond set in 18K white gold with pavé band. GIA certified, VS1 clarity, F colour.", 10),
		sample(2, "Oval Diamond Necklace", 2499, "photo-1515562141207-7a88fb7ce338",
			"1 Carat Oval Diamond Pendant on an 18\" 14K gold chain. Timeless elegance for any occasion.", 5),
		sample(3, "Diamond Tennis Bracelet", 5999, "photo-1611591437281-460bfbe1220a",
			"3 Carat Total Weight diamond tennis bracelet in 14K white gold. 42 round brilliant diamonds.", 8),
		sample(4, "Round Diamond Earrings", 1999, "photo-1573408301185-9146fe634ad0",
			"0.5 Carat each round brilliant diamond stud earrings. GIA certified, 18K white gold settings.", 15),
		sample(5, "Emerald Cut Diamond Ring", 4999, "photo-1506630448388-4e683c67ddb0",
			"2 Carat Emerald Cut Diamond in a classic four-prong platinum setting. Step-cut facets for exceptional clarity.", 7),
		sample(6, "Pear Diamond Pendant", 2999, "photo-1583937443739-00d5b43f0e35",
			"1 Carat Pear Shape Diamond pendant, D colour, IF clarity. Set in 18K rose gold with diamond accent halo.", 12),
		sample(7, "Diamond Halo Ring", 3499, "photo-1603561591411-07134e71a2a9",
			"1.2 Carat Center Diamond with stunning double halo of micro-pavé diamonds. 14K white gold band.", 9),
		sample(8, "Sapphire and Diamond Ring", 4499, "photo-1619119069152-a2b331eb392a",
			"2 Carat Ceylon Sapphire flanked by 0.5 TCW round brilliant diamonds. Inspired by royalty.", 6),
		sample(9, "Gold Diamond Bracelet", 6999, "photo-1610694955371-d4a3e0ce4b52",
			"14K Gold bangle with 2 Carat diamonds channel-set around the entire circumference. Timeless luxury.", 4),
	}
}

func sampleByID(id uuid.UUID) (models.Product, bool) {
	for _, p := range SampleProducts() {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}
