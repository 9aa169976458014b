// Command seed loads a starter recipe and ingredient catalog for local
// development.
package main

import (
	"log"

	"github.com/thucdon/backend/config"
	"github.com/thucdon/backend/internal/database"
	"github.com/thucdon/backend/internal/models"
)

type seedIngredient struct {
	Name string
	Unit string
}

type seedRecipe struct {
	Title           string
	Tags            []string
	Region          string
	CookTimeMinutes int
	Kcal            float64
	Likes           int
	// Items maps ingredient name to amount in the ingredient's unit.
	Items map[string]float64
}

var ingredients = []seedIngredient{
	{Name: "thịt ba chỉ", Unit: "g"},
	{Name: "thịt gà", Unit: "g"},
	{Name: "cá basa", Unit: "g"},
	{Name: "tôm sú", Unit: "g"},
	{Name: "rau muống", Unit: "g"},
	{Name: "cải ngọt", Unit: "g"},
	{Name: "cà chua", Unit: "g"},
	{Name: "đậu hũ", Unit: "g"},
	{Name: "nước mắm", Unit: "chai"},
	{Name: "dầu ăn", Unit: "chai"},
	{Name: "bún tươi", Unit: "g"},
	{Name: "gạo", Unit: "g"},
	{Name: "trứng gà", Unit: "gói"},
	{Name: "sữa chua", Unit: "gói"},
	{Name: "đường", Unit: "g"},
}

var recipes = []seedRecipe{
	{
		Title: "Thịt kho trứng", Tags: []string{"Main", "Mặn"}, Region: "Miền Nam",
		CookTimeMinutes: 60, Kcal: 520, Likes: 128,
		Items: map[string]float64{"thịt ba chỉ": 500, "trứng gà": 1, "nước mắm": 0.1, "đường": 30},
	},
	{
		Title: "Gà kho gừng", Tags: []string{"Main", "Mặn"}, Region: "Miền Bắc",
		CookTimeMinutes: 45, Kcal: 430, Likes: 96,
		Items: map[string]float64{"thịt gà": 600, "nước mắm": 0.1, "đường": 20},
	},
	{
		Title: "Canh chua cá basa", Tags: []string{"Soup", "Canh"}, Region: "Miền Nam",
		CookTimeMinutes: 30, Kcal: 210, Likes: 154,
		Items: map[string]float64{"cá basa": 400, "cà chua": 200, "nước mắm": 0.05},
	},
	{
		Title: "Canh cải ngọt đậu hũ", Tags: []string{"Soup", "Canh", "Veggie"}, Region: "Miền Trung",
		CookTimeMinutes: 20, Kcal: 140, Likes: 72,
		Items: map[string]float64{"cải ngọt": 300, "đậu hũ": 200},
	},
	{
		Title: "Rau muống xào tỏi", Tags: []string{"Vegetable", "Rau", "Xào", "Veggie"}, Region: "Miền Bắc",
		CookTimeMinutes: 10, Kcal: 120, Likes: 201,
		Items: map[string]float64{"rau muống": 400, "dầu ăn": 0.05},
	},
	{
		Title: "Đậu hũ sốt cà chua", Tags: []string{"Vegetable", "Veggie", "Vegan"}, Region: "Miền Bắc",
		CookTimeMinutes: 25, Kcal: 180, Likes: 88,
		Items: map[string]float64{"đậu hũ": 300, "cà chua": 250, "dầu ăn": 0.05},
	},
	{
		Title: "Gỏi tôm bún", Tags: []string{"Starter", "Khai Vị", "Salad"}, Region: "Miền Nam",
		CookTimeMinutes: 20, Kcal: 250, Likes: 64,
		Items: map[string]float64{"tôm sú": 200, "bún tươi": 150},
	},
	{
		Title: "Sữa chua nếp cẩm", Tags: []string{"Dessert", "Tráng Miệng"}, Region: "Miền Bắc",
		CookTimeMinutes: 15, Kcal: 220, Likes: 110,
		Items: map[string]float64{"sữa chua": 1, "gạo": 100, "đường": 20},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	ingredientIDs := make(map[string]models.Ingredient)
	for _, si := range ingredients {
		ing := models.Ingredient{Name: si.Name, Unit: si.Unit}
		if err := db.Where("name = ?", si.Name).FirstOrCreate(&ing).Error; err != nil {
			log.Fatalf("failed to seed ingredient %q: %v", si.Name, err)
		}
		ingredientIDs[si.Name] = ing
	}

	for _, sr := range recipes {
		recipe := models.Recipe{
			Title:           sr.Title,
			Tags:            sr.Tags,
			Region:          sr.Region,
			CookTimeMinutes: sr.CookTimeMinutes,
			Kcal:            sr.Kcal,
			Likes:           sr.Likes,
		}
		if err := db.Where("title = ?", sr.Title).FirstOrCreate(&recipe).Error; err != nil {
			log.Fatalf("failed to seed recipe %q: %v", sr.Title, err)
		}

		for name, amount := range sr.Items {
			ing, ok := ingredientIDs[name]
			if !ok {
				log.Fatalf("recipe %q references unknown ingredient %q", sr.Title, name)
			}
			item := models.RecipeItem{RecipeID: recipe.ID, IngredientID: ing.ID, Amount: amount}
			if err := db.Where("recipe_id = ? AND ingredient_id = ?", recipe.ID, ing.ID).
				FirstOrCreate(&item).Error; err != nil {
				log.Fatalf("failed to seed recipe item: %v", err)
			}
		}
	}

	log.Printf("seeded %d ingredients and %d recipes", len(ingredients), len(recipes))
}
