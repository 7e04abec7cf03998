package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"image"
	"image/color"
	"image/png"

	"github.com/sirupsen/logrus"

	"github.com/pageza/recetario/backend/config"
	"github.com/pageza/recetario/backend/internal/apperr"
	"github.com/pageza/recetario/backend/internal/catalog"
	"github.com/pageza/recetario/backend/internal/database"
	"github.com/pageza/recetario/backend/internal/logging"
	"github.com/pageza/recetario/backend/internal/model"
	"github.com/pageza/recetario/backend/internal/service"
	"github.com/pageza/recetario/backend/internal/session"
	"github.com/pageza/recetario/backend/internal/storage"
	"github.com/pageza/recetario/backend/internal/store"
	"github.com/pageza/recetario/backend/internal/types"
)

var seedRecipes = []types.RecipeRequest{
	{
		Title:       "Chocolate Lava Cake",
		Description: "Warm chocolate cake with a molten center.",
		Ingredients: []string{"dark chocolate", "butter", "eggs", "sugar", "flour"},
		Steps:       []string{"Melt chocolate with butter", "Whisk eggs and sugar", "Fold in flour", "Bake 12 minutes at 220C"},
		Time:        model.TimeOver15,
		Category:    model.CategoryDessert,
		Vegetarian:  true,
	},
	{
		Title:       "Chocolate Mousse",
		Description: "Airy mousse set in the fridge.",
		Ingredients: []string{"dark chocolate", "eggs", "sugar"},
		Steps:       []string{"Melt chocolate", "Whip whites to peaks", "Fold together and chill"},
		Time:        model.TimeUnder15,
		Category:    model.CategoryDessert,
		Vegetarian:  true,
	},
	{
		Title:       "Gazpacho",
		Description: "Cold Andalusian tomato soup.",
		Ingredients: []string{"tomatoes", "cucumber", "green pepper", "garlic", "olive oil", "sherry vinegar"},
		Steps:       []string{"Chop the vegetables", "Blend with oil and vinegar", "Chill before serving"},
		Time:        model.TimeUnder15,
		Category:    model.CategoryStarter,
		Vegetarian:  true,
	},
	{
		Title:       "Garlic Prawns",
		Description: "Gambas al ajillo sizzling in olive oil.",
		Ingredients: []string{"prawns", "garlic", "chili", "olive oil", "parsley"},
		Steps:       []string{"Heat oil with garlic and chili", "Add prawns for two minutes", "Finish with parsley"},
		Time:        model.TimeExactly15,
		Category:    model.CategoryStarter,
		Vegetarian:  false,
	},
	{
		Title:       "Paella Valenciana",
		Description: "Rice with chicken, rabbit and beans cooked over a wide pan.",
		Ingredients: []string{"bomba rice", "chicken", "rabbit", "green beans", "saffron", "tomato"},
		Steps:       []string{"Brown the meat", "Add vegetables and tomato", "Add water and saffron", "Add rice and cook 18 minutes"},
		Time:        model.TimeOver15,
		Category:    model.CategoryMainCourse,
		Vegetarian:  false,
	},
	{
		Title:       "Spinach Omelette",
		Description: "Quick folded omelette with wilted spinach.",
		Ingredients: []string{"eggs", "spinach", "butter", "salt"},
		Steps:       []string{"Wilt the spinach", "Beat eggs and pour", "Fold and serve"},
		Time:        model.TimeUnder15,
		Category:    model.CategoryMainCourse,
		Vegetarian:  true,
	},
	{
		Title:       "Crema Catalana",
		Description: "Custard with a burnt sugar crust.",
		Ingredients: []string{"milk", "egg yolks", "sugar", "cornstarch", "lemon peel", "cinnamon"},
		Steps:       []string{"Infuse milk", "Cook with yolks and starch", "Chill", "Burn sugar on top"},
		Time:        model.TimeOver15,
		Category:    model.CategoryDessert,
		Vegetarian:  true,
	},
}

// placeholder renders a small solid PNG used as the recipe photo.
func placeholder(i int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	c := color.RGBA{R: uint8(40 * i), G: 120, B: uint8(255 - 30*i), A: 255}
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func main() {
	email := flag.String("email", "chef@recetario.local", "email of the seeded chef")
	password := flag.String("password", "recetario", "password of the seeded chef")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logging.Setup(cfg.LogLevel, config.IsProduction())
	ctx := context.Background()

	st, err := database.OpenStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open store")
	}
	defer st.Close()

	var images storage.ImageStore = storage.NewMemory("http://localhost/images")
	if cfg.S3BucketName != "" {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to configure S3")
		}
		images = storage.NewS3Store(s3cfg)
	}

	auth := service.NewAuthService(st, cfg.JWTSecret)
	chef, _, err := auth.Register(ctx, *email, *password, "Seed Chef", model.RoleChef)
	switch {
	case errors.Is(err, apperr.ErrUserExists):
		if chef, _, err = auth.Login(ctx, *email, *password); err != nil {
			logrus.WithError(err).Fatal("Seed chef exists with another password")
		}
	case err != nil:
		logrus.WithError(err).Fatal("Failed to create seed chef")
	}

	cat := catalog.New(st)
	existing, err := cat.ListByAuthor(ctx, chef.ID)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to list seeded recipes")
	}
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[r.Title] = true
	}

	recipes := service.NewRecipeService(st, images, cat, cfg.MaxImageBytes)
	sess := session.New("seed", chef.ID, chef.Role, nil)
	created := 0
	for i := range seedRecipes {
		req := &seedRecipes[i]
		if seen[req.Title] {
			continue
		}
		if _, err := recipes.Create(ctx, sess, req, placeholder(i)); err != nil {
			logrus.WithError(err).WithField("title", req.Title).Fatal("Failed to seed recipe")
		}
		created++
	}

	all, err := st.FindRecipes(ctx, store.Query{})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to count recipes")
	}
	logrus.WithFields(logrus.Fields{
		"chef":    chef.Email,
		"created": created,
		"total":   len(all),
	}).Info("Seeding complete")
}
