package usecase

import (
	"testing"

	"github.com/pourcost/backend/internal/domain"
)

func spirit(id, name, brand, subcategory string, price, volume, abv float64) domain.Product {
	return domain.Product{
		ID:                id,
		Name:              name,
		Brand:             brand,
		Category:          "Spirits",
		Subcategory:       subcategory,
		Price:             domain.Float(price),
		VolumeML:          domain.Float(volume),
		AlcoholPercentage: domain.Float(abv),
		IsActive:          true,
	}
}

func bourbonIngredient() domain.RecipeIngredient {
	return domain.RecipeIngredient{
		Name:                 "Bourbon Whiskey",
		Type:                 domain.IngredientAlcohol,
		Amount:               60,
		Unit:                 "ml",
		AmountML:             60,
		AlcoholCategory:      "Spirits",
		AlcoholSubcategory:   "Whisky",
		MinAlcoholPercentage: domain.Float(40),
	}
}

func TestNewProductMatcher(t *testing.T) {
	t.Run("uses provided tier limit", func(t *testing.T) {
		m := NewProductMatcher(MatchConfig{TierCandidateLimit: 5})
		if m.tierCandidateLimit != 5 {
			t.Errorf("tierCandidateLimit = %d, want 5", m.tierCandidateLimit)
		}
	})

	t.Run("defaults tier limit when zero", func(t *testing.T) {
		m := NewProductMatcher(MatchConfig{})
		if m.tierCandidateLimit != 20 {
			t.Errorf("tierCandidateLimit = %d, want 20 (default)", m.tierCandidateLimit)
		}
	})
}

func TestScore(t *testing.T) {
	m := NewProductMatcher(MatchConfig{})

	t.Run("sums every matching signal", func(t *testing.T) {
		product := spirit("1", "Buffalo Trace Kentucky Straight Bourbon Whiskey", "Buffalo Trace", "Whisky", 35.99, 750, 45)
		// type 30 + category 20 + subcategory 15 + abv 10 + words 10 + price 5 + bottle 3
		if got := m.Score(bourbonIngredient(), product); got != 93 {
			t.Errorf("Score = %v, want 93", got)
		}
	})

	t.Run("exact name match adds 100", func(t *testing.T) {
		ingredient := domain.RecipeIngredient{Name: "Campari"}
		exact := domain.Product{Name: "campari", Category: "Spirits", IsActive: true}
		if got := m.Score(ingredient, exact); got != 105 {
			t.Errorf("Score = %v, want 105 (exact name + one keyword)", got)
		}
	})

	t.Run("brand preference matches brand or name", func(t *testing.T) {
		ingredient := domain.RecipeIngredient{Name: "Dark Spirit", BrandPreference: "Gosling"}
		byBrand := domain.Product{Name: "Black Seal", Brand: "Goslings", IsActive: true}
		byName := domain.Product{Name: "Gosling's Black Seal", IsActive: true}
		if got := m.Score(ingredient, byBrand); got != 50 {
			t.Errorf("brand Score = %v, want 50", got)
		}
		if got := m.Score(ingredient, byName); got != 50 {
			t.Errorf("name Score = %v, want 50", got)
		}
	})

	t.Run("insufficient abv is penalised", func(t *testing.T) {
		ingredient := domain.RecipeIngredient{Name: "Vodka", MinAlcoholPercentage: domain.Float(40)}
		strong := domain.Product{Name: "Vodka", AlcoholPercentage: domain.Float(40), IsActive: true}
		weak := domain.Product{Name: "Vodka", AlcoholPercentage: domain.Float(35), IsActive: true}
		// exact 100 + type 30 + word 5
		if got := m.Score(ingredient, strong); got != 145 {
			t.Errorf("strong Score = %v, want 145", got)
		}
		if got := m.Score(ingredient, weak); got != 115 {
			t.Errorf("weak Score = %v, want 115", got)
		}
	})

	t.Run("known brand keyword adds 40", func(t *testing.T) {
		ingredient := domain.RecipeIngredient{Name: "Jameson"}
		product := domain.Product{Name: "Irish Whiskey", Brand: "Jameson", IsActive: true}
		if got := m.Score(ingredient, product); got != 40 {
			t.Errorf("Score = %v, want 40", got)
		}
	})

	t.Run("price heuristics", func(t *testing.T) {
		ingredient := domain.RecipeIngredient{Name: "Mezcal"}
		cases := []struct {
			price float64
			want  float64
		}{
			{19.99, 5},
			{20, 10},
			{80, 10},
			{120, 5},
			{150.01, 0}, // 5 - 10 clamps to 0
		}
		for _, tc := range cases {
			product := domain.Product{Name: "Mezcal Joven", Price: domain.Float(tc.price), IsActive: true}
			if got := m.Score(ingredient, product); got != tc.want {
				t.Errorf("price %v: Score = %v, want %v", tc.price, got, tc.want)
			}
		}
	})

	t.Run("score never negative", func(t *testing.T) {
		ingredient := domain.RecipeIngredient{Name: "Vodka", MinAlcoholPercentage: domain.Float(40)}
		product := domain.Product{
			Name:              "Light Cooler",
			Category:          "Coolers",
			AlcoholPercentage: domain.Float(5),
			Price:             domain.Float(200),
			IsActive:          true,
		}
		if got := m.Score(ingredient, product); got != 0 {
			t.Errorf("Score = %v, want 0", got)
		}
	})

	t.Run("exact name match dominates otherwise equal product", func(t *testing.T) {
		ingredient := bourbonIngredient()
		base := spirit("1", "Kentucky Bourbon Whiskey", "", "Whisky", 30, 750, 45)
		exact := base
		exact.Name = "Bourbon Whiskey"
		if m.Score(ingredient, exact) < m.Score(ingredient, base) {
			t.Errorf("exact name scored %v below %v", m.Score(ingredient, exact), m.Score(ingredient, base))
		}
	})
}

func TestFindMatchingProducts(t *testing.T) {
	m := NewProductMatcher(MatchConfig{})

	t.Run("filters by inferred category and drops zero scores", func(t *testing.T) {
		wine := domain.Product{ID: "w", Name: "Bourbon Barrel Red Wine", Category: "Wine", IsActive: true}
		bourbon := spirit("b", "Maker's Mark Bourbon", "Maker's Mark", "Whisky", 45, 750, 45)
		// category +20 cancelled by the low ABV penalty
		weak := domain.Product{ID: "u", Name: "Plain", Category: "Spirits", AlcoholPercentage: domain.Float(20), IsActive: true}
		plain := domain.Product{ID: "p", Name: "Plain", Category: "Spirits", IsActive: true}

		matches := m.FindMatchingProducts(bourbonIngredient(), []domain.Product{wine, bourbon, weak, plain}, 10)
		if len(matches) != 2 {
			t.Fatalf("len(matches) = %d, want 2", len(matches))
		}
		if matches[0].Product.ID != "b" {
			t.Errorf("top match = %s, want b", matches[0].Product.ID)
		}
		for _, match := range matches {
			if match.Product.Category != "Spirits" {
				t.Errorf("unexpected category %q in results", match.Product.Category)
			}
			if match.Score <= 0 {
				t.Errorf("non-positive score %v returned", match.Score)
			}
		}
	})

	t.Run("skips inactive products", func(t *testing.T) {
		inactive := spirit("x", "Bourbon Whiskey", "", "Whisky", 35, 750, 45)
		inactive.IsActive = false
		matches := m.FindMatchingProducts(bourbonIngredient(), []domain.Product{inactive}, 10)
		if len(matches) != 0 {
			t.Errorf("expected no matches, got %d", len(matches))
		}
	})

	t.Run("no inferable category considers the whole pool", func(t *testing.T) {
		ingredient := domain.RecipeIngredient{Name: "Aperol"}
		product := domain.Product{ID: "a", Name: "Aperol Aperitivo", Category: "Liqueurs", IsActive: true}
		matches := m.FindMatchingProducts(ingredient, []domain.Product{product}, 10)
		if len(matches) != 1 {
			t.Fatalf("len(matches) = %d, want 1", len(matches))
		}
	})

	t.Run("ties keep input order", func(t *testing.T) {
		first := spirit("1", "Bourbon A", "", "Whisky", 30, 750, 45)
		second := spirit("2", "Bourbon B", "", "Whisky", 30, 750, 45)
		third := spirit("3", "Bourbon C", "", "Whisky", 30, 750, 45)
		matches := m.FindMatchingProducts(bourbonIngredient(), []domain.Product{first, second, third}, 0)
		if len(matches) != 3 {
			t.Fatalf("len(matches) = %d, want 3", len(matches))
		}
		for i, want := range []string{"1", "2", "3"} {
			if matches[i].Product.ID != want {
				t.Errorf("matches[%d] = %s, want %s", i, matches[i].Product.ID, want)
			}
		}
	})

	t.Run("respects limit", func(t *testing.T) {
		pool := []domain.Product{
			spirit("1", "Bourbon A", "", "Whisky", 30, 750, 45),
			spirit("2", "Bourbon B", "", "Whisky", 30, 750, 45),
		}
		if got := len(m.FindMatchingProducts(bourbonIngredient(), pool, 1)); got != 1 {
			t.Errorf("len = %d, want 1", got)
		}
	})

	t.Run("empty pool returns nothing", func(t *testing.T) {
		if got := m.FindMatchingProducts(bourbonIngredient(), nil, 10); len(got) != 0 {
			t.Errorf("expected empty result, got %d", len(got))
		}
	})
}

func TestFindPriceRangeOptions(t *testing.T) {
	m := NewProductMatcher(MatchConfig{})

	t.Run("orders tiers by price per ml", func(t *testing.T) {
		pool := []domain.Product{
			spirit("mid", "Bourbon Mid", "", "Whisky", 40, 750, 45),      // 0.0533
			spirit("cheap", "Bourbon Cheap", "", "Whisky", 25, 1140, 40), // 0.0219
			spirit("top", "Bourbon Top", "", "Whisky", 70, 750, 45),      // 0.0933
			spirit("half", "Bourbon Half", "", "Whisky", 20, 375, 45),    // 0.0533
		}
		options := m.FindPriceRangeOptions(bourbonIngredient(), pool)
		if options.Cheapest == nil || options.MidRange == nil || options.Premium == nil {
			t.Fatalf("expected all tiers, got %+v", options)
		}
		if options.Cheapest.ID != "cheap" {
			t.Errorf("Cheapest = %s, want cheap", options.Cheapest.ID)
		}
		if options.Premium.ID != "top" {
			t.Errorf("Premium = %s, want top", options.Premium.ID)
		}

		cheap, _ := options.Cheapest.PricePerML()
		mid, _ := options.MidRange.PricePerML()
		premium, _ := options.Premium.PricePerML()
		if !(cheap <= mid && mid <= premium) {
			t.Errorf("tier ordering violated: %v, %v, %v", cheap, mid, premium)
		}
	})

	t.Run("mid range uses index len/2", func(t *testing.T) {
		pool := []domain.Product{
			spirit("a", "Bourbon A", "", "Whisky", 10, 1000, 45),
			spirit("b", "Bourbon B", "", "Whisky", 20, 1000, 45),
			spirit("c", "Bourbon C", "", "Whisky", 30, 1000, 45),
			spirit("d", "Bourbon D", "", "Whisky", 40, 1000, 45),
		}
		options := m.FindPriceRangeOptions(bourbonIngredient(), pool)
		if options.MidRange == nil || options.MidRange.ID != "c" {
			t.Errorf("MidRange = %+v, want c (index 4/2)", options.MidRange)
		}
	})

	t.Run("two candidates have no premium", func(t *testing.T) {
		pool := []domain.Product{
			spirit("a", "Bourbon A", "", "Whisky", 30, 750, 45),
			spirit("b", "Bourbon B", "", "Whisky", 50, 750, 45),
		}
		options := m.FindPriceRangeOptions(bourbonIngredient(), pool)
		if options.Cheapest == nil || options.Cheapest.ID != "a" {
			t.Errorf("Cheapest = %+v, want a", options.Cheapest)
		}
		if options.MidRange == nil || options.MidRange.ID != "b" {
			t.Errorf("MidRange = %+v, want b", options.MidRange)
		}
		if options.Premium != nil {
			t.Errorf("Premium = %+v, want nil", options.Premium)
		}
	})

	t.Run("single candidate only fills cheapest", func(t *testing.T) {
		pool := []domain.Product{spirit("a", "Bourbon A", "", "Whisky", 30, 750, 45)}
		options := m.FindPriceRangeOptions(bourbonIngredient(), pool)
		if options.Cheapest == nil || options.MidRange != nil || options.Premium != nil {
			t.Errorf("unexpected tiers: %+v", options)
		}
	})

	t.Run("products without pricing are excluded", func(t *testing.T) {
		noPrice := spirit("np", "Bourbon No Price", "", "Whisky", 0, 750, 45)
		noPrice.Price = nil
		noVolume := spirit("nv", "Bourbon No Volume", "", "Whisky", 30, 0, 45)
		noVolume.VolumeML = nil
		options := m.FindPriceRangeOptions(bourbonIngredient(), []domain.Product{noPrice, noVolume})
		if options.Cheapest != nil {
			t.Errorf("expected no tiers, got %+v", options)
		}
	})

	t.Run("candidate limit bounds the tier pool", func(t *testing.T) {
		small := NewProductMatcher(MatchConfig{TierCandidateLimit: 1})
		pool := []domain.Product{
			spirit("best", "Bourbon Whiskey", "", "Whisky", 60, 750, 45),
			spirit("cheap", "Bourbon Cheap", "", "Whisky", 10, 750, 45),
		}
		options := small.FindPriceRangeOptions(bourbonIngredient(), pool)
		if options.Cheapest == nil || options.Cheapest.ID != "best" {
			t.Errorf("Cheapest = %+v, want best (only candidate within limit)", options.Cheapest)
		}
	})
}

func TestFindBestMatch(t *testing.T) {
	m := NewProductMatcher(MatchConfig{})

	t.Run("skips top candidate without pricing", func(t *testing.T) {
		unpriced := spirit("top", "Bourbon Whiskey", "", "Whisky", 0, 750, 45)
		unpriced.Price = nil
		priced := spirit("next", "Kentucky Bourbon", "", "Whisky", 30, 750, 45)

		best := m.FindBestMatch(bourbonIngredient(), []domain.Product{unpriced, priced})
		if best == nil || best.ID != "next" {
			t.Errorf("FindBestMatch = %+v, want next", best)
		}
	})

	t.Run("returns nil without candidates", func(t *testing.T) {
		if best := m.FindBestMatch(bourbonIngredient(), nil); best != nil {
			t.Errorf("FindBestMatch = %+v, want nil", best)
		}
	})
}

func TestVerifyMatch(t *testing.T) {
	m := NewProductMatcher(MatchConfig{})

	t.Run("reports low abv issue", func(t *testing.T) {
		ingredient := bourbonIngredient()
		ingredient.BrandPreference = "Buffalo"
		product := spirit("1", "Buffalo Trace Bourbon", "Buffalo Trace", "Whisky", 35, 750, 35)

		v := m.VerifyMatch(ingredient, product)
		if v.Checks["abvSufficient"] {
			t.Error("abvSufficient should be false")
		}
		if len(v.Issues) != 1 {
			t.Fatalf("Issues = %v, want one entry", v.Issues)
		}
		if !v.Checks["categoryMatch"] || !v.Checks["brandMatch"] || !v.Checks["nameSimilarity"] {
			t.Errorf("unexpected checks: %v", v.Checks)
		}
		if v.MatchQuality != "Excellent" {
			t.Errorf("MatchQuality = %s, want Excellent", v.MatchQuality)
		}
	})

	t.Run("quality bands", func(t *testing.T) {
		cases := map[float64]string{0: "Poor", 19.9: "Poor", 20: "Good", 49.9: "Good", 50: "Excellent"}
		for score, want := range cases {
			if got := matchQuality(score); got != want {
				t.Errorf("matchQuality(%v) = %s, want %s", score, got, want)
			}
		}
	})
}

func TestCategoriesFor(t *testing.T) {
	t.Run("combines explicit and inferred categories", func(t *testing.T) {
		ingredient := domain.RecipeIngredient{Name: "Dry Vermouth", AlcoholCategory: "Fortified"}
		got := CategoriesFor(ingredient)
		if len(got) != 2 || got[0] != "Fortified" || got[1] != "Wine" {
			t.Errorf("CategoriesFor = %v, want [Fortified Wine]", got)
		}
	})

	t.Run("first alcohol type wins", func(t *testing.T) {
		// "ginger" contains "gin", which is listed before beer
		got := CategoriesFor(domain.RecipeIngredient{Name: "Ginger Beer"})
		if len(got) != 1 || got[0] != "Spirits" {
			t.Errorf("CategoriesFor = %v, want [Spirits]", got)
		}
	})

	t.Run("nothing inferred", func(t *testing.T) {
		if got := CategoriesFor(domain.RecipeIngredient{Name: "Aperol"}); len(got) != 0 {
			t.Errorf("CategoriesFor = %v, want empty", got)
		}
	})
}
