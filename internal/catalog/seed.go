package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
	"github.com/aurelia-jewels/aurelia-backend/pkg/types"
)

// Built-in fixtures served when both the upstream and the local cache are
// empty. Deterministic so tests and fresh environments behave the same.

func seedProduct(id, name string, category enums.Category, price, offer int64, metal, description string) types.Product {
	return types.Product{
		ID:            id,
		Name:          name,
		Category:      category,
		Price:         decimal.NewFromInt(price),
		OfferPrice:    decimal.NewFromInt(offer),
		OriginalPrice: decimal.NewFromInt(price),
		Metal:         metal,
		Description:   description,
		Stock:         25,
		Active:        true,
	}
}

func seedProducts(category enums.Category) []types.Product {
	switch category {
	case enums.CategoryRing:
		return []types.Product{
			seedProduct("ring-01", "Aurora Solitaire Ring", category, 520, 450, "white gold", "Round brilliant solitaire on a tapered band."),
			seedProduct("ring-02", "Celeste Halo Ring", category, 880, 790, "rose gold", "Halo setting with pave shoulders."),
			seedProduct("ring-03", "Mira Twist Band", category, 340, 290, "silver", "Interlocking twist band with satin finish."),
			seedProduct("ring-04", "Lumen Eternity Ring", category, 1450, 1280, "platinum", "Full eternity band, channel-set stones."),
			seedProduct("ring-05", "Vesper Signet Ring", category, 260, 220, "gold", "Classic oval signet, hand-engraved edge."),
			seedProduct("ring-06", "Nova Cluster Ring", category, 990, 940, "white gold", "Seven-stone cluster over an open gallery."),
			seedProduct("ring-07", "Iris Stacking Ring", category, 180, 150, "silver", "Slim stacking ring with a single bezel stone."),
			seedProduct("ring-08", "Selene Moonstone Ring", category, 610, 540, "gold", "Cabochon moonstone in a rope bezel."),
		}
	case enums.CategoryNecklace:
		return []types.Product{
			seedProduct("necklace-01", "Lyra Pendant Necklace", category, 480, 420, "gold", "Teardrop pendant on a fine cable chain."),
			seedProduct("necklace-02", "Astrid Layered Chain", category, 350, 300, "silver", "Two-strand layered chain, adjustable."),
			seedProduct("necklace-03", "Elara Pearl Strand", category, 1250, 1100, "white gold", "Graduated freshwater pearl strand."),
			seedProduct("necklace-04", "Nyx Choker", category, 270, 230, "rose gold", "Minimal curb-link choker."),
			seedProduct("necklace-05", "Callisto Locket", category, 560, 510, "gold", "Engravable round locket, vintage clasp."),
			seedProduct("necklace-06", "Thea Bar Necklace", category, 310, 260, "silver", "Horizontal bar with bead-set stones."),
		}
	case enums.CategoryBracelets:
		return []types.Product{
			seedProduct("bracelets-01", "Juno Tennis Bracelet", category, 1650, 1480, "white gold", "Prong-set line bracelet, box clasp."),
			seedProduct("bracelets-02", "Freya Bangle", category, 430, 380, "gold", "Hinged bangle with brushed finish."),
			seedProduct("bracelets-03", "Rhea Charm Bracelet", category, 290, 240, "silver", "Rolo chain with three starter charms."),
			seedProduct("bracelets-04", "Maia Cuff", category, 520, 470, "rose gold", "Open cuff with hammered texture."),
			seedProduct("bracelets-05", "Pallas Link Bracelet", category, 760, 690, "gold", "Bold paperclip links, lobster clasp."),
			seedProduct("bracelets-06", "Echo Beaded Bracelet", category, 150, 120, "silver", "Elastic beaded bracelet, onyx accents."),
		}
	case enums.CategoryOther:
		return []types.Product{
			seedProduct("other-01", "Orion Stud Earrings", category, 390, 340, "white gold", "Four-prong round studs, friction backs."),
			seedProduct("other-02", "Vega Drop Earrings", category, 640, 580, "gold", "Articulated drops with bezel stones."),
			seedProduct("other-03", "Cassi Hair Pin", category, 120, 95, "silver", "Crystal-set hair pin, set of two."),
			seedProduct("other-04", "Atlas Tie Bar", category, 210, 180, "gold", "Slim tie bar with milgrain border."),
		}
	default:
		return nil
	}
}
